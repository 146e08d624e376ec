package pipeline

import (
	"fmt"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/latency"
	"github.com/sarchlab/pipesim/timing/stage"
)

// HazardKind distinguishes the causes of a stall.
type HazardKind uint8

const (
	// HazardStructural means the preceding instruction still occupies the
	// stage the consumer wants to enter.
	HazardStructural HazardKind = iota
	// HazardRAW means the consumer waits for a register value that has not
	// been produced yet.
	HazardRAW
)

// HazardKinds lists the hazard kinds in display order.
var HazardKinds = []HazardKind{HazardRAW, HazardStructural}

// String returns "Structural" or "RAW".
func (k HazardKind) String() string {
	switch k {
	case HazardStructural:
		return "Structural"
	case HazardRAW:
		return "RAW"
	default:
		return fmt.Sprintf("HazardKind(%d)", uint8(k))
	}
}

// MarshalText encodes the kind by name, so it can key JSON objects.
func (k HazardKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind encoded by MarshalText.
func (k *HazardKind) UnmarshalText(text []byte) error {
	for _, kind := range HazardKinds {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown hazard kind %q", text)
}

// Hazard is a stall attached to the stage transition in which it occurred.
type Hazard struct {
	// Kind is the cause of the stall.
	Kind HazardKind
	// Reg is the register waited for. Only meaningful for RAW hazards.
	Reg insts.Reg
	// Producer is the index of the instruction causing the stall.
	Producer int
	// Consumer is the index of the stalled instruction.
	Consumer int
	// StallCycles is the number of cycles lost.
	StallCycles uint64
}

func (h Hazard) String() string {
	if h.Kind == HazardRAW {
		return fmt.Sprintf("RAW on %s: #%d waits %d cycle(s) for #%d",
			h.Reg, h.Consumer, h.StallCycles, h.Producer)
	}
	return fmt.Sprintf("Structural: #%d waits %d cycle(s) for #%d",
		h.Consumer, h.StallCycles, h.Producer)
}

// ForwardingPath records a register value delivered from a producer's
// internal result directly to a consumer, bypassing the register file.
type ForwardingPath struct {
	Producer  int
	Consumer  int
	Reg       insts.Reg
	FromStage stage.Stage
	ToStage   stage.Stage
	// Cycle is the cycle in which the consumer uses the value.
	Cycle uint64
}

func (p ForwardingPath) String() string {
	return fmt.Sprintf("%s: #%d %s -> #%d %s @%d",
		p.Reg, p.Producer, p.FromStage.Short(), p.Consumer, p.ToStage.Short(), p.Cycle)
}

// RAWResult is the outcome of checking one register dependency.
type RAWResult struct {
	// Start is the earliest cycle the consumer may enter the stage.
	Start uint64
	// Hazard is set if the consumer had to stall.
	Hazard *Hazard
	// Path is set if forwarding is enabled.
	Path *ForwardingPath
}

// HazardUnit detects structural and read-after-write hazards.
type HazardUnit struct {
	table      *latency.Table
	forwarding bool
}

// NewHazardUnit creates a new hazard detection unit.
func NewHazardUnit(table *latency.Table, forwarding bool) *HazardUnit {
	return &HazardUnit{
		table:      table,
		forwarding: forwarding,
	}
}

// DetectStructural checks whether the consumer may enter stage s at
// candidate. The immediately preceding instruction must already have
// started the following stage; otherwise the consumer waits until it does.
// Writeback has no following stage and is never contended.
func (h *HazardUnit) DetectStructural(
	prev *InstructionTiming,
	consumer int,
	s stage.Stage,
	candidate uint64,
) (start uint64, hazard *Hazard) {
	next, ok := s.Next()
	if !ok {
		return candidate, nil
	}

	vacated := prev.Start(next)
	if candidate >= vacated {
		return candidate, nil
	}

	return vacated, &Hazard{
		Kind:        HazardStructural,
		Producer:    prev.Index,
		Consumer:    consumer,
		StallCycles: vacated - candidate,
	}
}

// RegistersNeeded returns the distinct registers the instruction must have
// available when it enters stage s, in operand order.
func (h *HazardUnit) RegistersNeeded(inst insts.Instruction, s stage.Stage) []insts.Reg {
	reads, _ := insts.Operands(inst)

	regs := make([]insts.Reg, 0, len(reads))
	for _, r := range reads {
		if h.table.OperandReadStage(inst.Op(), r.Operand, h.forwarding) != s {
			continue
		}
		if containsReg(regs, r.Reg) {
			continue
		}
		regs = append(regs, r.Reg)
	}
	return regs
}

// DetectRAW checks whether the consumer, entering stage s at candidate,
// must wait for reg from producer. The producer must be the nearest
// in-flight writer of reg.
func (h *HazardUnit) DetectRAW(
	producer *InstructionTiming,
	consumer int,
	reg insts.Reg,
	s stage.Stage,
	candidate uint64,
) RAWResult {
	result := RAWResult{Start: candidate}

	available, ok := h.table.ResultAvailableCycle(producer.Inst.Op(), producer, h.forwarding)
	if !ok {
		return result
	}

	if h.table.WriteBeforeReadSameCycle() {
		if at, found := producer.StageAt(available); found && at == stage.Writeback {
			available--
		}
	}

	if available >= candidate {
		result.Start = available + 1
		result.Hazard = &Hazard{
			Kind:        HazardRAW,
			Reg:         reg,
			Producer:    producer.Index,
			Consumer:    consumer,
			StallCycles: available - candidate + 1,
		}
	}

	if h.forwarding {
		result.Path = &ForwardingPath{
			Producer:  producer.Index,
			Consumer:  consumer,
			Reg:       reg,
			FromStage: producer.StageBy(result.Start - 1),
			ToStage:   s,
			Cycle:     result.Start,
		}
	}

	return result
}

func containsReg(regs []insts.Reg, reg insts.Reg) bool {
	for _, r := range regs {
		if r == reg {
			return true
		}
	}
	return false
}
