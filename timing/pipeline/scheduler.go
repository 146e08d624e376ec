package pipeline

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/latency"
	"github.com/sarchlab/pipesim/timing/stage"
)

// Hook positions invoked while scheduling. The hook item is a
// StageInterval, a Hazard or a ForwardingPath respectively; the detail is
// the index of the instruction being scheduled.
var (
	HookPosStageScheduled = &sim.HookPos{Name: "StageScheduled"}
	HookPosHazard         = &sim.HookPos{Name: "Hazard"}
	HookPosForward        = &sim.HookPos{Name: "Forward"}
)

// SchedulerOption is a functional option for configuring the Scheduler.
type SchedulerOption func(*Scheduler)

// WithLatencyTable sets a custom latency table for stage costs.
func WithLatencyTable(table *latency.Table) SchedulerOption {
	return func(s *Scheduler) {
		s.latencyTable = table
	}
}

// WithForwarding enables or disables operand forwarding.
func WithForwarding(enabled bool) SchedulerOption {
	return func(s *Scheduler) {
		s.forwarding = enabled
	}
}

// WithName sets the scheduler name reported to hooks. The name must follow
// akita naming rules.
func WithName(name string) SchedulerOption {
	return func(s *Scheduler) {
		sim.NameMustBeValid(name)
		s.name = name
	}
}

// Scheduler computes, for every instruction, the cycle interval of each
// stage under in-order issue, structural hazards and RAW hazards.
type Scheduler struct {
	*sim.HookableBase

	name         string
	latencyTable *latency.Table
	forwarding   bool
	hazardUnit   *HazardUnit
}

// NewScheduler creates a scheduler. Without options it uses the default
// latencies and no forwarding.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		HookableBase: sim.NewHookableBase(),
		name:         "Scheduler",
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.latencyTable == nil {
		s.latencyTable = latency.NewTable()
	}
	s.hazardUnit = NewHazardUnit(s.latencyTable, s.forwarding)

	return s
}

// Name returns the name of the scheduler.
func (s *Scheduler) Name() string {
	return s.name
}

// Forwarding returns true if operand forwarding is enabled.
func (s *Scheduler) Forwarding() bool {
	return s.forwarding
}

// LatencyTable returns the latency table used for stage costs.
func (s *Scheduler) LatencyTable() *latency.Table {
	return s.latencyTable
}

// Result is the outcome of scheduling a program.
type Result struct {
	// Timeline holds one entry per instruction in program order.
	Timeline []InstructionTiming

	// Hazards lists every hazard in detection order.
	Hazards []Hazard

	// ForwardingPaths lists every forwarding path in detection order.
	ForwardingPaths []ForwardingPath

	// Forwarding records whether the program was scheduled with forwarding.
	Forwarding bool
}

// PathsTo returns the forwarding paths that deliver values to the
// instruction at index consumer.
func (r *Result) PathsTo(consumer int) []ForwardingPath {
	if consumer < 0 || consumer >= len(r.Timeline) {
		return nil
	}
	return r.Timeline[consumer].ForwardingPaths
}

// TotalCycles returns the cycle in which the last instruction retires.
func (r *Result) TotalCycles() uint64 {
	var last uint64
	for i := range r.Timeline {
		last = max(last, r.Timeline[i].LastCycle())
	}
	return last
}

// Schedule computes the timeline of a validated program. The scheduler
// keeps no state between calls, so the same program always yields the same
// result.
func (s *Scheduler) Schedule(program []insts.Instruction) *Result {
	result := &Result{
		Timeline:   make([]InstructionTiming, 0, len(program)),
		Forwarding: s.forwarding,
	}
	board := NewScoreboard()

	for i, inst := range program {
		timing := s.scheduleInstruction(result, board, i, inst)
		result.Timeline = append(result.Timeline, timing)
		board.Record(i, inst)
	}

	return result
}

func (s *Scheduler) scheduleInstruction(
	result *Result,
	board *Scoreboard,
	index int,
	inst insts.Instruction,
) InstructionTiming {
	timing := InstructionTiming{Index: index, Inst: inst}

	var prev *InstructionTiming
	candidate := uint64(1)
	if index > 0 {
		prev = &result.Timeline[index-1]
		candidate = prev.End(stage.Fetch) + 1
	}

	for _, st := range stage.All {
		iv := StageInterval{Stage: st, Start: candidate}

		if prev != nil {
			start, hazard := s.hazardUnit.DetectStructural(prev, index, st, iv.Start)
			if hazard != nil {
				iv.Start = start
				iv.StallsBefore += hazard.StallCycles
				iv.Hazards = append(iv.Hazards, *hazard)
				s.recordHazard(result, index, *hazard)
			}
		}

		for _, reg := range s.hazardUnit.RegistersNeeded(inst, st) {
			writer, ok := board.LastWriter(reg)
			if !ok {
				continue
			}

			producer := &result.Timeline[writer]
			if producer.Retired(iv.Start) {
				continue
			}

			raw := s.hazardUnit.DetectRAW(producer, index, reg, st, iv.Start)
			if raw.Hazard != nil {
				iv.Start = raw.Start
				iv.StallsBefore += raw.Hazard.StallCycles
				iv.Hazards = append(iv.Hazards, *raw.Hazard)
				s.recordHazard(result, index, *raw.Hazard)
			}
			if raw.Path != nil {
				timing.ForwardingPaths = append(timing.ForwardingPaths, *raw.Path)
				result.ForwardingPaths = append(result.ForwardingPaths, *raw.Path)
				s.invoke(HookPosForward, *raw.Path, index)
			}
		}

		iv.End = iv.Start + s.latencyTable.StageCost(inst.Op(), st) - 1
		timing.Stages[st] = iv
		s.invoke(HookPosStageScheduled, iv, index)

		candidate = iv.End + 1
	}

	return timing
}

func (s *Scheduler) recordHazard(result *Result, index int, hazard Hazard) {
	result.Hazards = append(result.Hazards, hazard)
	s.invoke(HookPosHazard, hazard, index)
}

func (s *Scheduler) invoke(pos *sim.HookPos, item interface{}, index int) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   item,
		Detail: index,
	})
}
