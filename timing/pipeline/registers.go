// Package pipeline schedules instructions through the 5-stage in-order
// pipeline and records the hazards and forwarding paths they encounter.
package pipeline

import (
	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/stage"
)

// StageInterval holds when one instruction occupied one stage.
type StageInterval struct {
	// Stage is the pipeline stage.
	Stage stage.Stage

	// Start and End are the first and last occupied cycles (1-based,
	// inclusive).
	Start uint64
	End   uint64

	// StallsBefore is the number of stall cycles spent waiting to enter
	// the stage.
	StallsBefore uint64

	// Hazards are the causes of those stalls.
	Hazards []Hazard
}

// Cycles returns the number of occupied cycles.
func (iv StageInterval) Cycles() uint64 {
	return iv.End - iv.Start + 1
}

// Contains returns true if the stage is occupied in cycle.
func (iv StageInterval) Contains(cycle uint64) bool {
	return iv.Start <= cycle && cycle <= iv.End
}

// InstructionTiming holds the scheduled stage intervals of one instruction.
type InstructionTiming struct {
	// Index is the position of the instruction in program order.
	Index int

	// Inst is the scheduled instruction.
	Inst insts.Instruction

	// Stages holds one interval per stage, indexed by stage.Stage.
	Stages [stage.Count]StageInterval

	// ForwardingPaths are the paths that deliver values to this
	// instruction. Empty unless forwarding is enabled.
	ForwardingPaths []ForwardingPath
}

// Interval returns the interval of stage s.
func (t *InstructionTiming) Interval(s stage.Stage) StageInterval {
	return t.Stages[s]
}

// Start returns the first occupied cycle of stage s.
func (t *InstructionTiming) Start(s stage.Stage) uint64 {
	return t.Stages[s].Start
}

// End returns the last occupied cycle of stage s.
func (t *InstructionTiming) End(s stage.Stage) uint64 {
	return t.Stages[s].End
}

// FirstCycle returns the first cycle attributed to the instruction,
// including stalls before Fetch.
func (t *InstructionTiming) FirstCycle() uint64 {
	fetch := t.Stages[stage.Fetch]
	return fetch.Start - fetch.StallsBefore
}

// LastCycle returns the last cycle of Writeback.
func (t *InstructionTiming) LastCycle() uint64 {
	return t.Stages[stage.Writeback].End
}

// StallCycles returns the total stall cycles across all stages.
func (t *InstructionTiming) StallCycles() uint64 {
	var total uint64
	for _, iv := range t.Stages {
		total += iv.StallsBefore
	}
	return total
}

// Retired returns true if the instruction finished Writeback before cycle.
func (t *InstructionTiming) Retired(cycle uint64) bool {
	return t.LastCycle() < cycle
}

// StageAt returns the stage the instruction occupies in cycle. Stall cycles
// belong to no stage.
func (t *InstructionTiming) StageAt(cycle uint64) (stage.Stage, bool) {
	for _, s := range stage.All {
		if t.Stages[s].Contains(cycle) {
			return s, true
		}
	}
	return 0, false
}

// StageBy returns the stage the instruction occupies in cycle or, if cycle
// is a stall cycle, the last stage it finished before cycle. Before the
// instruction is fetched it returns Fetch.
func (t *InstructionTiming) StageBy(cycle uint64) stage.Stage {
	if s, ok := t.StageAt(cycle); ok {
		return s
	}

	held := stage.Fetch
	for _, s := range stage.All {
		if t.Stages[s].End < cycle {
			held = s
		}
	}
	return held
}

// Scoreboard tracks the most recent writer of each register.
type Scoreboard struct {
	lastWriter [insts.NumRegs]int
}

// NewScoreboard creates a scoreboard with no writers.
func NewScoreboard() *Scoreboard {
	s := &Scoreboard{}
	s.Clear()
	return s
}

// Clear forgets every writer.
func (s *Scoreboard) Clear() {
	for i := range s.lastWriter {
		s.lastWriter[i] = -1
	}
}

// Record marks the instruction at index as the latest writer of every
// register it writes.
func (s *Scoreboard) Record(index int, inst insts.Instruction) {
	for _, reg := range insts.WriteSet(inst) {
		if reg.IsValid() {
			s.lastWriter[reg] = index
		}
	}
}

// LastWriter returns the index of the most recent instruction that writes
// reg.
func (s *Scoreboard) LastWriter(reg insts.Reg) (int, bool) {
	if !reg.IsValid() || s.lastWriter[reg] < 0 {
		return -1, false
	}
	return s.lastWriter[reg], true
}
