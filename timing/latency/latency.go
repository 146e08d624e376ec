// Package latency provides the stage timing model for the pipeline.
//
// A Table is built once per simulation from a TimingConfig and answers how
// long each stage takes, when each operand must be available and when each
// result can be consumed, with and without forwarding.
package latency

import (
	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/stage"
)

// StageTimings reports when each stage of a scheduled instruction ends.
type StageTimings interface {
	End(s stage.Stage) uint64
}

// Table provides stage timing lookups. It is immutable once created.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return NewTableWithConfig(DefaultTimingConfig())
}

// NewTableWithConfig creates a new latency table with custom timing
// configuration. The configuration is copied and normalized, so later
// changes to config do not affect the table.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config.Normalize(),
	}
}

// StageCost returns the number of cycles an instruction of type op occupies
// stage s.
func (t *Table) StageCost(op insts.Op, s stage.Stage) uint64 {
	if s != t.MultiCycleStage(op) {
		return 1
	}
	return t.GetLatency(op)
}

// MultiCycleStage returns the stage that carries the configured latency:
// Memory for LOAD and STORE, Execute otherwise.
func (t *Table) MultiCycleStage(op insts.Op) stage.Stage {
	if t.IsMemoryOp(op) {
		return stage.Memory
	}
	return stage.Execute
}

// GetLatency returns the configured cost of the instruction's multi-cycle
// stage.
func (t *Table) GetLatency(op insts.Op) uint64 {
	l := t.config.Latency(op)
	if t.IsMemoryOp(op) {
		return uint64(l.Memory)
	}
	return uint64(l.Execute)
}

// OperandReadStage returns the stage at which a read operand must hold its
// value. Without forwarding every operand is read from the register file in
// Decode. With forwarding operands are needed at Execute, except the value
// a STORE writes to memory, which is needed at Memory.
func (t *Table) OperandReadStage(op insts.Op, operand insts.Operand, forwarding bool) stage.Stage {
	if !forwarding {
		return stage.Decode
	}
	if t.IsStoreOp(op) && operand == insts.OperandRs2 {
		return stage.Memory
	}
	return stage.Execute
}

// ForwardingStage returns the stage whose end makes the result available
// for forwarding. STORE produces no register result.
func (t *Table) ForwardingStage(op insts.Op) (stage.Stage, bool) {
	switch {
	case t.IsLoadOp(op):
		return stage.Memory, true
	case op.IsArithmetic():
		return stage.Execute, true
	default:
		return 0, false
	}
}

// WriteStage returns the stage in which the instruction commits its effect.
func (t *Table) WriteStage(op insts.Op) stage.Stage {
	if t.IsStoreOp(op) {
		return stage.Memory
	}
	return stage.Writeback
}

// ResultAvailableCycle returns the cycle at whose end a producer's result
// can be consumed. Without forwarding this is the end of the write stage;
// with forwarding it is the end of the forwarding stage. ok is false when
// the instruction has no forwardable result.
func (t *Table) ResultAvailableCycle(
	op insts.Op,
	timings StageTimings,
	forwarding bool,
) (cycle uint64, ok bool) {
	if !forwarding {
		return timings.End(t.WriteStage(op)), true
	}

	s, ok := t.ForwardingStage(op)
	if !ok {
		return 0, false
	}
	return timings.End(s), true
}

// WriteBeforeReadSameCycle returns true if the register file can be read in
// the same cycle it is written.
func (t *Table) WriteBeforeReadSameCycle() bool {
	return t.config.WriteBeforeReadSameCycle
}

// IsMemoryOp returns true if the instruction accesses memory.
func (t *Table) IsMemoryOp(op insts.Op) bool {
	return op.IsMemory()
}

// IsLoadOp returns true if the instruction is a load operation.
func (t *Table) IsLoadOp(op insts.Op) bool {
	return op == insts.OpLOAD
}

// IsStoreOp returns true if the instruction is a store operation.
func (t *Table) IsStoreOp(op insts.Op) bool {
	return op == insts.OpSTORE
}

// Config returns a copy of the table's timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config.Clone()
}
