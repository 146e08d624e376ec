// Package timeline flattens scheduled stage intervals into per-cycle events
// for tabular display.
package timeline

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/pipeline"
	"github.com/sarchlab/pipesim/timing/stage"
)

// StallLabel is the label of an event in which the instruction waits.
const StallLabel = "stall"

// Errors reported by Verify.
var (
	ErrGap        = errors.New("gap between events")
	ErrOverlap    = errors.New("overlapping events")
	ErrStageOrder = errors.New("stages out of order")
	ErrOutOfOrder = errors.New("instruction issued out of order")
)

// Event is what one instruction does in one cycle.
type Event struct {
	Cycle uint64

	// Label is the stage name, or StallLabel.
	Label string

	// Stage is the occupied stage, or for a stall the stage being waited
	// for.
	Stage stage.Stage

	// Stall is true if the instruction waits in this cycle.
	Stall bool

	// Hazard is the cause of a stall. Nil for stage events.
	Hazard *pipeline.Hazard
}

// Entry is the projected timeline of one instruction.
type Entry struct {
	Index           int
	Inst            insts.Instruction
	Stages          [stage.Count]pipeline.StageInterval
	ForwardingPaths []pipeline.ForwardingPath
}

// Project converts a schedule into one Entry per instruction, in program
// order.
func Project(result *pipeline.Result) []Entry {
	entries := make([]Entry, 0, len(result.Timeline))
	for _, t := range result.Timeline {
		entries = append(entries, Entry{
			Index:           t.Index,
			Inst:            t.Inst,
			Stages:          t.Stages,
			ForwardingPaths: t.ForwardingPaths,
		})
	}
	return entries
}

// Events yields the entry's events in cycle order. For each stage it first
// yields one stall event per stall cycle, attributed to the stage's hazards
// in detection order, then one event per occupied cycle.
func (e *Entry) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, iv := range e.Stages {
			cycle := iv.Start - iv.StallsBefore

			for i := range iv.Hazards {
				h := &iv.Hazards[i]
				for range h.StallCycles {
					ev := Event{
						Cycle:  cycle,
						Label:  StallLabel,
						Stage:  iv.Stage,
						Stall:  true,
						Hazard: h,
					}
					if !yield(ev) {
						return
					}
					cycle++
				}
			}

			for c := iv.Start; c <= iv.End; c++ {
				ev := Event{
					Cycle: c,
					Label: iv.Stage.String(),
					Stage: iv.Stage,
				}
				if !yield(ev) {
					return
				}
			}
		}
	}
}

// EventList returns all events of the entry.
func (e *Entry) EventList() []Event {
	return slices.Collect(e.Events())
}

// EventAt returns the event in cycle.
func (e *Entry) EventAt(cycle uint64) (Event, bool) {
	for ev := range e.Events() {
		if ev.Cycle == cycle {
			return ev, true
		}
		if ev.Cycle > cycle {
			break
		}
	}
	return Event{}, false
}

// StageAt returns the stage the instruction occupies in cycle. Stall cycles
// belong to no stage.
func (e *Entry) StageAt(cycle uint64) (stage.Stage, bool) {
	for _, iv := range e.Stages {
		if iv.Contains(cycle) {
			return iv.Stage, true
		}
	}
	return 0, false
}

// ForwardingAt returns the forwarding paths that deliver values to the
// instruction when it enters stage s in cycle.
func (e *Entry) ForwardingAt(cycle uint64, s stage.Stage) []pipeline.ForwardingPath {
	var paths []pipeline.ForwardingPath
	for _, p := range e.ForwardingPaths {
		if p.Cycle == cycle && p.ToStage == s {
			paths = append(paths, p)
		}
	}
	return paths
}

// FirstCycle returns the first cycle of the entry, including stalls.
func (e *Entry) FirstCycle() uint64 {
	fetch := e.Stages[stage.Fetch]
	return fetch.Start - fetch.StallsBefore
}

// LastCycle returns the last cycle of the entry.
func (e *Entry) LastCycle() uint64 {
	return e.Stages[stage.Writeback].End
}

// StallCycles returns the number of stall events of the entry.
func (e *Entry) StallCycles() uint64 {
	var n uint64
	for _, iv := range e.Stages {
		n += iv.StallsBefore
	}
	return n
}

// MaxCycle returns the last cycle of any entry, or 0 if there are none.
func MaxCycle(entries []Entry) uint64 {
	var last uint64
	for i := range entries {
		for ev := range entries[i].Events() {
			last = max(last, ev.Cycle)
		}
	}
	return last
}

// Verify checks that every entry's events are cycle-contiguous and in
// stage order, and that instructions are fetched in program order.
func Verify(entries []Entry) error {
	for i := range entries {
		if err := verifyEntry(&entries[i]); err != nil {
			return fmt.Errorf("instruction %d: %w", entries[i].Index, err)
		}

		if i == 0 {
			continue
		}

		prevFetch := entries[i-1].Stages[stage.Fetch].End
		if entries[i].FirstCycle() <= prevFetch {
			return fmt.Errorf("instruction %d: %w: first cycle %d, previous fetch ends %d",
				entries[i].Index, ErrOutOfOrder, entries[i].FirstCycle(), prevFetch)
		}
	}
	return nil
}

func verifyEntry(e *Entry) error {
	first := true
	var prev Event

	for ev := range e.Events() {
		if first {
			first = false
			prev = ev
			continue
		}

		switch {
		case ev.Cycle <= prev.Cycle:
			return fmt.Errorf("%w at cycle %d", ErrOverlap, ev.Cycle)
		case ev.Cycle > prev.Cycle+1:
			return fmt.Errorf("%w after cycle %d", ErrGap, prev.Cycle)
		case ev.Stage < prev.Stage:
			return fmt.Errorf("%w at cycle %d", ErrStageOrder, ev.Cycle)
		}

		prev = ev
	}

	return nil
}
