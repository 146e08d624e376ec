// Package stage defines the five pipeline stages and their order.
package stage

import "fmt"

// Stage is one of the five in-order pipeline stages.
type Stage uint8

// Pipeline stages in program order.
const (
	Fetch Stage = iota
	Decode
	Execute
	Memory
	Writeback
)

// Count is the number of pipeline stages.
const Count = 5

// All lists the stages in pipeline order.
var All = [Count]Stage{Fetch, Decode, Execute, Memory, Writeback}

var names = [Count]string{"Fetch", "Decode", "Execute", "Memory", "Writeback"}

var shortNames = [Count]string{"IF", "ID", "EX", "MEM", "WB"}

// String returns the stage name, e.g. "Execute".
func (s Stage) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
	return names[s]
}

// Short returns the classic abbreviation, e.g. "EX".
func (s Stage) Short() string {
	if !s.IsValid() {
		return "?"
	}
	return shortNames[s]
}

// IsValid returns true for the five defined stages.
func (s Stage) IsValid() bool {
	return s < Count
}

// Next returns the following stage. ok is false for Writeback.
func (s Stage) Next() (next Stage, ok bool) {
	if s >= Writeback {
		return s, false
	}
	return s + 1, true
}

// IsLast returns true for Writeback.
func (s Stage) IsLast() bool {
	return s == Writeback
}

// Parse converts a stage name or abbreviation to a Stage.
func Parse(name string) (Stage, error) {
	for _, s := range All {
		if names[s] == name || shortNames[s] == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown pipeline stage %q", name)
}
