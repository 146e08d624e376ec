// Package metrics derives summary statistics from a projected timeline.
package metrics

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/timing/pipeline"
	"github.com/sarchlab/pipesim/timing/stage"
	"github.com/sarchlab/pipesim/timing/timeline"
)

// Metrics holds the summary statistics of one simulation run.
type Metrics struct {
	// TotalCycles is the last cycle of any event.
	TotalCycles uint64 `json:"total_cycles"`
	// Instructions is the number of instructions simulated.
	Instructions int `json:"instructions"`
	// CPI is TotalCycles / Instructions.
	CPI float64 `json:"cpi"`
	// SteadyStateCPI excludes the cycles spent filling the pipeline before
	// the first instruction retires.
	SteadyStateCPI float64 `json:"steady_state_cpi"`
	// IdealCycles is the cycle count of a hazard-free run.
	IdealCycles uint64 `json:"ideal_cycles"`
	// StallsByType sums the stall cycles of every hazard, by kind.
	StallsByType map[pipeline.HazardKind]uint64 `json:"stalls_by_type"`
	// TotalStalls is the sum of StallsByType.
	TotalStalls uint64 `json:"total_stalls"`
	// StallPercentage is TotalStalls / TotalCycles * 100.
	StallPercentage float64 `json:"stall_percentage"`
	// ForwardingPaths is the number of forwarding paths used.
	ForwardingPaths int `json:"forwarding_paths"`
	// Forwarding records whether the run used forwarding.
	Forwarding bool `json:"forwarding"`
	// Comparison is set when a baseline run was supplied.
	Comparison *Comparison `json:"comparison,omitempty"`
}

// Comparison relates a run to a forwarding-disabled baseline run of the
// same program.
type Comparison struct {
	BaselineCycles uint64  `json:"baseline_cycles"`
	BaselineCPI    float64 `json:"baseline_cpi"`
	BaselineStalls uint64  `json:"baseline_stalls"`

	// Reductions are baseline minus this run; negative means slower.
	CycleReduction        int64   `json:"cycle_reduction"`
	CPIReduction          float64 `json:"cpi_reduction"`
	StallReduction        int64   `json:"stall_reduction"`
	CycleReductionPercent float64 `json:"cycle_reduction_percent"`
}

// Option configures Compute.
type Option func(*options)

type options struct {
	baselineEntries []timeline.Entry
	baselineHazards []pipeline.Hazard
	hasBaseline     bool
}

// WithBaseline adds a comparison against a forwarding-disabled run.
func WithBaseline(entries []timeline.Entry, hazards []pipeline.Hazard) Option {
	return func(o *options) {
		o.baselineEntries = entries
		o.baselineHazards = hazards
		o.hasBaseline = true
	}
}

// Compute derives the metrics of a run from its projected timeline and
// hazard list.
func Compute(
	entries []timeline.Entry,
	hazards []pipeline.Hazard,
	forwarding bool,
	opts ...Option,
) Metrics {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	m := summarize(entries, hazards)
	m.Forwarding = forwarding
	for i := range entries {
		m.ForwardingPaths += len(entries[i].ForwardingPaths)
	}

	if o.hasBaseline {
		m.Comparison = compare(m, summarize(o.baselineEntries, o.baselineHazards))
	}

	return m
}

func summarize(entries []timeline.Entry, hazards []pipeline.Hazard) Metrics {
	m := Metrics{
		TotalCycles:  timeline.MaxCycle(entries),
		Instructions: len(entries),
		StallsByType: make(map[pipeline.HazardKind]uint64, len(pipeline.HazardKinds)),
	}

	for _, kind := range pipeline.HazardKinds {
		m.StallsByType[kind] = 0
	}
	for _, h := range hazards {
		m.StallsByType[h.Kind] += h.StallCycles
		m.TotalStalls += h.StallCycles
	}

	if m.Instructions == 0 {
		return m
	}

	n := uint64(m.Instructions)
	m.IdealCycles = stage.Count + n - 1
	m.CPI = float64(m.TotalCycles) / float64(n)
	if m.TotalCycles >= stage.Count-1 {
		m.SteadyStateCPI = float64(m.TotalCycles-(stage.Count-1)) / float64(n)
	}
	if m.TotalCycles > 0 {
		m.StallPercentage = float64(m.TotalStalls) / float64(m.TotalCycles) * 100
	}

	return m
}

func compare(m, baseline Metrics) *Comparison {
	c := &Comparison{
		BaselineCycles: baseline.TotalCycles,
		BaselineCPI:    baseline.CPI,
		BaselineStalls: baseline.TotalStalls,
		CycleReduction: int64(baseline.TotalCycles) - int64(m.TotalCycles),
		CPIReduction:   baseline.CPI - m.CPI,
		StallReduction: int64(baseline.TotalStalls) - int64(m.TotalStalls),
	}
	if baseline.TotalCycles > 0 {
		c.CycleReductionPercent = float64(c.CycleReduction) / float64(baseline.TotalCycles) * 100
	}
	return c
}

// Stalls returns the stall cycles caused by hazards of kind.
func (m Metrics) Stalls(kind pipeline.HazardKind) uint64 {
	return m.StallsByType[kind]
}

// ExecutionTime returns the wall time, in seconds, of TotalCycles at the
// given clock frequency.
func (m Metrics) ExecutionTime(freq sim.Freq) float64 {
	if freq <= 0 {
		return 0
	}
	return float64(m.TotalCycles) / float64(freq)
}
