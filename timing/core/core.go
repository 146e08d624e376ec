// Package core provides the pipeline timing engine.
// It validates a program, schedules it, projects the timeline and derives
// metrics behind a single call.
package core

import (
	"fmt"
	"slices"

	"github.com/sarchlab/akita/v4/sim"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/latency"
	"github.com/sarchlab/pipesim/timing/metrics"
	"github.com/sarchlab/pipesim/timing/pipeline"
	"github.com/sarchlab/pipesim/timing/timeline"
)

// CoreOption is a functional option for configuring the Core.
type CoreOption func(*Core)

// WithLatencyTable sets a custom latency table.
func WithLatencyTable(table *latency.Table) CoreOption {
	return func(c *Core) {
		c.latencyTable = table
	}
}

// WithForwarding enables or disables operand forwarding.
func WithForwarding(enabled bool) CoreOption {
	return func(c *Core) {
		c.forwarding = enabled
	}
}

// WithHook attaches a hook to the core's scheduler. Hooks are not attached
// to the baseline scheduler used by Compare.
func WithHook(hook sim.Hook) CoreOption {
	return func(c *Core) {
		c.hooks = append(c.hooks, hook)
	}
}

// Result is the complete output of one simulation run.
type Result struct {
	// Program is a copy of the simulated program.
	Program []insts.Instruction

	// Timeline holds one entry per instruction in program order.
	Timeline []timeline.Entry

	// Hazards lists every hazard in detection order.
	Hazards []pipeline.Hazard

	// ForwardingPaths lists every forwarding path. Empty unless forwarding
	// is enabled.
	ForwardingPaths []pipeline.ForwardingPath

	// Metrics summarizes the run.
	Metrics metrics.Metrics
}

// Comparison holds a run and its forwarding-disabled baseline.
type Comparison struct {
	Result   *Result
	Baseline *Result
}

// Core is the timing engine. It keeps no state between runs.
type Core struct {
	// Scheduler is the underlying pipeline scheduler.
	Scheduler *pipeline.Scheduler

	latencyTable *latency.Table
	forwarding   bool
	hooks        []sim.Hook
}

// NewCore creates a new Core. Without options it uses the default
// latencies and no forwarding.
func NewCore(opts ...CoreOption) *Core {
	c := &Core{}
	for _, opt := range opts {
		opt(c)
	}

	if c.latencyTable == nil {
		c.latencyTable = latency.NewTable()
	}

	c.Scheduler = c.newScheduler(c.forwarding, "Scheduler")
	for _, h := range c.hooks {
		c.Scheduler.AcceptHook(h)
	}

	return c
}

func (c *Core) newScheduler(forwarding bool, name string) *pipeline.Scheduler {
	return pipeline.NewScheduler(
		pipeline.WithLatencyTable(c.latencyTable),
		pipeline.WithForwarding(forwarding),
		pipeline.WithName(name),
	)
}

// Forwarding returns true if the core forwards operands.
func (c *Core) Forwarding() bool {
	return c.forwarding
}

// LatencyTable returns the latency table of the core.
func (c *Core) LatencyTable() *latency.Table {
	return c.latencyTable
}

// ValidateProgram validates every instruction. The error names the index
// of the first invalid instruction.
func ValidateProgram(program []insts.Instruction) error {
	for i, inst := range program {
		if err := insts.Validate(inst); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return nil
}

// Run simulates the program. Nothing is scheduled unless every instruction
// is valid.
func (c *Core) Run(program []insts.Instruction) (*Result, error) {
	if err := ValidateProgram(program); err != nil {
		return nil, err
	}

	return c.run(c.Scheduler, program), nil
}

// Compare simulates the program with the core's configuration and, at the
// same time, without forwarding. The result's metrics carry the comparison
// against the baseline.
func (c *Core) Compare(program []insts.Instruction) (*Comparison, error) {
	if err := ValidateProgram(program); err != nil {
		return nil, err
	}

	baselineScheduler := c.newScheduler(false, "Baseline")
	cmp := &Comparison{}

	var g errgroup.Group
	g.Go(func() error {
		cmp.Result = c.run(c.Scheduler, program)
		return nil
	})
	g.Go(func() error {
		cmp.Baseline = c.run(baselineScheduler, program)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to simulate: %w", err)
	}

	cmp.Result.Metrics = metrics.Compute(
		cmp.Result.Timeline,
		cmp.Result.Hazards,
		c.forwarding,
		metrics.WithBaseline(cmp.Baseline.Timeline, cmp.Baseline.Hazards),
	)

	return cmp, nil
}

func (c *Core) run(s *pipeline.Scheduler, program []insts.Instruction) *Result {
	scheduled := s.Schedule(program)
	entries := timeline.Project(scheduled)

	return &Result{
		Program:         slices.Clone(program),
		Timeline:        entries,
		Hazards:         scheduled.Hazards,
		ForwardingPaths: scheduled.ForwardingPaths,
		Metrics:         metrics.Compute(entries, scheduled.Hazards, s.Forwarding()),
	}
}
