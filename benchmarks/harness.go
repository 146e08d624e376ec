// Package benchmarks provides a harness that runs named programs through the
// pipeline model and compares forwarding against the no-forwarding
// baseline.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/loader"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/latency"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Instructions is the number of instructions in the program
	Instructions int `json:"instructions"`

	// Cycles is the total cycle count with the harness's forwarding setting
	Cycles uint64 `json:"cycles"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// RAWStalls and StructuralStalls are stall cycles by hazard kind
	RAWStalls        uint64 `json:"raw_stalls"`
	StructuralStalls uint64 `json:"structural_stalls"`

	// ForwardingPaths is the number of values forwarded
	ForwardingPaths int `json:"forwarding_paths"`

	// BaselineCycles is the cycle count without forwarding
	BaselineCycles uint64 `json:"baseline_cycles"`

	// BaselineCPI is CPI without forwarding
	BaselineCPI float64 `json:"baseline_cpi"`

	// Speedup is BaselineCycles / Cycles
	Speedup float64 `json:"speedup"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the instruction sequence to simulate
	Program []insts.Instruction

	// Config overrides the harness latencies if set
	Config *latency.TimingConfig
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Forwarding enables operand forwarding
	Forwarding bool

	// Config is the timing configuration (default: latency.DefaultTimingConfig)
	Config *latency.TimingConfig

	// Parallelism bounds the number of benchmarks run at once (default: NumCPU)
	Parallelism int

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Forwarding:  true,
		Config:      latency.DefaultTimingConfig(),
		Parallelism: runtime.NumCPU(),
		Output:      os.Stdout,
		Verbose:     false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Config == nil {
		config.Config = latency.DefaultTimingConfig()
	}
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// BenchmarkFromFile loads a benchmark from an assembly or scenario file.
func BenchmarkFromFile(path string) (Benchmark, error) {
	prog, err := loader.Load(path)
	if err != nil {
		return Benchmark{}, err
	}
	return Benchmark{
		Name:        prog.Name,
		Description: prog.Description,
		Program:     prog.Instructions,
		Config:      prog.Config,
	}, nil
}

// RunAll executes all benchmarks and returns results in the order the
// benchmarks were added. It fails on the first invalid program.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, len(h.benchmarks))

	var g errgroup.Group
	g.SetLimit(h.config.Parallelism)
	for i, bench := range h.benchmarks {
		g.Go(func() error {
			result, err := h.runBenchmark(bench)
			if err != nil {
				return fmt.Errorf("benchmark %s: %w", bench.Name, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) (BenchmarkResult, error) {
	config := h.config.Config
	if bench.Config != nil {
		config = bench.Config
	}

	c := core.NewCore(
		core.WithLatencyTable(latency.NewTableWithConfig(config)),
		core.WithForwarding(h.config.Forwarding),
	)

	start := time.Now()
	cmp, err := c.Compare(bench.Program)
	wallTime := time.Since(start)
	if err != nil {
		return BenchmarkResult{}, err
	}

	m := cmp.Result.Metrics
	result := BenchmarkResult{
		Name:             bench.Name,
		Description:      bench.Description,
		Instructions:     m.Instructions,
		Cycles:           m.TotalCycles,
		CPI:              m.CPI,
		RAWStalls:        m.Stalls(pipeline.HazardRAW),
		StructuralStalls: m.Stalls(pipeline.HazardStructural),
		ForwardingPaths:  m.ForwardingPaths,
		BaselineCycles:   m.Comparison.BaselineCycles,
		BaselineCPI:      m.Comparison.BaselineCPI,
		WallTime:         wallTime,
	}
	if result.Cycles > 0 {
		result.Speedup = float64(result.BaselineCycles) / float64(result.Cycles)
	}

	return result, nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Pipeline Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions:      %d\n", r.Instructions)
		_, _ = fmt.Fprintf(h.config.Output, "  Cycles:            %d\n", r.Cycles)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:               %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  RAW Stalls:        %d\n", r.RAWStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Structural Stalls: %d\n", r.StructuralStalls)
		if h.config.Forwarding {
			_, _ = fmt.Fprintf(h.config.Output, "  Forwarding Paths:  %d\n", r.ForwardingPaths)
			_, _ = fmt.Fprintln(h.config.Output, "  --- Baseline (no forwarding) ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Cycles:            %d\n", r.BaselineCycles)
			_, _ = fmt.Fprintf(h.config.Output, "  CPI:               %.3f\n", r.BaselineCPI)
			_, _ = fmt.Fprintf(h.config.Output, "  Speedup:           %.2fx\n", r.Speedup)
		}

		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		}
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,instructions,cycles,cpi,raw_stalls,structural_stalls,forwarding_paths,baseline_cycles,baseline_cpi,speedup")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%.3f,%.3f\n",
			r.Name,
			r.Instructions,
			r.Cycles,
			r.CPI,
			r.RAWStalls,
			r.StructuralStalls,
			r.ForwardingPaths,
			r.BaselineCycles,
			r.BaselineCPI,
			r.Speedup,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Forwarding records the harness forwarding setting
	Forwarding bool `json:"forwarding"`

	// Config is the default timing configuration
	Config *latency.TimingConfig `json:"config"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalBaselineCycles is the sum of all baseline cycles
	TotalBaselineCycles uint64 `json:"total_baseline_cycles"`

	// TotalInstructions is the sum of all instructions
	TotalInstructions int `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize computes aggregate statistics.
func Summarize(results []BenchmarkResult) ReportSummary {
	s := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		s.TotalCycles += r.Cycles
		s.TotalBaselineCycles += r.BaselineCycles
		s.TotalInstructions += r.Instructions
		s.TotalWallTime += r.WallTime
	}
	if s.TotalInstructions > 0 {
		s.AverageCPI = float64(s.TotalCycles) / float64(s.TotalInstructions)
	}
	return s
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Forwarding: h.config.Forwarding,
			Config:     h.config.Config,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
