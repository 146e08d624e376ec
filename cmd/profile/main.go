// Package main provides a profiling wrapper for pipesim to identify
// performance bottlenecks in the scheduler.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/pipesim/benchmarks"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/latency"
)

var (
	forwarding = flag.Bool("forwarding", true, "Enable operand forwarding")
	compare    = flag.Bool("compare", false, "Also schedule the no-forwarding baseline")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	duration   = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	size       = flag.Int("n", 100000, "number of synthetic instructions when no program is given")
	seed       = flag.Uint64("seed", 1, "seed for the synthetic program")
	repeat     = flag.Int("repeat", 1, "number of times to schedule the program")
)

func main() {
	flag.Parse()

	bench := benchmarks.Synthetic(*size, *seed)
	if flag.NArg() > 0 {
		var err error
		bench, err = benchmarks.BenchmarkFromFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
			os.Exit(1)
		}
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	fmt.Printf("Program: %s (%d instructions)\n", bench.Name, len(bench.Program))

	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	config := bench.Config
	if config == nil {
		config = latency.DefaultTimingConfig()
	}
	c := core.NewCore(
		core.WithLatencyTable(latency.NewTableWithConfig(config)),
		core.WithForwarding(*forwarding),
	)

	start := time.Now()

	var cycles uint64
	for range *repeat {
		var res *core.Result
		if *compare {
			cmp, err := c.Compare(bench.Program)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			res = cmp.Result
		} else {
			var err error
			res, err = c.Run(bench.Program)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		cycles = res.Metrics.TotalCycles
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	scheduled := uint64(len(bench.Program)) * uint64(*repeat)

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Simulated cycles: %d\n", cycles)
	fmt.Printf("Instructions scheduled: %d\n", scheduled)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if scheduled > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(scheduled)/elapsed.Seconds())
	}
}
