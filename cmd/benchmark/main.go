// Command benchmark runs the pipeline timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags] [program files...]
//
// Flags:
//
//	-csv            Output results in CSV format (default: human-readable)
//	-json           Output results in JSON format
//	-no-forwarding  Disable operand forwarding
//	-config         Path to a timing configuration (JSON or YAML)
//	-v              Verbose output
//
// Example:
//
//	# Run the built-in benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
//
//	# Run scenario files instead of the built-in set
//	go run ./cmd/benchmark testdata/*.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/pipesim/benchmarks"
	"github.com/sarchlab/pipesim/timing/latency"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	noForwarding := flag.Bool("no-forwarding", false, "Disable operand forwarding")
	configPath := flag.String("config", "", "Path to timing configuration file")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.Forwarding = !*noForwarding
	config.Verbose = *verbose
	config.Output = os.Stdout

	if *configPath != "" {
		timingConfig, err := latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
		config.Config = timingConfig
	}

	harness := benchmarks.NewHarness(config)
	if flag.NArg() == 0 {
		harness.AddBenchmarks(benchmarks.GetScenarioBenchmarks())
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}
	for _, path := range flag.Args() {
		b, err := benchmarks.BenchmarkFromFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading benchmark: %v\n", err)
			os.Exit(1)
		}
		harness.AddBenchmark(b)
	}

	if !*csvOutput && !*jsonOutput {
		fmt.Println("Pipeline Timing Benchmark Harness")
		fmt.Println("=================================")
		fmt.Printf("Forwarding: %v\n", config.Forwarding)
		fmt.Println("")
	}

	results, err := harness.RunAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		summary := benchmarks.Summarize(results)
		fmt.Println("=== Summary ===")
		fmt.Printf("Benchmarks:      %d\n", summary.TotalBenchmarks)
		fmt.Printf("Instructions:    %d\n", summary.TotalInstructions)
		fmt.Printf("Cycles:          %d\n", summary.TotalCycles)
		fmt.Printf("Baseline Cycles: %d\n", summary.TotalBaselineCycles)
		fmt.Printf("Average CPI:     %.3f\n", summary.AverageCPI)
	}
}
