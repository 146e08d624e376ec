// Package main provides the entry point for pipesim.
// pipesim is a cycle-level timing model of a 5-stage in-order pipeline.
//
// For the full CLI, use: go run ./cmd/pipesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("pipesim - 5-stage in-order pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: pipesim [options] <program.s|scenario.yaml>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -forwarding  Enable operand forwarding")
	fmt.Println("  -config      Path to timing configuration (JSON or YAML)")
	fmt.Println("  -json        Output the result as JSON")
	fmt.Println("  -csv         Output the timeline as CSV")
	fmt.Println("  -save        Write the loaded program as a YAML scenario")
	fmt.Println("  -v           Trace scheduler events")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/pipesim' for the full CLI.")
	fmt.Println("Run 'go run ./cmd/benchmark' for the benchmark harness.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/pipesim' instead.")
	}
}
