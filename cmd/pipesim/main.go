// Package main provides the entry point for pipesim.
// pipesim computes the cycle-by-cycle schedule of a program on a 5-stage
// in-order pipeline.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/pipesim/loader"
	"github.com/sarchlab/pipesim/report"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/latency"
	"github.com/sarchlab/pipesim/timing/trace"
)

var (
	configPath = flag.String("config", "", "Path to timing configuration file (JSON or YAML)")
	forwarding = flag.Bool("forwarding", false, "Enable operand forwarding")
	jsonOut    = flag.Bool("json", false, "Output the result as JSON")
	csvOut     = flag.Bool("csv", false, "Output the timeline as CSV")
	savePath   = flag.String("save", "", "Write the loaded program as a YAML scenario")
	verbose    = flag.Bool("v", false, "Trace scheduler events to stderr")
)

// options are the settings of one simulation run.
type options struct {
	configPath string
	// forwarding is nil if the flag was not given, so the program file's
	// setting applies.
	forwarding *bool
	format     string
	savePath   string
	verbose    bool
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: pipesim [options] <program.s|scenario.yaml>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	opts := options{
		configPath: *configPath,
		savePath:   *savePath,
		verbose:    *verbose,
		format:     "text",
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "forwarding" {
			opts.forwarding = forwarding
		}
	})
	switch {
	case *jsonOut:
		opts.format = "json"
	case *csvOut:
		opts.format = "csv"
	}

	if err := run(flag.Arg(0), opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run loads the program at path, simulates it and writes the report to out.
// Trace lines go to logOut.
func run(path string, opts options, out, logOut io.Writer) error {
	prog, err := loader.Load(path)
	if err != nil {
		return err
	}

	timingConfig, err := resolveConfig(prog, opts.configPath)
	if err != nil {
		return err
	}

	fwd := false
	if prog.Forwarding != nil {
		fwd = *prog.Forwarding
	}
	if opts.forwarding != nil {
		fwd = *opts.forwarding
	}

	if opts.savePath != "" {
		saved := *prog
		saved.Config = timingConfig
		saved.Forwarding = &fwd
		if err := loader.SaveScenario(opts.savePath, &saved); err != nil {
			return err
		}
	}

	coreOpts := []core.CoreOption{
		core.WithLatencyTable(latency.NewTableWithConfig(timingConfig)),
		core.WithForwarding(fwd),
	}
	if opts.verbose {
		_, _ = fmt.Fprintf(logOut, "Loaded: %s (%d instructions)\n", prog.Name, len(prog.Instructions))
		_, _ = fmt.Fprintf(logOut, "Forwarding: %v\n", fwd)
		coreOpts = append(coreOpts, core.WithHook(trace.NewLogger(logOut)))
	}
	c := core.NewCore(coreOpts...)

	var res *core.Result
	if fwd {
		cmp, err := c.Compare(prog.Instructions)
		if err != nil {
			return err
		}
		res = cmp.Result
	} else {
		res, err = c.Run(prog.Instructions)
		if err != nil {
			return err
		}
	}

	switch opts.format {
	case "json":
		return report.WriteJSON(out, res)
	case "csv":
		return report.WriteCSV(out, res)
	default:
		if prog.Name != "" {
			_, _ = fmt.Fprintf(out, "Program: %s\n", prog.Name)
		}
		if prog.Description != "" {
			_, _ = fmt.Fprintf(out, "%s\n", prog.Description)
		}
		_, _ = fmt.Fprintln(out)
		report.Write(out, res)
		return nil
	}
}

// resolveConfig picks the timing configuration: a configuration file wins
// over the program's own latencies, which win over the defaults.
func resolveConfig(prog *loader.Program, path string) (*latency.TimingConfig, error) {
	if path != "" {
		timingConfig, err := latency.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load timing config: %w", err)
		}
		return timingConfig, nil
	}

	if prog.Config != nil {
		return prog.Config, nil
	}

	return latency.DefaultTimingConfig(), nil
}
