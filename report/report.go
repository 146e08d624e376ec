// Package report renders simulation results as text, CSV and JSON.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/metrics"
	"github.com/sarchlab/pipesim/timing/pipeline"
	"github.com/sarchlab/pipesim/timing/timeline"
)

// StallCell is printed in the timeline grid for a stall cycle.
const StallCell = "--"

const cellWidth = 4

// Write prints the full text report: timeline, hazards, forwarding paths
// and metrics.
func Write(w io.Writer, res *core.Result) {
	WriteTimeline(w, res.Program, res.Timeline)
	_, _ = fmt.Fprintln(w)
	WriteHazards(w, res.Program, res.Hazards)
	if res.Metrics.Forwarding {
		_, _ = fmt.Fprintln(w)
		WriteForwarding(w, res.Program, res.ForwardingPaths)
	}
	_, _ = fmt.Fprintln(w)
	WriteMetrics(w, res.Metrics)
}

// WriteTimeline prints one row per instruction and one column per cycle.
func WriteTimeline(w io.Writer, program []insts.Instruction, entries []timeline.Entry) {
	labels := make([]string, len(entries))
	labelWidth := len("Instruction")
	for i := range entries {
		labels[i] = fmt.Sprintf("%d: %s", entries[i].Index, entries[i].Inst)
		labelWidth = max(labelWidth, len(labels[i]))
	}

	last := timeline.MaxCycle(entries)

	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "%-*s |", labelWidth, "Instruction")
	for c := uint64(1); c <= last; c++ {
		_, _ = fmt.Fprintf(&b, "%*d", cellWidth, c)
	}
	_, _ = fmt.Fprintln(w, b.String())
	_, _ = fmt.Fprintln(w, strings.Repeat("-", labelWidth+2+int(last)*cellWidth))

	for i := range entries {
		b.Reset()
		_, _ = fmt.Fprintf(&b, "%-*s |", labelWidth, labels[i])

		cells := make([]string, last+1)
		for ev := range entries[i].Events() {
			if ev.Stall {
				cells[ev.Cycle] = StallCell
			} else {
				cells[ev.Cycle] = ev.Stage.Short()
			}
		}
		for c := uint64(1); c <= last; c++ {
			_, _ = fmt.Fprintf(&b, "%*s", cellWidth, cells[c])
		}

		_, _ = fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

// HazardGroup collects the hazards that share a kind, register and
// producer.
type HazardGroup struct {
	Kind        pipeline.HazardKind
	Reg         insts.Reg
	Producer    int
	Consumers   []int
	StallCycles uint64
}

type hazardKey struct {
	kind     pipeline.HazardKind
	reg      insts.Reg
	producer int
}

// GroupHazards groups hazards by kind, register and producer, in order of
// first appearance. Structural hazards ignore the register.
func GroupHazards(hazards []pipeline.Hazard) []HazardGroup {
	var groups []HazardGroup
	index := make(map[hazardKey]int)

	for _, h := range hazards {
		key := hazardKey{kind: h.Kind, producer: h.Producer}
		if h.Kind == pipeline.HazardRAW {
			key.reg = h.Reg
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, HazardGroup{
				Kind:     key.kind,
				Reg:      key.reg,
				Producer: key.producer,
			})
		}

		g := &groups[i]
		g.StallCycles += h.StallCycles
		if !containsInt(g.Consumers, h.Consumer) {
			g.Consumers = append(g.Consumers, h.Consumer)
		}
	}

	return groups
}

// WriteHazards prints the grouped hazards.
func WriteHazards(w io.Writer, program []insts.Instruction, hazards []pipeline.Hazard) {
	_, _ = fmt.Fprintln(w, "Hazards:")
	groups := GroupHazards(hazards)
	if len(groups) == 0 {
		_, _ = fmt.Fprintln(w, "  none")
		return
	}

	for _, g := range groups {
		what := g.Kind.String()
		if g.Kind == pipeline.HazardRAW {
			what = fmt.Sprintf("RAW on %s", g.Reg)
		}
		_, _ = fmt.Fprintf(w, "  %-14s from %s: %d stall cycle(s), affects %s\n",
			what, describe(program, g.Producer), g.StallCycles, joinInts(g.Consumers))
	}
}

// WriteForwarding prints the forwarding paths.
func WriteForwarding(w io.Writer, program []insts.Instruction, paths []pipeline.ForwardingPath) {
	_, _ = fmt.Fprintln(w, "Forwarding:")
	if len(paths) == 0 {
		_, _ = fmt.Fprintln(w, "  none")
		return
	}

	for _, p := range paths {
		_, _ = fmt.Fprintf(w, "  %-3s %s %s -> %s %s at cycle %d\n",
			p.Reg, describe(program, p.Producer), p.FromStage.Short(),
			describe(program, p.Consumer), p.ToStage.Short(), p.Cycle)
	}
}

// WriteMetrics prints the metrics.
func WriteMetrics(w io.Writer, m metrics.Metrics) {
	_, _ = fmt.Fprintln(w, "Metrics:")
	_, _ = fmt.Fprintf(w, "  Forwarding:        %s\n", onOff(m.Forwarding))
	_, _ = fmt.Fprintf(w, "  Instructions:      %d\n", m.Instructions)
	_, _ = fmt.Fprintf(w, "  Total Cycles:      %d\n", m.TotalCycles)
	_, _ = fmt.Fprintf(w, "  Ideal Cycles:      %d\n", m.IdealCycles)
	_, _ = fmt.Fprintf(w, "  CPI:               %.2f\n", m.CPI)
	_, _ = fmt.Fprintf(w, "  Steady-State CPI:  %.2f\n", m.SteadyStateCPI)
	for _, kind := range pipeline.HazardKinds {
		_, _ = fmt.Fprintf(w, "  %-18s %d\n", kind.String()+" Stalls:", m.Stalls(kind))
	}
	_, _ = fmt.Fprintf(w, "  Total Stalls:      %d (%.1f%%)\n", m.TotalStalls, m.StallPercentage)
	if m.Forwarding {
		_, _ = fmt.Fprintf(w, "  Forwarding Paths:  %d\n", m.ForwardingPaths)
	}

	if c := m.Comparison; c != nil {
		_, _ = fmt.Fprintln(w, "  --- vs. no forwarding ---")
		_, _ = fmt.Fprintf(w, "  Baseline Cycles:   %d\n", c.BaselineCycles)
		_, _ = fmt.Fprintf(w, "  Baseline CPI:      %.2f\n", c.BaselineCPI)
		_, _ = fmt.Fprintf(w, "  Cycles Saved:      %d (%.1f%%)\n", c.CycleReduction, c.CycleReductionPercent)
		_, _ = fmt.Fprintf(w, "  CPI Reduction:     %.2f\n", c.CPIReduction)
		_, _ = fmt.Fprintf(w, "  Stalls Saved:      %d\n", c.StallReduction)
	}
}

func describe(program []insts.Instruction, index int) string {
	if index < 0 || index >= len(program) {
		return fmt.Sprintf("#%d", index)
	}
	return fmt.Sprintf("#%d (%s)", index, program[index])
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("#%d", x)
	}
	return strings.Join(parts, ", ")
}
