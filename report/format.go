package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/metrics"
	"github.com/sarchlab/pipesim/timing/pipeline"
	"github.com/sarchlab/pipesim/timing/stage"
)

// Document is the JSON form of a simulation result.
type Document struct {
	Instructions    []InstructionRecord `json:"instructions"`
	Hazards         []HazardRecord      `json:"hazards"`
	ForwardingPaths []PathRecord        `json:"forwarding_paths"`
	Metrics         metrics.Metrics     `json:"metrics"`
}

// InstructionRecord is the JSON form of one timeline entry.
type InstructionRecord struct {
	Index       int           `json:"index"`
	Instruction string        `json:"instruction"`
	Stages      []StageRecord `json:"stages"`
}

// StageRecord is the JSON form of one stage interval.
type StageRecord struct {
	Stage        string `json:"stage"`
	Start        uint64 `json:"start"`
	End          uint64 `json:"end"`
	StallsBefore uint64 `json:"stalls_before"`
}

// HazardRecord is the JSON form of a hazard.
type HazardRecord struct {
	Kind        string `json:"kind"`
	Reg         string `json:"reg,omitempty"`
	Producer    int    `json:"producer"`
	Consumer    int    `json:"consumer"`
	StallCycles uint64 `json:"stall_cycles"`
}

// PathRecord is the JSON form of a forwarding path.
type PathRecord struct {
	Reg       string `json:"reg"`
	Producer  int    `json:"producer"`
	Consumer  int    `json:"consumer"`
	FromStage string `json:"from_stage"`
	ToStage   string `json:"to_stage"`
	Cycle     uint64 `json:"cycle"`
}

// NewDocument converts a result to its JSON form.
func NewDocument(res *core.Result) Document {
	doc := Document{
		Instructions:    make([]InstructionRecord, 0, len(res.Timeline)),
		Hazards:         make([]HazardRecord, 0, len(res.Hazards)),
		ForwardingPaths: make([]PathRecord, 0, len(res.ForwardingPaths)),
		Metrics:         res.Metrics,
	}

	for _, e := range res.Timeline {
		rec := InstructionRecord{
			Index:       e.Index,
			Instruction: e.Inst.String(),
			Stages:      make([]StageRecord, 0, stage.Count),
		}
		for _, iv := range e.Stages {
			rec.Stages = append(rec.Stages, StageRecord{
				Stage:        iv.Stage.String(),
				Start:        iv.Start,
				End:          iv.End,
				StallsBefore: iv.StallsBefore,
			})
		}
		doc.Instructions = append(doc.Instructions, rec)
	}

	for _, h := range res.Hazards {
		rec := HazardRecord{
			Kind:        h.Kind.String(),
			Producer:    h.Producer,
			Consumer:    h.Consumer,
			StallCycles: h.StallCycles,
		}
		if h.Kind == pipeline.HazardRAW {
			rec.Reg = h.Reg.String()
		}
		doc.Hazards = append(doc.Hazards, rec)
	}

	for _, p := range res.ForwardingPaths {
		doc.ForwardingPaths = append(doc.ForwardingPaths, PathRecord{
			Reg:       p.Reg.String(),
			Producer:  p.Producer,
			Consumer:  p.Consumer,
			FromStage: p.FromStage.String(),
			ToStage:   p.ToStage.String(),
			Cycle:     p.Cycle,
		})
	}

	return doc
}

// WriteJSON writes the result as an indented JSON document.
func WriteJSON(w io.Writer, res *core.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(NewDocument(res)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteCSV writes one row per instruction with the start and end cycle of
// every stage and the instruction's stall cycles.
func WriteCSV(w io.Writer, res *core.Result) error {
	cw := csv.NewWriter(w)

	header := []string{"index", "instruction"}
	for _, s := range stage.All {
		name := strings.ToLower(s.String())
		header = append(header, name+"_start", name+"_end")
	}
	header = append(header, "stalls")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range res.Timeline {
		row := []string{strconv.Itoa(e.Index), e.Inst.String()}
		for _, iv := range e.Stages {
			row = append(row,
				strconv.FormatUint(iv.Start, 10),
				strconv.FormatUint(iv.End, 10))
		}
		row = append(row, strconv.FormatUint(e.StallCycles(), 10))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
