// Package loader reads programs and scenarios from files.
//
// Two formats are supported. Assembly files (any extension other than
// .yaml and .yml) hold one instruction per line:
//
//	LOAD R1, 0(R2)   # load
//	ADD  R3, R1, R4
//
// Scenario files are YAML and may carry latencies and the forwarding flag
// along with the program:
//
//	name: load-use
//	forwarding: true
//	latencies:
//	  load: {execute: 1, memory: 2}
//	program: |
//	  LOAD R1, 0(R2)
//	  ADD R3, R1, R4
//
// Instead of program text, a scenario may list instructions field by field:
//
//	instructions:
//	  - {type: ADD, rd: R1, rs1: R2, rs2: R3}
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/latency"
)

// ErrAmbiguousProgram is returned when a scenario sets both program text and
// an instruction list.
var ErrAmbiguousProgram = errors.New("scenario sets both program and instructions")

// Program is a loaded program together with the settings its file carried.
type Program struct {
	// Name identifies the program. Defaults to the file name.
	Name string
	// Description is free text.
	Description string
	// Instructions are the validated instructions in program order.
	Instructions []insts.Instruction
	// Config is the timing configuration, or nil if the file set none.
	Config *latency.TimingConfig
	// Forwarding is the forwarding flag, or nil if the file set none.
	Forwarding *bool
}

// scenarioFile is the YAML layout of a scenario.
type scenarioFile struct {
	Name         string         `yaml:"name,omitempty"`
	Description  string         `yaml:"description,omitempty"`
	Forwarding   *bool          `yaml:"forwarding,omitempty"`
	Latencies    *yaml.Node     `yaml:"latencies,omitempty"`
	Program      string         `yaml:"program,omitempty"`
	Instructions []insts.Fields `yaml:"instructions,omitempty"`
}

// Load reads a program file, choosing the format by extension.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}

	var prog *Program
	if IsScenario(path) {
		prog, err = ParseScenario(data)
	} else {
		prog, err = ParseAssembly(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	if prog.Name == "" {
		prog.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return prog, nil
}

// IsScenario returns true if path names a YAML scenario file.
func IsScenario(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// ParseAssembly parses assembly text.
func ParseAssembly(data []byte) (*Program, error) {
	instructions, err := insts.ParseProgram(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Program{Instructions: instructions}, nil
}

// ParseScenario parses a YAML scenario. Latencies missing from the scenario
// keep their default values.
func ParseScenario(data []byte) (*Program, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	prog := &Program{
		Name:        file.Name,
		Description: file.Description,
		Forwarding:  file.Forwarding,
	}

	if file.Latencies != nil {
		config := latency.DefaultTimingConfig()
		if err := file.Latencies.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to parse latencies: %w", err)
		}
		prog.Config = config.Normalize()
	}

	switch {
	case file.Program != "" && len(file.Instructions) > 0:
		return nil, ErrAmbiguousProgram
	case file.Program != "":
		parsed, err := ParseAssembly([]byte(file.Program))
		if err != nil {
			return nil, err
		}
		prog.Instructions = parsed.Instructions
	default:
		for i, f := range file.Instructions {
			inst, err := f.Build()
			if err != nil {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			prog.Instructions = append(prog.Instructions, inst)
		}
	}

	return prog, nil
}

// SaveScenario writes a program as a YAML scenario.
func SaveScenario(path string, prog *Program) error {
	var text strings.Builder
	if err := insts.FormatProgram(&text, prog.Instructions); err != nil {
		return fmt.Errorf("failed to format program: %w", err)
	}

	file := scenarioFile{
		Name:        prog.Name,
		Description: prog.Description,
		Forwarding:  prog.Forwarding,
		Program:     text.String(),
	}

	if prog.Config != nil {
		node := &yaml.Node{}
		if err := node.Encode(prog.Config); err != nil {
			return fmt.Errorf("failed to encode latencies: %w", err)
		}
		file.Latencies = node
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to serialize scenario: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	return nil
}
