package latency

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/pipesim/insts"
)

// MinLatency is the smallest stage cost. Smaller configured values are
// clamped to it.
const MinLatency = 1

// StageLatency is the configured cost, in cycles, of the two variable
// stages for one instruction type. Only one of them is used: memory
// instructions use Memory, arithmetic instructions use Execute.
type StageLatency struct {
	Execute int `json:"execute" yaml:"execute"`
	Memory  int `json:"memory" yaml:"memory"`
}

// TimingConfig holds per-instruction-type latencies.
type TimingConfig struct {
	// ADD latency. Default: execute 1, memory 1.
	ADD StageLatency `json:"add" yaml:"add"`

	// SUB latency. Default: execute 1, memory 1.
	SUB StageLatency `json:"sub" yaml:"sub"`

	// MUL latency. Default: execute 3, memory 1.
	MUL StageLatency `json:"mul" yaml:"mul"`

	// DIV latency. Default: execute 4, memory 1.
	DIV StageLatency `json:"div" yaml:"div"`

	// LOAD latency. Default: execute 1, memory 2.
	LOAD StageLatency `json:"load" yaml:"load"`

	// STORE latency. Default: execute 1, memory 2.
	STORE StageLatency `json:"store" yaml:"store"`

	// WriteBeforeReadSameCycle lets the register file be written in the
	// first half of a cycle and read in the second half, so a value written
	// back in cycle c can be read by Decode in cycle c. Default: true.
	WriteBeforeReadSameCycle bool `json:"write_before_read_same_cycle" yaml:"write_before_read_same_cycle"`
}

// DefaultTimingConfig returns a TimingConfig with the default latencies.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ADD:                      StageLatency{Execute: 1, Memory: 1},
		SUB:                      StageLatency{Execute: 1, Memory: 1},
		MUL:                      StageLatency{Execute: 3, Memory: 1},
		DIV:                      StageLatency{Execute: 4, Memory: 1},
		LOAD:                     StageLatency{Execute: 1, Memory: 2},
		STORE:                    StageLatency{Execute: 1, Memory: 2},
		WriteBeforeReadSameCycle: true,
	}
}

// Latency returns the configured latency for an instruction type.
func (c *TimingConfig) Latency(op insts.Op) StageLatency {
	if p := c.field(op); p != nil {
		return *p
	}
	return StageLatency{Execute: MinLatency, Memory: MinLatency}
}

// SetLatency replaces the latency for an instruction type. Unknown types
// are ignored.
func (c *TimingConfig) SetLatency(op insts.Op, l StageLatency) {
	if p := c.field(op); p != nil {
		*p = l
	}
}

func (c *TimingConfig) field(op insts.Op) *StageLatency {
	switch op {
	case insts.OpADD:
		return &c.ADD
	case insts.OpSUB:
		return &c.SUB
	case insts.OpMUL:
		return &c.MUL
	case insts.OpDIV:
		return &c.DIV
	case insts.OpLOAD:
		return &c.LOAD
	case insts.OpSTORE:
		return &c.STORE
	default:
		return nil
	}
}

// LoadConfig loads a TimingConfig from a JSON or YAML file. The format is
// chosen by extension (.yaml or .yml for YAML). Fields missing from the
// file keep their default values, and the result is normalized.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config.Normalize(), nil
}

// SaveConfig writes a TimingConfig to a JSON or YAML file, chosen by
// extension.
func (c *TimingConfig) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Validate reports latencies below MinLatency. Such values are not fatal:
// Normalize clamps them.
func (c *TimingConfig) Validate() error {
	for _, op := range insts.Ops {
		l := c.Latency(op)
		if l.Execute < MinLatency {
			return fmt.Errorf("%s execute latency must be >= %d, got %d",
				strings.ToLower(op.String()), MinLatency, l.Execute)
		}
		if l.Memory < MinLatency {
			return fmt.Errorf("%s memory latency must be >= %d, got %d",
				strings.ToLower(op.String()), MinLatency, l.Memory)
		}
	}
	return nil
}

// Normalize returns a copy with every latency clamped to at least
// MinLatency.
func (c *TimingConfig) Normalize() *TimingConfig {
	n := c.Clone()
	for _, op := range insts.Ops {
		l := n.Latency(op)
		l.Execute = max(l.Execute, MinLatency)
		l.Memory = max(l.Memory, MinLatency)
		n.SetLatency(op, l)
	}
	return n
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
