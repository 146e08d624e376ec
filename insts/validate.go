package insts

import (
	"errors"
	"fmt"
	"strings"
)

// Validation failures. Errors returned by Validate wrap one of these and can
// be matched with errors.Is.
var (
	ErrInvalidInstructionType  = errors.New("invalid instruction type")
	ErrMissingRequiredRegister = errors.New("missing required register")
	ErrRegisterOverlap         = errors.New("register cannot be both input and output")
	ErrInvalidRegisterName     = errors.New("invalid register name")
	ErrIllegalWriteTarget      = errors.New("STORE instruction cannot write to registers")
)

// ValidationError describes why an instruction was rejected.
type ValidationError struct {
	// Err is one of the Err* sentinels.
	Err error
	// Operand is the offending operand field, if any.
	Operand string
	// Value is the offending value, if any.
	Value string
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrInvalidInstructionType):
		return fmt.Sprintf("%v: %q", e.Err, e.Value)
	case errors.Is(e.Err, ErrMissingRequiredRegister):
		return fmt.Sprintf("%v (%s)", e.Err, e.Operand)
	case errors.Is(e.Err, ErrRegisterOverlap):
		return fmt.Sprintf("register %s cannot be both input and output", e.Value)
	case errors.Is(e.Err, ErrInvalidRegisterName):
		return fmt.Sprintf("%v: %q, must be R0-R%d", e.Err, e.Value, NumRegs-1)
	default:
		return e.Err.Error()
	}
}

// Unwrap returns the sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Fields is the loosely-typed form of an instruction, as entered by a user
// or read from a program file. Unused fields are left empty.
type Fields struct {
	Type   string `json:"type" yaml:"type"`
	Rd     string `json:"rd,omitempty" yaml:"rd,omitempty"`
	Rs1    string `json:"rs1,omitempty" yaml:"rs1,omitempty"`
	Rs2    string `json:"rs2,omitempty" yaml:"rs2,omitempty"`
	Offset int64  `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// FieldsOf converts a typed instruction back to its loose form.
func FieldsOf(inst Instruction) Fields {
	switch i := inst.(type) {
	case Arith:
		return Fields{Type: i.Kind.String(), Rd: i.Rd.String(), Rs1: i.Rs1.String(), Rs2: i.Rs2.String()}
	case Load:
		return Fields{Type: OpLOAD.String(), Rd: i.Rd.String(), Rs1: i.Rs1.String(), Offset: i.Offset}
	case Store:
		return Fields{Type: OpSTORE.String(), Rs1: i.Rs1.String(), Rs2: i.Rs2.String(), Offset: i.Offset}
	default:
		return Fields{}
	}
}

// Validate checks a loose instruction for structural well-formedness.
func (f Fields) Validate() error {
	op, err := ParseOp(f.Type)
	if err != nil {
		return err
	}

	if op != OpSTORE && f.Rd == "" {
		return &ValidationError{Err: ErrMissingRequiredRegister, Operand: OperandRd.String()}
	}
	if f.Rs1 == "" {
		return &ValidationError{Err: ErrMissingRequiredRegister, Operand: OperandRs1.String()}
	}
	if op != OpLOAD && f.Rs2 == "" {
		return &ValidationError{Err: ErrMissingRequiredRegister, Operand: OperandRs2.String()}
	}
	if op == OpSTORE && f.Rd != "" {
		return &ValidationError{Err: ErrIllegalWriteTarget, Operand: OperandRd.String(), Value: f.Rd}
	}

	_, err = f.build(op)
	return err
}

// Build validates the fields and returns the typed instruction.
func (f Fields) Build() (Instruction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	op, _ := ParseOp(f.Type)
	return f.build(op)
}

// build parses register names and checks read/write overlap. Presence of
// required fields has already been checked.
func (f Fields) build(op Op) (Instruction, error) {
	names := []struct {
		operand Operand
		value   string
	}{
		{OperandRs1, f.Rs1},
		{OperandRs2, f.Rs2},
		{OperandRd, f.Rd},
	}

	var regs [3]Reg
	for _, n := range names {
		if n.value == "" || !usesOperand(op, n.operand) {
			continue
		}
		reg, err := ParseReg(strings.TrimSpace(n.value))
		if err != nil {
			return nil, err
		}
		regs[n.operand] = reg
	}

	var inst Instruction
	switch op {
	case OpLOAD:
		inst = NewLoad(regs[OperandRd], regs[OperandRs1], f.Offset)
	case OpSTORE:
		inst = NewStore(regs[OperandRs2], regs[OperandRs1], f.Offset)
	default:
		inst = NewArith(op, regs[OperandRd], regs[OperandRs1], regs[OperandRs2])
	}

	if reg, ok := overlap(inst); ok {
		return nil, &ValidationError{Err: ErrRegisterOverlap, Value: reg.String()}
	}

	return inst, nil
}

func usesOperand(op Op, operand Operand) bool {
	switch operand {
	case OperandRd:
		return op != OpSTORE
	case OperandRs2:
		return op != OpLOAD
	default:
		return true
	}
}

// Validate checks a typed instruction. Typed instructions always carry
// their required registers, but may still name registers outside R0..R31,
// overlap reads with writes, or carry an arithmetic kind that is not
// arithmetic.
func Validate(inst Instruction) error {
	switch i := inst.(type) {
	case Arith:
		if !i.Kind.IsArithmetic() {
			return &ValidationError{Err: ErrInvalidInstructionType, Value: i.Kind.String()}
		}
	case Load, Store:
	default:
		return &ValidationError{Err: ErrInvalidInstructionType, Value: fmt.Sprintf("%T", inst)}
	}

	return FieldsOf(inst).Validate()
}

func overlap(inst Instruction) (Reg, bool) {
	writes := WriteSet(inst)
	for _, r := range ReadSet(inst) {
		for _, w := range writes {
			if r == w {
				return r, true
			}
		}
	}
	return 0, false
}
