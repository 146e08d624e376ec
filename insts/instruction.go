package insts

import (
	"fmt"
	"strconv"
	"strings"
)

// Op represents an instruction type.
type Op uint8

// Instruction types.
const (
	OpUnknown Op = iota
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpLOAD
	OpSTORE
)

// Ops lists every valid instruction type in display order.
var Ops = []Op{OpADD, OpSUB, OpMUL, OpDIV, OpLOAD, OpSTORE}

var opNames = map[Op]string{
	OpADD:   "ADD",
	OpSUB:   "SUB",
	OpMUL:   "MUL",
	OpDIV:   "DIV",
	OpLOAD:  "LOAD",
	OpSTORE: "STORE",
}

// String returns the mnemonic of the instruction type.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsValid returns true if the op is one of the supported instruction types.
func (o Op) IsValid() bool {
	_, ok := opNames[o]
	return ok
}

// IsMemory returns true for LOAD and STORE.
func (o Op) IsMemory() bool {
	return o == OpLOAD || o == OpSTORE
}

// IsArithmetic returns true for ADD, SUB, MUL and DIV.
func (o Op) IsArithmetic() bool {
	switch o {
	case OpADD, OpSUB, OpMUL, OpDIV:
		return true
	default:
		return false
	}
}

// ParseOp converts a mnemonic (case-insensitive) to an Op.
func ParseOp(s string) (Op, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for op, name := range opNames {
		if name == upper {
			return op, nil
		}
	}
	return OpUnknown, &ValidationError{Err: ErrInvalidInstructionType, Value: s}
}

// NumRegs is the number of architectural registers.
const NumRegs = 32

// Reg is an architectural register number.
type Reg uint8

// String returns the register name, e.g. "R7".
func (r Reg) String() string {
	return "R" + strconv.Itoa(int(r))
}

// IsValid returns true if the register number is within R0..R31.
func (r Reg) IsValid() bool {
	return int(r) < NumRegs
}

// ParseReg converts a register name of the form R<n>, n in [0, 31].
func ParseReg(s string) (Reg, error) {
	if len(s) < 2 || s[0] != 'R' {
		return 0, &ValidationError{Err: ErrInvalidRegisterName, Value: s}
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return 0, &ValidationError{Err: ErrInvalidRegisterName, Value: s}
		}
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n >= NumRegs {
		return 0, &ValidationError{Err: ErrInvalidRegisterName, Value: s}
	}
	return Reg(n), nil
}

// Instruction is a decoded instruction. It is implemented only by Arith,
// Load and Store.
type Instruction interface {
	// Op returns the instruction type.
	Op() Op
	// String formats the instruction in assembly syntax.
	String() string

	sealed()
}

// Arith is an ADD, SUB, MUL or DIV instruction: rd = rs1 op rs2.
type Arith struct {
	Kind Op
	Rd   Reg
	Rs1  Reg
	Rs2  Reg
}

// NewArith creates an arithmetic instruction.
func NewArith(op Op, rd, rs1, rs2 Reg) Arith {
	return Arith{Kind: op, Rd: rd, Rs1: rs1, Rs2: rs2}
}

// Op returns the arithmetic instruction type.
func (a Arith) Op() Op { return a.Kind }

func (a Arith) String() string {
	return fmt.Sprintf("%s %s, %s, %s", a.Kind, a.Rd, a.Rs1, a.Rs2)
}

func (Arith) sealed() {}

// Load is LOAD rd, offset(rs1).
type Load struct {
	Rd     Reg
	Rs1    Reg
	Offset int64
}

// NewLoad creates a load instruction.
func NewLoad(rd, base Reg, offset int64) Load {
	return Load{Rd: rd, Rs1: base, Offset: offset}
}

// Op returns OpLOAD.
func (Load) Op() Op { return OpLOAD }

func (l Load) String() string {
	return fmt.Sprintf("LOAD %s, %d(%s)", l.Rd, l.Offset, l.Rs1)
}

func (Load) sealed() {}

// Store is STORE rs2, offset(rs1). It writes no register.
type Store struct {
	Rs2    Reg
	Rs1    Reg
	Offset int64
}

// NewStore creates a store instruction.
func NewStore(value, base Reg, offset int64) Store {
	return Store{Rs2: value, Rs1: base, Offset: offset}
}

// Op returns OpSTORE.
func (Store) Op() Op { return OpSTORE }

func (s Store) String() string {
	return fmt.Sprintf("STORE %s, %d(%s)", s.Rs2, s.Offset, s.Rs1)
}

func (Store) sealed() {}
