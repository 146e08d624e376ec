package insts

// Operand names a register field of an instruction.
type Operand uint8

// Register operand fields.
const (
	OperandRd Operand = iota
	OperandRs1
	OperandRs2
)

// String returns the field name as written in program files.
func (o Operand) String() string {
	switch o {
	case OperandRd:
		return "rd"
	case OperandRs1:
		return "rs1"
	case OperandRs2:
		return "rs2"
	default:
		return "?"
	}
}

// RegOperand binds an operand field to the register it names.
type RegOperand struct {
	Operand Operand
	Reg     Reg
}

// Operands returns the register operands an instruction reads and writes.
// Reads are listed rs1 first. STORE writes nothing.
func Operands(inst Instruction) (reads, writes []RegOperand) {
	switch i := inst.(type) {
	case Arith:
		reads = []RegOperand{{OperandRs1, i.Rs1}, {OperandRs2, i.Rs2}}
		writes = []RegOperand{{OperandRd, i.Rd}}
	case Load:
		reads = []RegOperand{{OperandRs1, i.Rs1}}
		writes = []RegOperand{{OperandRd, i.Rd}}
	case Store:
		reads = []RegOperand{{OperandRs1, i.Rs1}, {OperandRs2, i.Rs2}}
	}
	return reads, writes
}

// ReadSet returns the distinct registers read by the instruction.
func ReadSet(inst Instruction) []Reg {
	reads, _ := Operands(inst)
	return distinct(reads)
}

// WriteSet returns the distinct registers written by the instruction.
func WriteSet(inst Instruction) []Reg {
	_, writes := Operands(inst)
	return distinct(writes)
}

// Writes returns true if the instruction writes reg.
func Writes(inst Instruction, reg Reg) bool {
	for _, r := range WriteSet(inst) {
		if r == reg {
			return true
		}
	}
	return false
}

func distinct(ops []RegOperand) []Reg {
	regs := make([]Reg, 0, len(ops))
	var seen [256]bool
	for _, op := range ops {
		if seen[op.Reg] {
			continue
		}
		seen[op.Reg] = true
		regs = append(regs, op.Reg)
	}
	return regs
}
