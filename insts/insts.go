// Package insts provides the instruction set understood by the pipeline
// simulator and the register dependency analysis over it.
//
// The instruction set is a small RISC subset:
//   - Arithmetic: ADD, SUB, MUL, DIV with rd, rs1, rs2
//   - Memory: LOAD rd, offset(rs1) and STORE rs2, offset(rs1)
//
// Registers are R0 through R31. Instructions are closed variants (Arith,
// Load, Store) so each carries only the fields that are meaningful for it.
//
// Usage:
//
//	inst, err := insts.Parse("ADD R1, R2, R3")
//	reads, writes := insts.Operands(inst)
//	fmt.Printf("Op: %v, reads: %v, writes: %v\n", inst.Op(), reads, writes)
package insts
