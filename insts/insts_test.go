package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeNil())
	})

	It("should list the six instruction types", func() {
		Expect(insts.Ops).To(HaveLen(6))
		for _, op := range insts.Ops {
			Expect(op.IsValid()).To(BeTrue())
			Expect(op.IsMemory()).NotTo(Equal(op.IsArithmetic()))
		}
		Expect(insts.OpUnknown.IsValid()).To(BeFalse())
	})

	It("should format instructions in assembly syntax", func() {
		Expect(insts.NewArith(insts.OpMUL, 1, 2, 3).String()).To(Equal("MUL R1, R2, R3"))
		Expect(insts.NewLoad(1, 2, 8).String()).To(Equal("LOAD R1, 8(R2)"))
		Expect(insts.NewStore(4, 5, -4).String()).To(Equal("STORE R4, -4(R5)"))
	})
})

var _ = Describe("Registers", func() {
	DescribeTable("ParseReg",
		func(name string, want insts.Reg, ok bool) {
			reg, err := insts.ParseReg(name)
			if !ok {
				Expect(err).To(MatchError(insts.ErrInvalidRegisterName))
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(reg).To(Equal(want))
			Expect(reg.IsValid()).To(BeTrue())
		},
		Entry("lowest", "R0", insts.Reg(0), true),
		Entry("highest", "R31", insts.Reg(31), true),
		Entry("leading zero", "R07", insts.Reg(7), true),
		Entry("out of range", "R32", insts.Reg(0), false),
		Entry("lower case", "r1", insts.Reg(0), false),
		Entry("no number", "R", insts.Reg(0), false),
		Entry("negative", "R-1", insts.Reg(0), false),
		Entry("other prefix", "X1", insts.Reg(0), false),
	)

	It("should print register names", func() {
		Expect(insts.Reg(17).String()).To(Equal("R17"))
	})
})

var _ = Describe("Operands", func() {
	It("should report arithmetic reads and writes", func() {
		reads, writes := insts.Operands(insts.NewArith(insts.OpADD, 1, 2, 3))

		Expect(reads).To(Equal([]insts.RegOperand{
			{Operand: insts.OperandRs1, Reg: 2},
			{Operand: insts.OperandRs2, Reg: 3},
		}))
		Expect(writes).To(Equal([]insts.RegOperand{{Operand: insts.OperandRd, Reg: 1}}))
	})

	It("should read only the base register for LOAD", func() {
		reads, writes := insts.Operands(insts.NewLoad(1, 2, 0))

		Expect(reads).To(Equal([]insts.RegOperand{{Operand: insts.OperandRs1, Reg: 2}}))
		Expect(writes).To(Equal([]insts.RegOperand{{Operand: insts.OperandRd, Reg: 1}}))
	})

	It("should write nothing for STORE", func() {
		reads, writes := insts.Operands(insts.NewStore(3, 2, 0))

		Expect(reads).To(Equal([]insts.RegOperand{
			{Operand: insts.OperandRs1, Reg: 2},
			{Operand: insts.OperandRs2, Reg: 3},
		}))
		Expect(writes).To(BeEmpty())
		Expect(insts.WriteSet(insts.NewStore(3, 2, 0))).To(BeEmpty())
	})

	It("should deduplicate the read set", func() {
		inst := insts.NewArith(insts.OpSUB, 4, 1, 1)

		Expect(insts.ReadSet(inst)).To(Equal([]insts.Reg{1}))
		Expect(insts.WriteSet(inst)).To(Equal([]insts.Reg{4}))
		Expect(insts.Writes(inst, 4)).To(BeTrue())
		Expect(insts.Writes(inst, 1)).To(BeFalse())
	})
})
