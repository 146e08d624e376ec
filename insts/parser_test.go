package insts_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/insts"
)

var _ = Describe("Parser", func() {
	DescribeTable("Parse",
		func(line string, want insts.Instruction) {
			inst, err := insts.Parse(line)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst).To(Equal(want))
		},
		Entry("ADD", "ADD R1, R2, R3", insts.NewArith(insts.OpADD, 1, 2, 3)),
		Entry("lower case mnemonic", "sub R4,R1,R5", insts.NewArith(insts.OpSUB, 4, 1, 5)),
		Entry("tab separated", "MUL\tR6, R7, R8", insts.NewArith(insts.OpMUL, 6, 7, 8)),
		Entry("LOAD", "LOAD R1, 0(R2)", insts.NewLoad(1, 2, 0)),
		Entry("LOAD without offset", "LOAD R1, (R2)", insts.NewLoad(1, 2, 0)),
		Entry("LOAD hex offset", "LOAD R1, 0x10(R2)", insts.NewLoad(1, 2, 16)),
		Entry("STORE negative offset", "STORE R3, -8(R1)", insts.NewStore(3, 1, -8)),
	)

	DescribeTable("Parse errors",
		func(line string, want error) {
			_, err := insts.Parse(line)
			Expect(err).To(MatchError(want))
		},
		Entry("empty", "", insts.ErrSyntax),
		Entry("unknown mnemonic", "NOP", insts.ErrInvalidInstructionType),
		Entry("too few operands", "ADD R1, R2", insts.ErrSyntax),
		Entry("bad address", "LOAD R1, R2", insts.ErrSyntax),
		Entry("bad offset", "LOAD R1, x(R2)", insts.ErrSyntax),
		Entry("bad register", "ADD R1, R2, R99", insts.ErrInvalidRegisterName),
		Entry("overlap", "ADD R1, R1, R2", insts.ErrRegisterOverlap),
	)

	Describe("ParseProgram", func() {
		It("should skip blank lines and comments", func() {
			src := `
# dependency chain
ADD R1, R2, R3   ; produce R1
SUB R4, R1, R5

LOAD R6, 4(R4)
`
			program, err := insts.ParseProgram(strings.NewReader(src))

			Expect(err).NotTo(HaveOccurred())
			Expect(program).To(Equal([]insts.Instruction{
				insts.NewArith(insts.OpADD, 1, 2, 3),
				insts.NewArith(insts.OpSUB, 4, 1, 5),
				insts.NewLoad(6, 4, 4),
			}))
		})

		It("should report the failing line", func() {
			src := "ADD R1, R2, R3\nSTORE R1, 0(R40)\n"

			_, err := insts.ParseProgram(strings.NewReader(src))

			var perr *insts.ParseError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Line).To(Equal(2))
			Expect(err).To(MatchError(insts.ErrInvalidRegisterName))
		})

		It("should format a program that parses back", func() {
			program := []insts.Instruction{
				insts.NewArith(insts.OpDIV, 1, 2, 3),
				insts.NewStore(1, 4, 8),
			}

			var buf bytes.Buffer
			Expect(insts.FormatProgram(&buf, program)).To(Succeed())

			parsed, err := insts.ParseProgram(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(program))
		})
	})
})
