package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/latency"
	"github.com/sarchlab/pipesim/timing/pipeline"
	"github.com/sarchlab/pipesim/timing/stage"
	"github.com/sarchlab/pipesim/timing/timeline"
)

type countingHook struct {
	n int
}

func (h *countingHook) Func(sim.HookCtx) {
	h.n++
}

var _ = Describe("Core", func() {
	var (
		add     = insts.NewArith(insts.OpADD, 1, 2, 3)
		sub     = insts.NewArith(insts.OpSUB, 4, 1, 5)
		program []insts.Instruction
	)

	BeforeEach(func() {
		program = []insts.Instruction{add, sub}
	})

	It("should create a core with a scheduler", func() {
		c := core.NewCore()

		Expect(c.Scheduler).NotTo(BeNil())
		Expect(c.Forwarding()).To(BeFalse())
		Expect(c.LatencyTable()).NotTo(BeNil())
	})

	It("should pass options to the scheduler", func() {
		table := latency.NewTable()
		c := core.NewCore(core.WithForwarding(true), core.WithLatencyTable(table))

		Expect(c.Scheduler.Forwarding()).To(BeTrue())
		Expect(c.Scheduler.LatencyTable()).To(BeIdenticalTo(table))
	})

	Describe("Run", func() {
		It("should simulate a program", func() {
			result, err := core.NewCore().Run(program)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Program).To(Equal(program))
			Expect(result.Timeline).To(HaveLen(2))
			Expect(result.Hazards).To(HaveLen(1))
			Expect(result.ForwardingPaths).To(BeEmpty())
			Expect(result.Metrics.TotalCycles).To(Equal(uint64(8)))
			Expect(result.Metrics.Comparison).To(BeNil())
			Expect(timeline.Verify(result.Timeline)).To(Succeed())
		})

		It("should reject invalid instructions before scheduling", func() {
			hook := &countingHook{}
			c := core.NewCore(core.WithHook(hook))

			result, err := c.Run([]insts.Instruction{add, insts.NewArith(insts.OpADD, 1, 1, 2)})

			Expect(result).To(BeNil())
			Expect(err).To(MatchError(insts.ErrRegisterOverlap))
			Expect(err.Error()).To(ContainSubstring("instruction 1"))
			Expect(hook.n).To(BeZero())
		})

		It("should accept an empty program", func() {
			result, err := core.NewCore().Run(nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Timeline).To(BeEmpty())
			Expect(result.Metrics.CPI).To(BeZero())
		})

		It("should not modify the program", func() {
			before := append([]insts.Instruction(nil), program...)

			_, err := core.NewCore(core.WithForwarding(true)).Run(program)

			Expect(err).NotTo(HaveOccurred())
			Expect(program).To(Equal(before))
		})

		It("should give identical results on every run", func() {
			c := core.NewCore(core.WithForwarding(true))

			first, err := c.Run(program)
			Expect(err).NotTo(HaveOccurred())
			second, err := c.Run(program)
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
		})

		It("should invoke attached hooks", func() {
			hook := &countingHook{}
			c := core.NewCore(core.WithHook(hook))

			_, err := c.Run(program)

			Expect(err).NotTo(HaveOccurred())
			Expect(hook.n).To(Equal(11))
		})
	})

	Describe("Compare", func() {
		It("should compare forwarding against the baseline", func() {
			c := core.NewCore(core.WithForwarding(true))

			cmp, err := c.Compare(program)

			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Result.Metrics.TotalCycles).To(Equal(uint64(6)))
			Expect(cmp.Baseline.Metrics.TotalCycles).To(Equal(uint64(8)))
			Expect(cmp.Baseline.Metrics.Forwarding).To(BeFalse())
			Expect(cmp.Baseline.ForwardingPaths).To(BeEmpty())
			Expect(cmp.Result.Metrics.Comparison).NotTo(BeNil())
			Expect(cmp.Result.Metrics.Comparison.CycleReduction).To(Equal(int64(2)))
		})

		It("should compare programs whose producer stalls between stages", func() {
			c := core.NewCore(core.WithForwarding(true))

			cmp, err := c.Compare([]insts.Instruction{
				insts.NewLoad(5, 6, 0),
				insts.NewArith(insts.OpADD, 1, 2, 3),
				insts.NewArith(insts.OpSUB, 4, 1, 7),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Result.Metrics.TotalCycles).To(Equal(uint64(8)))
			Expect(cmp.Baseline.Metrics.TotalCycles).To(Equal(uint64(10)))
			Expect(cmp.Result.ForwardingPaths).To(HaveLen(1))
			Expect(cmp.Result.ForwardingPaths[0].FromStage).To(Equal(stage.Execute))
			Expect(timeline.Verify(cmp.Result.Timeline)).To(Succeed())
		})

		It("should report no reduction without forwarding", func() {
			cmp, err := core.NewCore().Compare(program)

			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Result.Metrics.Comparison.CycleReduction).To(BeZero())
			Expect(cmp.Result.Timeline).To(Equal(cmp.Baseline.Timeline))
		})

		It("should reject invalid programs", func() {
			_, err := core.NewCore().Compare([]insts.Instruction{
				insts.NewArith(insts.OpLOAD, 1, 2, 3),
			})

			Expect(err).To(MatchError(insts.ErrInvalidInstructionType))
		})

		It("should only report the scheduler's hazards for the configured mode", func() {
			cmp, err := core.NewCore(core.WithForwarding(true)).Compare([]insts.Instruction{
				insts.NewLoad(1, 2, 0),
				insts.NewArith(insts.OpADD, 3, 1, 4),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Result.Hazards).To(ConsistOf(pipeline.Hazard{
				Kind:        pipeline.HazardRAW,
				Reg:         1,
				Producer:    0,
				Consumer:    1,
				StallCycles: 2,
			}))
			Expect(cmp.Result.Metrics.TotalCycles).To(Equal(uint64(8)))
			Expect(cmp.Baseline.Metrics.TotalCycles).To(Equal(uint64(9)))
		})
	})
})
