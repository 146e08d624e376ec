package metrics_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/metrics"
	"github.com/sarchlab/pipesim/timing/pipeline"
	"github.com/sarchlab/pipesim/timing/timeline"
)

func run(forwarding bool, program ...insts.Instruction) ([]timeline.Entry, []pipeline.Hazard) {
	result := pipeline.NewScheduler(pipeline.WithForwarding(forwarding)).Schedule(program)
	return timeline.Project(result), result.Hazards
}

var _ = Describe("Compute", func() {
	var (
		add = insts.NewArith(insts.OpADD, 1, 2, 3)
		sub = insts.NewArith(insts.OpSUB, 4, 1, 5)
	)

	It("should return zeros for an empty program", func() {
		m := metrics.Compute(nil, nil, false)

		Expect(m.TotalCycles).To(BeZero())
		Expect(m.Instructions).To(BeZero())
		Expect(m.CPI).To(BeZero())
		Expect(m.IdealCycles).To(BeZero())
		Expect(m.StallPercentage).To(BeZero())
		Expect(m.Comparison).To(BeNil())
	})

	It("should summarize a single ADD", func() {
		entries, hazards := run(false, add)

		m := metrics.Compute(entries, hazards, false)

		Expect(m.TotalCycles).To(Equal(uint64(5)))
		Expect(m.Instructions).To(Equal(1))
		Expect(m.CPI).To(BeNumerically("~", 5.0))
		Expect(m.SteadyStateCPI).To(BeNumerically("~", 1.0))
		Expect(m.IdealCycles).To(Equal(uint64(5)))
		Expect(m.TotalStalls).To(BeZero())
		Expect(m.Stalls(pipeline.HazardRAW)).To(BeZero())
		Expect(m.StallsByType).To(HaveKey(pipeline.HazardStructural))
	})

	It("should count RAW stalls without forwarding", func() {
		entries, hazards := run(false, add, sub)

		m := metrics.Compute(entries, hazards, false)

		Expect(m.TotalCycles).To(Equal(uint64(8)))
		Expect(m.CPI).To(BeNumerically("~", 4.0))
		Expect(m.IdealCycles).To(Equal(uint64(6)))
		Expect(m.Stalls(pipeline.HazardRAW)).To(Equal(uint64(2)))
		Expect(m.TotalStalls).To(Equal(uint64(2)))
		Expect(m.StallPercentage).To(BeNumerically("~", 25.0))
		Expect(m.ForwardingPaths).To(BeZero())
	})

	It("should sum every hazard instance", func() {
		hazards := []pipeline.Hazard{
			{Kind: pipeline.HazardRAW, Reg: 1, Producer: 0, Consumer: 1, StallCycles: 2},
			{Kind: pipeline.HazardRAW, Reg: 1, Producer: 0, Consumer: 1, StallCycles: 2},
			{Kind: pipeline.HazardStructural, Producer: 1, Consumer: 2, StallCycles: 3},
		}
		entries, _ := run(false, add)

		m := metrics.Compute(entries, hazards, false)

		Expect(m.Stalls(pipeline.HazardRAW)).To(Equal(uint64(4)))
		Expect(m.Stalls(pipeline.HazardStructural)).To(Equal(uint64(3)))
		Expect(m.TotalStalls).To(Equal(uint64(7)))
	})

	It("should compare against a baseline", func() {
		entries, hazards := run(true, add, sub)
		baseEntries, baseHazards := run(false, add, sub)

		m := metrics.Compute(entries, hazards, true,
			metrics.WithBaseline(baseEntries, baseHazards))

		Expect(m.Forwarding).To(BeTrue())
		Expect(m.ForwardingPaths).To(Equal(1))
		Expect(m.TotalCycles).To(Equal(uint64(6)))
		Expect(m.Comparison).NotTo(BeNil())
		Expect(m.Comparison.BaselineCycles).To(Equal(uint64(8)))
		Expect(m.Comparison.BaselineStalls).To(Equal(uint64(2)))
		Expect(m.Comparison.CycleReduction).To(Equal(int64(2)))
		Expect(m.Comparison.StallReduction).To(Equal(int64(2)))
		Expect(m.Comparison.CPIReduction).To(BeNumerically("~", 1.0))
		Expect(m.Comparison.CycleReductionPercent).To(BeNumerically("~", 25.0))
	})

	It("should convert cycles to seconds", func() {
		entries, hazards := run(false, add)
		m := metrics.Compute(entries, hazards, false)

		Expect(m.ExecutionTime(1 * sim.GHz)).To(BeNumerically("~", 5e-9))
		Expect(m.ExecutionTime(0)).To(BeZero())
	})

	It("should encode hazard kinds by name in JSON", func() {
		entries, hazards := run(false, add, sub)
		m := metrics.Compute(entries, hazards, false)

		data, err := json.Marshal(m)

		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"RAW":2`))
		Expect(string(data)).NotTo(ContainSubstring("comparison"))
	})
})
