package report_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/report"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

var _ = Describe("Report", func() {
	var (
		buf     *bytes.Buffer
		program []insts.Instruction
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		program = []insts.Instruction{
			insts.NewArith(insts.OpADD, 1, 2, 3),
			insts.NewArith(insts.OpSUB, 4, 1, 5),
		}
	})

	run := func(forwarding bool) *core.Result {
		res, err := core.NewCore(core.WithForwarding(forwarding)).Run(program)
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	Describe("WriteTimeline", func() {
		It("should print one column per cycle with stalls marked", func() {
			res := run(false)

			report.WriteTimeline(buf, res.Program, res.Timeline)

			out := buf.String()
			Expect(out).To(ContainSubstring("Instruction       |   1   2   3   4   5   6   7   8\n"))
			Expect(out).To(ContainSubstring("0: ADD R1, R2, R3 |  IF  ID  EX MEM  WB\n"))
			Expect(out).To(ContainSubstring("1: SUB R4, R1, R5 |      IF  --  --  ID  EX MEM  WB\n"))
		})
	})

	Describe("GroupHazards", func() {
		It("should group by kind, register and producer", func() {
			hazards := []pipeline.Hazard{
				{Kind: pipeline.HazardRAW, Reg: 1, Producer: 0, Consumer: 1, StallCycles: 2},
				{Kind: pipeline.HazardRAW, Reg: 1, Producer: 0, Consumer: 2, StallCycles: 1},
				{Kind: pipeline.HazardRAW, Reg: 2, Producer: 0, Consumer: 2, StallCycles: 1},
				{Kind: pipeline.HazardStructural, Producer: 2, Consumer: 3, StallCycles: 2},
				{Kind: pipeline.HazardStructural, Producer: 2, Consumer: 3, StallCycles: 1},
			}

			groups := report.GroupHazards(hazards)

			Expect(groups).To(Equal([]report.HazardGroup{
				{Kind: pipeline.HazardRAW, Reg: 1, Producer: 0, Consumers: []int{1, 2}, StallCycles: 3},
				{Kind: pipeline.HazardRAW, Reg: 2, Producer: 0, Consumers: []int{2}, StallCycles: 1},
				{Kind: pipeline.HazardStructural, Producer: 2, Consumers: []int{3}, StallCycles: 3},
			}))
		})

		It("should return nothing for no hazards", func() {
			Expect(report.GroupHazards(nil)).To(BeEmpty())
		})
	})

	Describe("Write", func() {
		It("should print hazards and metrics without forwarding", func() {
			report.Write(buf, run(false))

			out := buf.String()
			Expect(out).To(ContainSubstring("RAW on R1"))
			Expect(out).To(ContainSubstring("from #0 (ADD R1, R2, R3): 2 stall cycle(s), affects #1"))
			Expect(out).To(ContainSubstring("Total Cycles:      8"))
			Expect(out).To(ContainSubstring("CPI:               4.00"))
			Expect(out).NotTo(ContainSubstring("Forwarding:\n"))
		})

		It("should print forwarding paths with forwarding", func() {
			report.Write(buf, run(true))

			out := buf.String()
			Expect(out).To(ContainSubstring("Hazards:\n  none\n"))
			Expect(out).To(ContainSubstring("R1  #0 (ADD R1, R2, R3) EX -> #1 (SUB R4, R1, R5) EX at cycle 4"))
			Expect(out).To(ContainSubstring("Forwarding Paths:  1"))
		})

		It("should print the baseline comparison", func() {
			cmp, err := core.NewCore(core.WithForwarding(true)).Compare(program)
			Expect(err).NotTo(HaveOccurred())

			report.WriteMetrics(buf, cmp.Result.Metrics)

			Expect(buf.String()).To(ContainSubstring("Cycles Saved:      2 (25.0%)"))
		})
	})

	Describe("WriteJSON", func() {
		It("should write a decodable document", func() {
			Expect(report.WriteJSON(buf, run(true))).To(Succeed())

			var doc report.Document
			Expect(json.Unmarshal(buf.Bytes(), &doc)).To(Succeed())
			Expect(doc.Instructions).To(HaveLen(2))
			Expect(doc.Instructions[1].Instruction).To(Equal("SUB R4, R1, R5"))
			Expect(doc.Instructions[1].Stages[2]).To(Equal(report.StageRecord{
				Stage: "Execute", Start: 4, End: 4,
			}))
			Expect(doc.Hazards).To(BeEmpty())
			Expect(doc.ForwardingPaths).To(Equal([]report.PathRecord{{
				Reg: "R1", Producer: 0, Consumer: 1,
				FromStage: "Execute", ToStage: "Execute", Cycle: 4,
			}}))
			Expect(doc.Metrics.TotalCycles).To(Equal(uint64(6)))
		})

		It("should name the register of RAW hazards only", func() {
			Expect(report.WriteJSON(buf, run(false))).To(Succeed())

			Expect(buf.String()).To(ContainSubstring(`"kind": "RAW"`))
			Expect(buf.String()).To(ContainSubstring(`"reg": "R1"`))
		})
	})

	Describe("WriteCSV", func() {
		It("should write a header and one row per instruction", func() {
			Expect(report.WriteCSV(buf, run(false))).To(Succeed())

			rows, err := csv.NewReader(buf).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			Expect(rows[0][0]).To(Equal("index"))
			Expect(rows[0][2]).To(Equal("fetch_start"))
			Expect(rows[0]).To(HaveLen(13))
			Expect(rows[2]).To(Equal([]string{
				"1", "SUB R4, R1, R5", "2", "2", "5", "5", "6", "6", "7", "7", "8", "8", "2",
			}))
		})
	})
})
