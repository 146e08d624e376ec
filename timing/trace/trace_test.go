package trace_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/pipeline"
	"github.com/sarchlab/pipesim/timing/trace"
)

var _ = Describe("Logger", func() {
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

	It("should log every scheduler event", func() {
		s := pipeline.NewScheduler(pipeline.WithForwarding(true))
		s.AcceptHook(trace.NewLogger(buf))

		s.Schedule(program)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(11))
		Expect(lines[0]).To(Equal("[Scheduler] #0 Fetch     cycles 1-1"))
		Expect(buf.String()).To(ContainSubstring("[Scheduler] #1 forward R1: #0 EX -> #1 EX @4"))
	})

	It("should report stalls and hazards", func() {
		s := pipeline.NewScheduler()
		s.AcceptHook(trace.NewLogger(buf))

		s.Schedule(program)

		Expect(buf.String()).To(ContainSubstring(
			"[Scheduler] #1 hazard  RAW on R1: #1 waits 2 cycle(s) for #0"))
		Expect(buf.String()).To(ContainSubstring(
			"[Scheduler] #1 Decode    cycles 5-5 after 2 stall(s)"))
	})

	It("should filter by hook position", func() {
		s := pipeline.NewScheduler()
		s.AcceptHook(trace.NewLogger(buf, pipeline.HookPosHazard))

		s.Schedule(program)

		Expect(strings.Count(buf.String(), "\n")).To(Equal(1))
	})
})
