package stage_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/timing/stage"
)

var _ = Describe("Stage", func() {
	It("should list the stages in pipeline order", func() {
		Expect(stage.All).To(Equal([stage.Count]stage.Stage{
			stage.Fetch, stage.Decode, stage.Execute, stage.Memory, stage.Writeback,
		}))
	})

	It("should walk to the next stage", func() {
		next, ok := stage.Decode.Next()
		Expect(ok).To(BeTrue())
		Expect(next).To(Equal(stage.Execute))

		_, ok = stage.Writeback.Next()
		Expect(ok).To(BeFalse())
		Expect(stage.Writeback.IsLast()).To(BeTrue())
	})

	It("should name stages", func() {
		Expect(stage.Memory.String()).To(Equal("Memory"))
		Expect(stage.Memory.Short()).To(Equal("MEM"))
		Expect(stage.Stage(9).IsValid()).To(BeFalse())
	})

	It("should parse names and abbreviations", func() {
		s, err := stage.Parse("WB")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(stage.Writeback))

		s, err = stage.Parse("Fetch")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(stage.Fetch))

		_, err = stage.Parse("Retire")
		Expect(err).To(HaveOccurred())
	})
})
