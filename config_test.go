package strandfec

import (
	"github.com/ddritzenhoff/strandfec/internal/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	It("populates the defaults", func() {
		c := populateConfig(nil)
		Expect(c.StrandsPerPacket).To(Equal(255))
		Expect(c.CheckStrands).To(Equal(32))
		Expect(c.StrandIDBytes).To(Equal(2))
		Expect(c.RunoutBytes).To(Equal(2))
		Expect(c.TotalStrandLength).To(Equal(300))
		Expect(c.LeftPrimer).To(Equal(DefaultLeftPrimer))
		Expect(c.RightPrimer).To(Equal(DefaultRightPrimer))
		Expect(c.CodeRate).To(Equal(protocol.DefaultCodeRate))
		Expect(*c.DNAConstraints).To(Equal(protocol.DefaultDNAConstraints))
		Expect(c.OuterScheme).To(Equal(BerlekampWelchScheme))
		Expect(c.Parallelism).To(BeNumerically(">", 0))
		Expect(c.Logger).ToNot(BeNil())
		Expect(c.Tracer).To(BeNil())
	})

	It("keeps what is set", func() {
		c := populateConfig(&Config{CheckStrands: 16, CodeRate: 1, OuterScheme: ReedSolomonScheme})
		Expect(c.CheckStrands).To(Equal(16))
		Expect(c.CodeRate.Rate()).To(Equal(0.75))
		Expect(c.OuterScheme).To(Equal(ReedSolomonScheme))
	})

	It("doesn't modify the config it populates", func() {
		orig := &Config{}
		populateConfig(orig)
		Expect(orig.StrandsPerPacket).To(BeZero())
		Expect(orig.DNAConstraints).To(BeNil())
	})

	It("clones deeply", func() {
		l := Layout{StrandsPerPacket: 8, CheckStrands: 2, StrandIDBytes: 2, MessageBytesPerStrand: 4}
		dc := protocol.DefaultDNAConstraints
		c := &Config{Layout: &l, DNAConstraints: &dc}
		clone := c.Clone()
		clone.Layout.CheckStrands = 3
		clone.DNAConstraints.MaxHomopolymer = 9
		Expect(c.Layout.CheckStrands).To(Equal(2))
		Expect(c.DNAConstraints.MaxHomopolymer).To(Equal(4))
	})

	It("derives the layout from the strand geometry", func() {
		l, err := populateConfig(&Config{CodeRate: 1}).layout()
		Expect(err).ToNot(HaveOccurred())
		// 254 message symbols at rate 0.75 carry 47 bytes
		Expect(l.BytesPerStrand()).To(Equal(47))
		Expect(l.MessageBytesPerStrand).To(Equal(43))
	})

	It("validates", func() {
		Expect(validateConfig(populateConfig(&Config{Parallelism: -1}))).To(MatchError(ContainSubstring("parallelism")))
		Expect(validateConfig(populateConfig(&Config{CodeRate: 7}))).To(MatchError(ContainSubstring("code rate")))
		dc := protocol.DNAConstraints{MaxHomopolymer: 4, GCWindow: 12, MaxGC: 3, MinGC: 4}
		Expect(validateConfig(populateConfig(&Config{DNAConstraints: &dc}))).To(HaveOccurred())
	})
})
