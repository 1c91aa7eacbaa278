package fec

import (
	"github.com/ddritzenhoff/strandfec/internal/protocol"
	"github.com/ddritzenhoff/strandfec/internal/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Protecting and correcting packets", func() {
	layout := protocol.Layout{
		StrandsPerPacket:      8,
		CheckStrands:          2,
		StrandIDBytes:         2,
		MessageBytesPerStrand: 4,
	}

	var (
		scheme    Scheme
		plaintext []byte
		packet    *wire.Packet
		protected *wire.Packet
	)

	BeforeEach(func() {
		var err error
		scheme, err = NewScheme(protocol.BerlekampWelchScheme, layout)
		Expect(err).ToNot(HaveOccurred())
		source := make([]byte, 24)
		for i := range source {
			source[i] = byte(i)
		}
		packet, plaintext = wire.BuildPacket(layout, 0, wire.NewCursor(source))
		Expect(plaintext).To(Equal(source))
		protected, err = Protect(packet, scheme, 0)
		Expect(err).ToNot(HaveOccurred())
	})

	eraseStrand := func(p *wire.Packet, mask *wire.ErasureMask, i int) {
		payload := p.Payload(i)
		for col := range payload {
			payload[col] = 0xee
		}
		mask.EraseFrom(i, 0)
	}

	It("fills the check strands and leaves the rest alone", func() {
		Expect(packet.Payload(6)).To(Equal([]byte{0, 0, 0, 0}))
		for i := 0; i < layout.MessageStrands(); i++ {
			Expect(protected.Row(i)).To(Equal(packet.Row(i)))
		}
		for i := layout.MessageStrands(); i < layout.StrandsPerPacket; i++ {
			Expect(protected.Payload(i)).ToNot(Equal([]byte{0, 0, 0, 0}))
			Expect(protected.Row(i)[:2]).To(Equal([]byte{0, byte(i)}))
		}
		// the input packet is not modified
		Expect(packet.Payload(7)).To(Equal([]byte{0, 0, 0, 0}))
	})

	It("makes every diagonal group a codeword", func() {
		block := make([]byte, layout.StrandsPerPacket)
		for j := 0; j < layout.MessageBytesPerStrand; j++ {
			protected.GatherDiagonal(j, block)
			Expect(scheme.Decode(block, nil)).To(Equal(DecodeResult{}))
		}
	})

	It("round trips without erasures", func() {
		corrected, stats, err := Correct(protected, wire.NewErasureMask(layout), scheme, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(stats).To(Equal(CorrectionStats{}))
		Expect(corrected.Row(7)).To(Equal(protected.Row(7)))
		Expect(wire.ExtractPlaintext(corrected)).To(Equal(plaintext))
	})

	It("recovers a single erased message strand", func() {
		received := protected.Clone()
		mask := wire.NewErasureMask(layout)
		eraseStrand(received, mask, 3)
		corrected, stats, err := Correct(received, mask, scheme, 2)
		Expect(err).ToNot(HaveOccurred())
		Expect(corrected.Row(3)).To(Equal(protected.Row(3)))
		Expect(stats).To(Equal(CorrectionStats{TotalDetected: 4, MaxDetected: 1}))
		Expect(wire.ExtractPlaintext(corrected)).To(Equal(plaintext))
	})

	It("recovers two erased strands, one of them a check strand", func() {
		received := protected.Clone()
		mask := wire.NewErasureMask(layout)
		eraseStrand(received, mask, 0)
		eraseStrand(received, mask, 7)
		corrected, stats, err := Correct(received, mask, scheme, 0)
		Expect(err).ToNot(HaveOccurred())
		for i := 0; i < layout.StrandsPerPacket; i++ {
			Expect(corrected.Row(i)).To(Equal(protected.Row(i)))
		}
		Expect(stats.ErrorCodes).To(BeZero())
		Expect(stats.MaxDetected).To(Equal(2))
	})

	It("corrects a corrupted byte nobody marked as erased", func() {
		received := protected.Clone()
		received.Payload(5)[2] ^= 0x40
		corrected, stats, err := Correct(received, wire.NewErasureMask(layout), scheme, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(stats).To(Equal(CorrectionStats{TotalDetected: 1, MaxDetected: 1}))
		Expect(wire.ExtractPlaintext(corrected)).To(Equal(plaintext))
	})

	It("keeps going when diagonals are beyond repair", func() {
		received := protected.Clone()
		mask := wire.NewErasureMask(layout)
		for _, i := range []int{1, 2, 4} {
			eraseStrand(received, mask, i)
		}
		corrected, stats, err := Correct(received, mask, scheme, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(stats).To(Equal(CorrectionStats{
			TotalDetected:    12,
			MaxDetected:      3,
			TotalUncorrected: 12,
			MaxUncorrected:   3,
			ErrorCodes:       4,
		}))
		// best effort: the bytes are written back as they are
		Expect(corrected.Row(2)).To(Equal(received.Row(2)))
		Expect(wire.CountBadBytes(plaintext, wire.ExtractPlaintext(corrected))).To(Equal(12))
	})

	It("refuses a mask of the wrong size", func() {
		l := layout
		l.MessageBytesPerStrand = 5
		_, _, err := Correct(protected, wire.NewErasureMask(l), scheme, 0)
		Expect(err).To(MatchError(ContainSubstring("erasure mask is 8x5")))
	})

	It("refuses a packet that doesn't match the scheme", func() {
		l := layout
		l.StrandsPerPacket = 9
		_, err := Protect(wire.NewPacket(l, 0), scheme, 0)
		Expect(err).To(HaveOccurred())
	})

	It("protects with XOR", func() {
		l := layout
		l.CheckStrands = 1
		s, err := NewScheme(protocol.XORScheme, l)
		Expect(err).ToNot(HaveOccurred())
		p, _ := wire.BuildPacket(l, 1, wire.NewCursor(plaintext))
		protected, err := Protect(p, s, 0)
		Expect(err).ToNot(HaveOccurred())
		received := protected.Clone()
		mask := wire.NewErasureMask(l)
		eraseStrand(received, mask, 6)
		corrected, stats, err := Correct(received, mask, s, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(stats.ErrorCodes).To(BeZero())
		Expect(corrected.Row(6)).To(Equal(protected.Row(6)))
	})
})
