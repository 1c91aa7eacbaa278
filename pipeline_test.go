package strandfec

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/ddritzenhoff/strandfec/internal/mocks"
	"github.com/ddritzenhoff/strandfec/internal/strand"
	"github.com/ddritzenhoff/strandfec/qlog"
)

var _ = Describe("Pipeline", func() {
	// 8 strands of 6 bytes: 2 bytes strand ID, 4 message bytes, no runout
	smallLayout := Layout{
		StrandsPerPacket:      8,
		CheckStrands:          2,
		StrandIDBytes:         2,
		MessageBytesPerStrand: 4,
	}

	counting := func(n int) []byte {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte(i)
		}
		return b
	}

	randomData := func(n int) []byte {
		b := make([]byte, n)
		rand.New(rand.NewSource(42)).Read(b)
		return b
	}

	Context("with the built-in codec", func() {
		It("round trips without a channel", func() {
			p, err := NewPipeline(nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Layout().BytesPerStrand()).To(Equal(31))
			Expect(p.Layout().MessageBytesPerStrand).To(Equal(27))

			data := randomData(4878)
			r, err := p.Run(context.Background(), data, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(r.Packets).To(HaveLen(1))
			Expect(r.AllOK()).To(BeTrue())
			Expect(r.Totals).To(Equal(PacketStats{}))
			Expect(r.Plaintext).To(Equal(data))
			Expect(r.String()).To(Equal("All packets OK"))
		})

		It("spreads the plaintext over several packets", func() {
			p, err := NewPipeline(&Config{Layout: &smallLayout})
			Expect(err).ToNot(HaveOccurred())
			data := counting(100)
			r, err := p.Run(context.Background(), data, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(r.Packets).To(HaveLen(5))
			for i, s := range r.Packets {
				Expect(s.PacketNumber).To(Equal(PacketNumber(i)))
				Expect(s.OK()).To(BeTrue())
			}
			Expect(r.Plaintext).To(Equal(data))
		})

		It("runs nothing for empty plaintext", func() {
			p, err := NewPipeline(&Config{Layout: &smallLayout})
			Expect(err).ToNot(HaveOccurred())
			r, err := p.Run(context.Background(), nil, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(r.Packets).To(BeEmpty())
			Expect(r.Plaintext).To(BeEmpty())
			Expect(r.AllOK()).To(BeTrue())
		})

		It("passes everything through an error free channel", func() {
			p, err := NewPipeline(&Config{Layout: &smallLayout})
			Expect(err).ToNot(HaveOccurred())
			ch, err := NewChannel(Rates{}, 7)
			Expect(err).ToNot(HaveOccurred())
			data := counting(48)
			r, err := p.Run(context.Background(), data, ch)
			Expect(err).ToNot(HaveOccurred())
			Expect(r.Totals).To(Equal(PacketStats{}))
			Expect(r.Plaintext).To(Equal(data))
		})

		It("reports channel damage deterministically", func() {
			p, err := NewPipeline(&Config{Parallelism: 3})
			Expect(err).ToNot(HaveOccurred())
			data := randomData(10000)
			run := func() *RunReport {
				ch, err := NewChannel(Rates{Substitution: 0.01}, 1)
				Expect(err).ToNot(HaveOccurred())
				r, err := p.Run(context.Background(), data, ch)
				Expect(err).ToNot(HaveOccurred())
				return r
			}
			r := run()
			Expect(r.Packets).To(HaveLen(2))
			Expect(r.Totals.FailedStrands).To(BeNumerically(">", 0))
			Expect(r.Totals.FailedStrands).To(Equal(r.Packets[0].FailedStrands + r.Packets[1].FailedStrands))
			Expect(r.Totals.MaxDetected).To(Equal(r.Packets[0].MaxDetected + r.Packets[1].MaxDetected))
			Expect(r.Plaintext).To(HaveLen(len(data)))
			Expect(run()).To(Equal(r))
		})

		It("refuses more packets than the strand ID can number", func() {
			p, err := NewPipeline(&Config{Layout: &smallLayout})
			Expect(err).ToNot(HaveOccurred())
			// 24 bytes per packet, packet numbers 0..255
			_, err = p.Run(context.Background(), make([]byte, 257*24), nil)
			Expect(err).To(MatchError(ContainSubstring("257 packets needed")))
		})

		It("stops when the context is canceled", func() {
			p, err := NewPipeline(&Config{Layout: &smallLayout})
			Expect(err).ToNot(HaveOccurred())
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err = p.Run(ctx, counting(240), nil)
			Expect(err).To(MatchError(context.Canceled))
		})

		It("traces the run", func() {
			buf := &bytes.Buffer{}
			tracer := qlog.NewTracer(buf)
			p, err := NewPipeline(&Config{Layout: &smallLayout, Tracer: tracer})
			Expect(err).ToNot(HaveOccurred())
			_, err = p.Run(context.Background(), counting(60), nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(tracer.Err()).ToNot(HaveOccurred())
			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			Expect(lines).To(HaveLen(5))
			Expect(lines[0]).To(ContainSubstring(`"name":"run:started"`))
			Expect(lines[0]).To(ContainSubstring(tracer.RunID().String()))
			Expect(lines[4]).To(ContainSubstring(`"name":"run:finished"`))
			Expect(lines[4]).To(ContainSubstring(`"all_ok":true`))
		})
	})

	Context("configuration", func() {
		It("refuses strands that don't fit", func() {
			l := smallLayout
			l.MessageBytesPerStrand = 40
			_, err := NewPipeline(&Config{Layout: &l, TotalStrandLength: 100})
			Expect(err).To(MatchError(ErrStrandTooLong))
		})

		It("refuses invalid layouts", func() {
			_, err := NewPipeline(&Config{CheckStrands: 255})
			Expect(err).To(MatchError(ErrInvalidLayout))
			_, err = NewPipeline(&Config{TotalStrandLength: 40})
			Expect(err).To(MatchError(ErrInvalidLayout))
		})

		It("refuses XOR with more than one check strand", func() {
			_, err := NewPipeline(&Config{OuterScheme: XORScheme})
			Expect(err).To(MatchError(ContainSubstring("xor only supports")))
			l := smallLayout
			l.CheckStrands = 1
			_, err = NewPipeline(&Config{OuterScheme: XORScheme, Layout: &l})
			Expect(err).ToNot(HaveOccurred())
		})

		It("configures a shared codec only once", func() {
			codec := NewChunkCodec()
			_, err := NewPipeline(&Config{InnerCodec: codec})
			Expect(err).ToNot(HaveOccurred())
			_, err = NewPipeline(&Config{InnerCodec: codec, Layout: &smallLayout})
			Expect(err).ToNot(HaveOccurred())
			_, err = NewPipeline(&Config{InnerCodec: codec, LeftPrimer: "ACGTACGTACGTACGTACGTACG"})
			Expect(err).To(MatchError(ErrReconfigure))
		})

		It("refuses invalid primers", func() {
			_, err := NewPipeline(&Config{LeftPrimer: "ACGTX"})
			Expect(err).To(MatchError(ContainSubstring("left primer")))
		})
	})

	Context("with a mocked codec", func() {
		var codec *mocks.MockInnerCodec

		// The mock "encodes" a row as its bytes. The row is shorter than the right primer,
		// so the filler ends up in front of it and the row is at the end of the strand.
		rowOf := func(symbols []byte, expectedBits int) []byte {
			return symbols[len(symbols)-expectedBits/8:]
		}

		BeforeEach(func() {
			codec = mocks.NewMockInnerCodec(mockCtrl)
			codec.EXPECT().Encode(gomock.Any()).DoAndReturn(func(row []byte) ([]byte, error) {
				return append([]byte{}, row...), nil
			}).AnyTimes()
		})

		It("recovers a strand the codec only partially decoded", func() {
			codec.EXPECT().Decode(gomock.Any(), 48).DoAndReturn(func(symbols []byte, expectedBits int) (int, []byte) {
				row := rowOf(symbols, expectedBits)
				if row[1] == 2 {
					// strand ID and the first message byte
					return strand.StatusChecksum, row[:3]
				}
				return strand.StatusOK, row
			}).Times(8)

			p, err := NewPipeline(&Config{Layout: &smallLayout, InnerCodec: codec, Parallelism: 2})
			Expect(err).ToNot(HaveOccurred())
			data := counting(24)
			r, err := p.Run(context.Background(), data, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(r.Packets).To(Equal([]PacketStats{{
				FailedStrands: 1,
				ErasedBytes:   1,
				TotalDetected: 3,
				MaxDetected:   1,
			}}))
			Expect(r.Plaintext).To(Equal(data))
		})

		It("reports what it can't correct", func() {
			codec.EXPECT().Decode(gomock.Any(), 48).DoAndReturn(func(symbols []byte, expectedBits int) (int, []byte) {
				row := rowOf(symbols, expectedBits)
				if row[1] < 3 {
					return strand.StatusNoPrimer, nil
				}
				return strand.StatusOK, row
			}).Times(8)

			p, err := NewPipeline(&Config{Layout: &smallLayout, InnerCodec: codec})
			Expect(err).ToNot(HaveOccurred())
			r, err := p.Run(context.Background(), counting(24), nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(r.Packets).To(HaveLen(1))
			s := r.Packets[0]
			Expect(s.FailedStrands).To(Equal(3))
			Expect(s.ErasedBytes).To(Equal(12))
			Expect(s.TotalDetected).To(Equal(12))
			Expect(s.MaxUncorrected).To(Equal(3))
			Expect(s.ErrorCodes).To(Equal(4))
			// the lost strands decode as zeros, and so does the first plaintext byte
			Expect(s.BadBytes).To(Equal(11))
			Expect(r.BadPackets).To(Equal(1))
			Expect(r.String()).To(Equal("Some packets had errors"))
		})

		It("fails before the channel when a strand is too long", func() {
			long := mocks.NewMockInnerCodec(mockCtrl)
			long.EXPECT().Encode(gomock.Any()).Return(make([]byte, DefaultTotalStrandLength+1), nil).MinTimes(1)
			p, err := NewPipeline(&Config{Layout: &smallLayout, InnerCodec: long})
			Expect(err).ToNot(HaveOccurred())
			ch := &countingChannel{}
			_, err = p.Run(context.Background(), counting(24), ch)
			Expect(err).To(MatchError(ErrStrandTooLong))
			Expect(ch.calls.Load()).To(BeZero())
		})

		It("fails before the channel when a strand of a later packet is too long", func() {
			late := mocks.NewMockInnerCodec(mockCtrl)
			late.EXPECT().Encode(gomock.Any()).DoAndReturn(func(row []byte) ([]byte, error) {
				// the first ID byte is the packet number
				if row[0] == 3 {
					return make([]byte, DefaultTotalStrandLength+1), nil
				}
				return append([]byte{}, row...), nil
			}).MinTimes(1)
			p, err := NewPipeline(&Config{Layout: &smallLayout, InnerCodec: late, Parallelism: 4})
			Expect(err).ToNot(HaveOccurred())
			ch := &countingChannel{}
			_, err = p.Run(context.Background(), counting(4*24), ch)
			Expect(err).To(MatchError(ErrStrandTooLong))
			Expect(ch.calls.Load()).To(BeZero())
		})

		It("sends every packet through the channel once", func() {
			codec.EXPECT().Decode(gomock.Any(), 48).DoAndReturn(func(symbols []byte, expectedBits int) (int, []byte) {
				return strand.StatusOK, rowOf(symbols, expectedBits)
			}).Times(4 * 8)
			p, err := NewPipeline(&Config{Layout: &smallLayout, InnerCodec: codec})
			Expect(err).ToNot(HaveOccurred())
			ch := &countingChannel{}
			r, err := p.Run(context.Background(), counting(4*24), ch)
			Expect(err).ToNot(HaveOccurred())
			Expect(ch.calls.Load()).To(BeEquivalentTo(4))
			Expect(r.AllOK()).To(BeTrue())
		})
	})
})

type countingChannel struct{ calls atomic.Int32 }

func (c *countingChannel) ApplyBag(_ PacketNumber, bag [][]byte) [][]byte {
	c.calls.Add(1)
	return bag
}
