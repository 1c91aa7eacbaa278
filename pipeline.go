package strandfec

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ddritzenhoff/strandfec/internal/fec"
	"github.com/ddritzenhoff/strandfec/internal/strand"
	"github.com/ddritzenhoff/strandfec/internal/wire"
	"github.com/ddritzenhoff/strandfec/qlog"
)

// A Pipeline encodes plaintext into packets of strands, sends them through a channel,
// decodes them and checks the recovered plaintext.
// Its configuration is fixed when it is created; a Pipeline is safe for concurrent use.
type Pipeline struct {
	config  *Config
	layout  Layout
	scheme  fec.Scheme
	codec   InnerCodec
	adapter *strand.Adapter
	logger  *zap.Logger
}

// NewPipeline validates config and configures the inner codec.
// Every configuration error surfaces here, before any packet is processed.
func NewPipeline(config *Config) (*Pipeline, error) {
	c := populateConfig(config)
	if err := validateConfig(c); err != nil {
		return nil, err
	}
	l, err := c.layout()
	if err != nil {
		return nil, err
	}
	scheme, err := fec.NewScheme(c.OuterScheme, l)
	if err != nil {
		return nil, err
	}

	codec := c.InnerCodec
	if codec == nil {
		codec = NewChunkCodec()
	}
	if cc, ok := codec.(configurable); ok {
		if err := cc.Configure(c.codecParams()); err != nil {
			return nil, fmt.Errorf("configuring inner codec: %w", err)
		}
	}
	if lc, ok := codec.(interface{ EncodedLength(int) (int, error) }); ok {
		n, err := lc.EncodedLength(l.BytesPerStrand())
		if err != nil {
			return nil, err
		}
		if n > c.TotalStrandLength {
			return nil, fmt.Errorf("%w: %d bytes per strand encode to %d symbols, strands hold %d",
				ErrStrandTooLong, l.BytesPerStrand(), n, c.TotalStrandLength)
		}
	}

	c.Logger.Info("pipeline configured",
		zap.Int("strands_per_packet", l.StrandsPerPacket),
		zap.Int("check_strands", l.CheckStrands),
		zap.Int("bytes_per_strand", l.BytesPerStrand()),
		zap.Int("message_bytes_per_strand", l.MessageBytesPerStrand),
		zap.Int("payload_bytes_per_packet", l.PayloadBytesPerPacket()),
		zap.Stringer("outer_scheme", c.OuterScheme),
		zap.Int("erasure_capacity", scheme.ErasureCapacity()),
		zap.Stringer("code_rate", c.CodeRate),
		zap.Float64("bits_per_symbol", l.BitsPerSymbol(c.TotalStrandLength)),
	)
	return &Pipeline{
		config:  c,
		layout:  l,
		scheme:  scheme,
		codec:   codec,
		adapter: strand.NewAdapter(codec, l, c.TotalStrandLength, len(c.RightPrimer), c.Parallelism),
		logger:  c.Logger,
	}, nil
}

// Layout returns the packet layout.
func (p *Pipeline) Layout() Layout { return p.layout }

// TotalStrandLength is the number of symbols of every strand.
func (p *Pipeline) TotalStrandLength() int { return p.config.TotalStrandLength }

// Run processes plaintext packet by packet. A nil channel is error free.
// Packets are built in order from the plaintext stream and encoded concurrently.
// Only once every packet is encoded do they go through the channel and get decoded,
// so a strand that doesn't fit fails the run before anything reaches the channel.
// Damage in the channel is reported in the RunReport; an error means the run couldn't complete,
// for example because a strand didn't fit.
func (p *Pipeline) Run(ctx context.Context, plaintext []byte, ch Channel) (*RunReport, error) {
	l := p.layout
	numPackets := l.NumPackets(len(plaintext))
	if numPackets > 0 && PacketNumber(numPackets-1) > l.MaxPacketNumber() {
		return nil, fmt.Errorf("%d packets needed, but packet numbers only go up to %d with %d strand ID bytes",
			numPackets, l.MaxPacketNumber(), l.StrandIDBytes)
	}
	if t := p.config.Tracer; t != nil {
		start := qlog.RunStarted{
			StrandsPerPacket:      l.StrandsPerPacket,
			CheckStrands:          l.CheckStrands,
			StrandIDBytes:         l.StrandIDBytes,
			MessageBytesPerStrand: l.MessageBytesPerStrand,
			TotalStrandLength:     p.config.TotalStrandLength,
			OuterScheme:           p.config.OuterScheme.String(),
			CodeRate:              p.config.CodeRate.Rate(),
			PlaintextBytes:        len(plaintext),
			Packets:               numPackets,
		}
		if r, ok := ch.(interface{ Rates() Rates }); ok {
			start.SubstitutionRate = r.Rates().Substitution
			start.DeletionRate = r.Rates().Deletion
			start.InsertionRate = r.Rates().Insertion
		}
		t.RunStarted(start)
	}

	per := l.PayloadBytesPerPacket()
	stats := make([]PacketStats, numPackets)
	recovered := make([]byte, numPackets*per)

	// all packets are encoded before the first one enters the channel
	encoded := make([]encodedPacket, numPackets)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Parallelism)
	cursor := wire.NewCursor(plaintext)
	for n := 0; n < numPackets; n++ {
		if gctx.Err() != nil {
			break
		}
		n := n
		packet, truth := wire.BuildPacket(l, PacketNumber(n), cursor)
		g.Go(func() error {
			bag, err := p.encodePacket(packet)
			if err != nil {
				return err
			}
			encoded[n] = encodedPacket{number: packet.Number, bag: bag, truth: truth}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var done atomic.Int64
	progress := &rate.Sometimes{Interval: 2 * time.Second}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(p.config.Parallelism)
	for n := range encoded {
		if gctx.Err() != nil {
			break
		}
		n := n
		g.Go(func() error {
			s, text, err := p.decodePacket(encoded[n], ch)
			if err != nil {
				return err
			}
			// the bag isn't needed anymore
			encoded[n].bag = nil
			stats[n] = s
			copy(recovered[n*per:], text)
			p.logPacket(s)
			finished := done.Add(1)
			progress.Do(func() {
				p.logger.Info("progress", zap.Int64("packets_done", finished), zap.Int("packets", numPackets))
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &RunReport{Packets: stats, Plaintext: recovered[:len(plaintext)]}
	for _, s := range stats {
		r.Totals.add(s)
		if !s.OK() {
			r.BadPackets++
		}
	}
	if t := p.config.Tracer; t != nil {
		t.RunFinished(qlog.RunFinished{Packets: numPackets, BadPackets: r.BadPackets, Totals: r.Totals.traceEvent()})
	}
	p.logger.Info("run finished",
		zap.Int("packets", numPackets),
		zap.Int("bad_packets", r.BadPackets),
		zap.Int("bad_bytes", r.Totals.BadBytes),
	)
	return r, nil
}

// An encodedPacket is a packet on its way to the channel.
type encodedPacket struct {
	number PacketNumber
	bag    [][]byte
	// truth is the plaintext the packet was built from.
	truth []byte
}

// encodePacket protects a built packet and converts it to strands.
func (p *Pipeline) encodePacket(packet *wire.Packet) ([][]byte, error) {
	protected, err := fec.Protect(packet, p.scheme, p.config.Parallelism)
	if err != nil {
		return nil, err
	}
	bag, err := p.adapter.ToSymbols(protected)
	if err != nil {
		if errors.Is(err, strand.ErrStrandTooLong) {
			p.logger.Error("strand too long, check the code rate and packet layout", zap.Error(err))
		}
		return nil, err
	}
	return bag, nil
}

// decodePacket takes the strands of a packet through the channel, decoding and correction,
// and compares the result with the plaintext the packet was built from.
func (p *Pipeline) decodePacket(e encodedPacket, ch Channel) (PacketStats, []byte, error) {
	bag := e.bag
	if ch != nil {
		bag = ch.ApplyBag(e.number, bag)
	}
	received, mask, dstats, err := p.adapter.FromSymbols(e.number, bag)
	if err != nil {
		return PacketStats{}, nil, err
	}
	p.logger.Debug("strands decoded",
		zap.Uint64("packet", uint64(e.number)),
		zap.Int("failed_strands", dstats.FailedStrands),
		zap.Int("masked_bytes", mask.Count()),
	)
	corrected, cstats, err := fec.Correct(received, mask, p.scheme, p.config.Parallelism)
	if err != nil {
		return PacketStats{}, nil, err
	}
	text := wire.ExtractPlaintext(corrected)
	return newPacketStats(e.number, dstats, cstats, wire.CountBadBytes(e.truth, text)), text, nil
}

func (p *Pipeline) logPacket(s PacketStats) {
	if t := p.config.Tracer; t != nil {
		t.PacketProcessed(s.traceEvent())
	}
	fields := []zap.Field{
		zap.Uint64("packet", uint64(s.PacketNumber)),
		zap.Int("failed_strands", s.FailedStrands),
		zap.Int("erased_bytes", s.ErasedBytes),
		zap.Int("total_detected", s.TotalDetected),
		zap.Int("max_detected", s.MaxDetected),
		zap.Int("total_uncorrected", s.TotalUncorrected),
		zap.Int("max_uncorrected", s.MaxUncorrected),
		zap.Int("error_codes", s.ErrorCodes),
		zap.Int("bad_bytes", s.BadBytes),
	}
	if !s.OK() {
		p.logger.Warn("packet NOT ok", fields...)
		return
	}
	p.logger.Debug("packet OK", fields...)
}
