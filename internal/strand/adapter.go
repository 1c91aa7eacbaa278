package strand

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ddritzenhoff/strandfec/internal/protocol"
	"github.com/ddritzenhoff/strandfec/internal/wire"
)

// ErrStrandTooLong means the inner codec produced more symbols than a strand can hold.
// The packet layout and the code rate don't fit the strand length; this is a configuration error.
var ErrStrandTooLong = errors.New("DNA strand too long")

// DecodeStats counts the damage the inner codec reported for a packet.
type DecodeStats struct {
	// FailedStrands is the number of strands decoded with a nonzero status.
	FailedStrands int
	// ErasedBytes is the number of message bytes the failed strands didn't deliver.
	ErasedBytes int
}

// An Adapter moves packets between the byte and the symbol domain.
type Adapter struct {
	codec       InnerCodec
	layout      protocol.Layout
	totalLength int
	rightLength int
	parallelism int
}

// NewAdapter returns an adapter producing strands of exactly totalLength symbols.
// The last rightLength symbols of every encoded strand (the right primer) stay at the end,
// filler goes in front of them. parallelism limits the strands coded at once, <= 0 means no limit.
func NewAdapter(codec InnerCodec, l protocol.Layout, totalLength, rightLength, parallelism int) *Adapter {
	return &Adapter{
		codec:       codec,
		layout:      l,
		totalLength: totalLength,
		rightLength: rightLength,
		parallelism: parallelism,
	}
}

func (a *Adapter) group() *errgroup.Group {
	g := &errgroup.Group{}
	if a.parallelism > 0 {
		g.SetLimit(a.parallelism)
	}
	return g
}

// ToSymbols encodes every strand of p.
// If any strand doesn't fit, it returns an error wrapping ErrStrandTooLong and no strands at all.
func (a *Adapter) ToSymbols(p *wire.Packet) ([][]byte, error) {
	bag := make([][]byte, p.Strands())
	g := a.group()
	for i := range bag {
		i := i
		g.Go(func() error {
			dna, err := a.codec.Encode(p.Row(i))
			if err != nil {
				return fmt.Errorf("encoding strand %d: %w", i, err)
			}
			dna, err = fitStrand(dna, a.totalLength, a.rightLength)
			if err != nil {
				return fmt.Errorf("strand %d of packet %d: %w", i, p.Number, err)
			}
			bag[i] = dna
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bag, nil
}

// fitStrand pads dna to total symbols, inserting filler before the last right symbols.
func fitStrand(dna []byte, total, right int) ([]byte, error) {
	if len(dna) > total {
		return nil, fmt.Errorf("%w: %d symbols, strands hold %d", ErrStrandTooLong, len(dna), total)
	}
	if len(dna) == total {
		return dna, nil
	}
	right = min(right, len(dna))
	out := make([]byte, 0, total)
	out = append(out, dna[:len(dna)-right]...)
	out = appendFiller(out, total-len(dna))
	return append(out, dna[len(dna)-right:]...), nil
}

// FromSymbols decodes the strands of packet n, ordered by strand index.
// Bytes a strand didn't deliver are zero in the packet and marked in the erasure mask;
// the bytes it did deliver are trusted, even if its decode status was nonzero.
// A strand whose decoded ID names another packet or row is erased entirely;
// DecodeStats only count what the codec reported.
func (a *Adapter) FromSymbols(n protocol.PacketNumber, bag [][]byte) (*wire.Packet, *wire.ErasureMask, DecodeStats, error) {
	l := a.layout
	if len(bag) != l.StrandsPerPacket {
		return nil, nil, DecodeStats{}, fmt.Errorf("got %d strands, a packet has %d", len(bag), l.StrandsPerPacket)
	}
	p := wire.NewPacket(l, n)
	mask := wire.NewErasureMask(l)
	width := l.BytesPerStrand()

	perStrand := make([]DecodeStats, len(bag))
	g := a.group()
	for i := range bag {
		i := i
		g.Go(func() error {
			status, data := a.codec.Decode(bag[i], 8*width)
			if status != StatusOK {
				perStrand[i] = DecodeStats{
					FailedStrands: 1,
					ErasedBytes:   max(0, l.MessageBytesPerStrand-len(data)),
				}
			}
			valid := copy(p.Row(i), data)
			// rows and mask rows are disjoint per strand, no locking needed
			if !a.idMatches(p.Row(i)[:valid], n, i) {
				mask.EraseFrom(i, 0)
				return nil
			}
			mask.EraseFrom(i, min(max(valid-l.StrandIDBytes, 0), l.MessageBytesPerStrand))
			return nil
		})
	}
	// the goroutines never fail, the group only bounds the parallelism
	_ = g.Wait()

	var stats DecodeStats
	for _, s := range perStrand {
		stats.FailedStrands += s.FailedStrands
		stats.ErasedBytes += s.ErasedBytes
	}
	return p, mask, stats, nil
}

// idMatches reports whether the decoded row carries the ID of strand i of packet n.
// A row too short to hold an ID has no payload to distrust.
func (a *Adapter) idMatches(row []byte, n protocol.PacketNumber, i int) bool {
	id, err := wire.ParseStrandID(row, a.layout.StrandIDBytes)
	if err != nil {
		return true
	}
	return id.Index == protocol.StrandIndex(i) && id.Packet == n&a.layout.MaxPacketNumber()
}
