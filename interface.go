package strandfec

import (
	"github.com/ddritzenhoff/strandfec/internal/channel"
	"github.com/ddritzenhoff/strandfec/internal/protocol"
	"github.com/ddritzenhoff/strandfec/internal/strand"
)

type (
	// A Layout describes the dimensions of a packet.
	Layout = protocol.Layout
	// A PacketNumber numbers the packets of a run, starting at 0.
	PacketNumber = protocol.PacketNumber
	// A CodeRate selects the inner code rate, 1 (0.75) to 6 (1/6).
	CodeRate = protocol.CodeRate
	// An OuterScheme selects the code protecting the diagonal groups of a packet.
	OuterScheme = protocol.OuterSchemeID
	// DNAConstraints are the sequence constraints handed to the inner codec.
	DNAConstraints = protocol.DNAConstraints
	// An InnerCodec converts single strands between bytes and symbols.
	InnerCodec = strand.InnerCodec
	// CodecParams configure the inner codec.
	CodecParams = strand.CodecParams
	// Rates are the per-symbol error probabilities of a simulated channel.
	Rates = channel.Rates
)

const (
	XORScheme            = protocol.XORScheme
	ReedSolomonScheme    = protocol.ReedSolomonScheme
	BerlekampWelchScheme = protocol.BerlekampWelchScheme
)

// DefaultDNAConstraints: runs of at most 4, between 4 and 8 G/C in every window of 12.
var DefaultDNAConstraints = protocol.DefaultDNAConstraints

var (
	// ErrStrandTooLong is returned when encoded strands don't fit the configured strand length.
	ErrStrandTooLong = strand.ErrStrandTooLong
	// ErrReconfigure is returned when a shared inner codec is configured differently a second time.
	ErrReconfigure = strand.ErrReconfigure
	// ErrInvalidLayout is returned for packet dimensions the outer code can't protect.
	ErrInvalidLayout = protocol.ErrInvalidLayout
)

// A Channel damages the strands of a packet on their way from synthesis to sequencing.
// The returned strands must be in the same order as bag.
type Channel interface {
	ApplyBag(n PacketNumber, bag [][]byte) [][]byte
}

// NewChannel returns a channel injecting random substitutions, deletions and insertions.
// Its output is a deterministic function of the seed.
func NewChannel(r Rates, seed uint64) (Channel, error) {
	in, err := channel.NewInjector(r, seed)
	if err != nil {
		return nil, err
	}
	return in, nil
}

// NewChunkCodec returns the built-in inner codec. It is configured by the first Pipeline using it.
func NewChunkCodec() InnerCodec {
	return &strand.ChunkCodec{}
}

// A configurable inner codec is configured once by NewPipeline.
type configurable interface {
	Configure(strand.CodecParams) error
}

// ParseOuterScheme parses the name of an outer scheme, as printed by its String method or a short alias.
func ParseOuterScheme(s string) (OuterScheme, bool) {
	return protocol.ParseOuterScheme(s)
}
