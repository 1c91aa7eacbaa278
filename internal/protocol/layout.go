package protocol

import (
	"errors"
	"fmt"
	"math"
)

// MaxStrandsPerPacket is the length of a GF(256) Reed-Solomon codeword.
// Every diagonal group holds one byte per strand, so a packet can never have more strands.
const MaxStrandsPerPacket = 255

// ErrInvalidLayout is returned for packet dimensions the outer code can't protect.
var ErrInvalidLayout = errors.New("invalid packet layout")

// A PacketNumber numbers the packets of a stream, starting at 0.
type PacketNumber uint64

// A StrandIndex is the row of a strand within its packet.
type StrandIndex uint8

// Layout describes the fixed dimensions of a packet.
type Layout struct {
	// StrandsPerPacket is the number of rows, message and check strands together.
	StrandsPerPacket int
	// CheckStrands is the number of rows holding outer code redundancy.
	CheckStrands int
	// StrandIDBytes is the width of the strand ID at the start of every row.
	StrandIDBytes int
	// MessageBytesPerStrand is the width of the payload region of every row.
	MessageBytesPerStrand int
	// RunoutBytes are zero bytes at the end of every row. The inner codec uses them to confirm the end of a strand.
	RunoutBytes int
}

// MessageStrands is the number of rows carrying plaintext.
func (l Layout) MessageStrands() int { return l.StrandsPerPacket - l.CheckStrands }

// BytesPerStrand is the width of a row.
func (l Layout) BytesPerStrand() int {
	return l.StrandIDBytes + l.MessageBytesPerStrand + l.RunoutBytes
}

// PayloadBytesPerPacket is the number of plaintext bytes carried by one packet.
func (l Layout) PayloadBytesPerPacket() int { return l.MessageStrands() * l.MessageBytesPerStrand }

// NumPackets returns the number of packets needed for n plaintext bytes.
func (l Layout) NumPackets(n int) int {
	per := l.PayloadBytesPerPacket()
	if per <= 0 || n <= 0 {
		return 0
	}
	return (n + per - 1) / per
}

// MaxPacketNumber is the largest packet number that fits in the strand ID.
// The last ID byte is the strand index, the bytes before it hold the packet number.
func (l Layout) MaxPacketNumber() PacketNumber {
	n := l.StrandIDBytes - 1
	if n <= 0 {
		return 0
	}
	if n >= 8 {
		return math.MaxUint64
	}
	return PacketNumber(1)<<(8*n) - 1
}

// Validate checks the relationships the outer code relies on.
func (l Layout) Validate() error {
	switch {
	case l.StrandsPerPacket < 2 || l.StrandsPerPacket > MaxStrandsPerPacket:
		return fmt.Errorf("%w: %d strands per packet, need 2..%d", ErrInvalidLayout, l.StrandsPerPacket, MaxStrandsPerPacket)
	case l.CheckStrands < 1 || l.CheckStrands >= l.StrandsPerPacket:
		return fmt.Errorf("%w: %d check strands for %d strands per packet", ErrInvalidLayout, l.CheckStrands, l.StrandsPerPacket)
	case l.StrandIDBytes < 2:
		return fmt.Errorf("%w: strand ID needs at least 2 bytes, got %d", ErrInvalidLayout, l.StrandIDBytes)
	case l.MessageBytesPerStrand < 1:
		return fmt.Errorf("%w: no message bytes per strand (%d)", ErrInvalidLayout, l.MessageBytesPerStrand)
	case l.RunoutBytes < 0:
		return fmt.Errorf("%w: negative runout (%d)", ErrInvalidLayout, l.RunoutBytes)
	}
	return nil
}

// BitsPerSymbol is the payload density of a packet for strands of totalStrandLength symbols.
func (l Layout) BitsPerSymbol(totalStrandLength int) float64 {
	if totalStrandLength <= 0 {
		return 0
	}
	payloadBits := float64(8 * l.PayloadBytesPerPacket())
	return payloadBits / float64(l.StrandsPerPacket*totalStrandLength)
}

// CodeRate selects an entry of the inner codec's code rate table.
type CodeRate int

var codeRates = [...]float64{math.NaN(), 0.75, 0.6, 0.5, 1. / 3., 0.25, 1. / 6.}

// DefaultCodeRate is code rate 0.5.
const DefaultCodeRate CodeRate = 3

// Valid says whether c is in the table.
func (c CodeRate) Valid() bool { return c >= 1 && int(c) < len(codeRates) }

// Rate returns the fraction of a symbol's capacity that carries message bits.
// It is NaN for invalid codes.
func (c CodeRate) Rate() float64 {
	if !c.Valid() {
		return math.NaN()
	}
	return codeRates[c]
}

func (c CodeRate) String() string {
	if !c.Valid() {
		return fmt.Sprintf("CodeRate(%d)", int(c))
	}
	return fmt.Sprintf("%.3f", codeRates[c])
}

// StrandGeometry is the symbol-domain shape of a strand.
type StrandGeometry struct {
	// TotalStrandLength is the number of symbols of every synthesized strand, primers included.
	TotalStrandLength int
	LeftPrimerLength  int
	RightPrimerLength int
}

// MessageSymbols is the number of symbols between the primers.
func (g StrandGeometry) MessageSymbols() int {
	return g.TotalStrandLength - g.LeftPrimerLength - g.RightPrimerLength
}

// NewLayout derives the packet layout from the strand geometry and the code rate.
// A strand of n message symbols at rate r carries int(n*r/4) bytes, strand ID and runout included.
func NewLayout(g StrandGeometry, rate CodeRate, strandsPerPacket, checkStrands, idBytes, runoutBytes int) (Layout, error) {
	if !rate.Valid() {
		return Layout{}, fmt.Errorf("%w: unknown code rate %d", ErrInvalidLayout, int(rate))
	}
	if g.MessageSymbols() <= 0 {
		return Layout{}, fmt.Errorf("%w: primers (%d+%d) leave no room in a strand of %d symbols",
			ErrInvalidLayout, g.LeftPrimerLength, g.RightPrimerLength, g.TotalStrandLength)
	}
	bytesPerStrand := int(float64(g.MessageSymbols()) * rate.Rate() / 4.)
	l := Layout{
		StrandsPerPacket:      strandsPerPacket,
		CheckStrands:          checkStrands,
		StrandIDBytes:         idBytes,
		MessageBytesPerStrand: bytesPerStrand - idBytes - runoutBytes,
		RunoutBytes:           runoutBytes,
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}
