package fec

import (
	"fmt"

	"github.com/ddritzenhoff/strandfec/internal/protocol"
)

// Decode status codes. Anything other than StatusOK means the block may still hold errors.
const (
	StatusOK = iota
	StatusUncorrectable
)

// Scheme is the code applied to every diagonal group of a packet.
// A block holds one byte per strand; the last CheckStrands bytes are redundancy.
// Implementations must be safe for concurrent use, diagonals are coded in parallel.
type Scheme interface {
	// Encode overwrites the check bytes of block with the redundancy for its message bytes.
	Encode(block []byte) error
	// Decode corrects block in place, treating the bytes at the erasures positions as unknown.
	// The block is left as the best available guess even when the returned status is not StatusOK.
	Decode(block []byte, erasures []int) DecodeResult
	// BlockLength is the number of bytes of a block.
	BlockLength() int
	// ErasureCapacity is the number of erasures Decode always recovers, wherever they are.
	ErasureCapacity() int
}

// DecodeResult reports what decoding a single block found.
type DecodeResult struct {
	// Detected counts the erasures and the errors the decoder noticed.
	Detected int
	// Corrected counts the bytes that were restored.
	Corrected int
	Status    int
}

// Uncorrected is the number of detected errors that weren't corrected.
func (r DecodeResult) Uncorrected() int {
	return max(0, r.Detected-r.Corrected)
}

// NewScheme returns the outer code for packets of layout l.
// It refuses layouts the code can't protect rather than silently under-protecting them.
func NewScheme(id protocol.OuterSchemeID, l protocol.Layout) (Scheme, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	k, m := l.MessageStrands(), l.CheckStrands
	switch id {
	case protocol.XORScheme:
		if m != 1 {
			return nil, fmt.Errorf("xor only supports a (k+1, k) scheme. provided (%d, %d)", k+m, k)
		}
		return &xorScheme{n: k + m}, nil
	case protocol.ReedSolomonScheme:
		return newReedSolomonScheme(k, m)
	case protocol.BerlekampWelchScheme:
		return newBerlekampWelchScheme(k, m)
	default:
		return nil, fmt.Errorf("unknown outer code scheme: %d", id)
	}
}
