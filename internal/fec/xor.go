package fec

import "fmt"

// xorScheme protects a block with a single parity byte.
type xorScheme struct {
	n int
}

var _ Scheme = &xorScheme{}

func (s *xorScheme) BlockLength() int     { return s.n }
func (s *xorScheme) ErasureCapacity() int { return 1 }

func (s *xorScheme) Encode(block []byte) error {
	if len(block) != s.n {
		return fmt.Errorf("expecting a block of %d bytes. provided %d", s.n, len(block))
	}
	block[s.n-1] = xor(block[:s.n-1])
	return nil
}

func (s *xorScheme) Decode(block []byte, erasures []int) DecodeResult {
	switch len(erasures) {
	case 0:
		if xor(block) != 0 {
			// parity mismatch, but there's no telling which byte is wrong
			return DecodeResult{Detected: 1, Status: StatusUncorrectable}
		}
		return DecodeResult{}
	case 1:
		e := erasures[0]
		block[e] = 0
		block[e] = xor(block)
		return DecodeResult{Detected: 1, Corrected: 1}
	default:
		return DecodeResult{Detected: len(erasures), Status: StatusUncorrectable}
	}
}

// TODO (ddritzenhoff) this is the slow way of doing XOR, so you'll want to eventually add the faster version.
func xor(data []byte) byte {
	var x byte
	for i := 0; i < len(data); i++ {
		x ^= data[i]
	}
	return x
}
