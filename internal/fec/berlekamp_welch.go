package fec

import (
	"fmt"

	"storj.io/infectious"
)

// berlekampWelchScheme is a Reed-Solomon code decoded for errors and erasures.
// Erased bytes are left out of the decode, the remaining bytes are checked and corrected.
type berlekampWelchScheme struct {
	fec *infectious.FEC
	k   int
	n   int
}

var _ Scheme = &berlekampWelchScheme{}

func newBerlekampWelchScheme(numSourceSymbols, numRepairSymbols int) (*berlekampWelchScheme, error) {
	f, err := infectious.NewFEC(numSourceSymbols, numSourceSymbols+numRepairSymbols)
	if err != nil {
		return nil, err
	}
	return &berlekampWelchScheme{
		fec: f,
		k:   numSourceSymbols,
		n:   numSourceSymbols + numRepairSymbols,
	}, nil
}

func (s *berlekampWelchScheme) BlockLength() int     { return s.n }
func (s *berlekampWelchScheme) ErasureCapacity() int { return s.n - s.k }

func (s *berlekampWelchScheme) Encode(block []byte) error {
	if len(block) != s.n {
		return fmt.Errorf("expecting a block of %d bytes. provided %d", s.n, len(block))
	}
	return s.fec.Encode(block[:s.k], func(sh infectious.Share) {
		block[sh.Number] = sh.Data[0]
	})
}

func (s *berlekampWelchScheme) Decode(block []byte, erasures []int) DecodeResult {
	erased := make([]bool, s.n)
	for _, e := range erasures {
		erased[e] = true
	}
	shares := make([]infectious.Share, 0, s.n-len(erasures))
	for i := 0; i < s.n; i++ {
		if !erased[i] {
			shares = append(shares, infectious.Share{Number: i, Data: []byte{block[i]}})
		}
	}
	if len(shares) < s.k {
		return DecodeResult{Detected: len(erasures), Status: StatusUncorrectable}
	}

	// Correct fixes the share data in place.
	if err := s.fec.Correct(shares); err != nil {
		return DecodeResult{Detected: len(erasures) + 1, Status: StatusUncorrectable}
	}
	var fixed int
	for _, sh := range shares {
		if block[sh.Number] != sh.Data[0] {
			fixed++
		}
	}

	data := make([]byte, s.n)
	if err := s.fec.Rebuild(shares, func(sh infectious.Share) {
		data[sh.Number] = sh.Data[0]
	}); err != nil {
		return DecodeResult{Detected: len(erasures) + fixed, Status: StatusUncorrectable}
	}
	if err := s.Encode(data); err != nil {
		// this should never happen, data has the block length
		return DecodeResult{Detected: len(erasures) + fixed, Status: StatusUncorrectable}
	}
	copy(block, data)
	return DecodeResult{Detected: len(erasures) + fixed, Corrected: len(erasures) + fixed}
}
