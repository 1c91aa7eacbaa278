package fec

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// reedSolomonScheme treats every byte of a block as a shard of its own.
// It only decodes erasures: an error at a trusted position is detected by Verify, but not corrected.
type reedSolomonScheme struct {
	enc reedsolomon.Encoder
	k   int
	m   int
}

var _ Scheme = &reedSolomonScheme{}

func newReedSolomonScheme(numSourceShards, numParityShards int) (*reedSolomonScheme, error) {
	enc, err := reedsolomon.New(numSourceShards, numParityShards)
	if err != nil {
		return nil, err
	}
	return &reedSolomonScheme{
		enc: enc,
		k:   numSourceShards,
		m:   numParityShards,
	}, nil
}

func (s *reedSolomonScheme) BlockLength() int     { return s.k + s.m }
func (s *reedSolomonScheme) ErasureCapacity() int { return s.m }

// shards returns 1-byte shards aliasing block.
func (s *reedSolomonScheme) shards(block []byte) [][]byte {
	shards := make([][]byte, s.k+s.m)
	for i := range shards {
		shards[i] = block[i : i+1 : i+1]
	}
	return shards
}

func (s *reedSolomonScheme) Encode(block []byte) error {
	if len(block) != s.k+s.m {
		return fmt.Errorf("expecting a block of %d bytes. provided %d", s.k+s.m, len(block))
	}
	if err := s.enc.Encode(s.shards(block)); err != nil {
		return fmt.Errorf("unable to make parity shards: %w", err)
	}
	return nil
}

func (s *reedSolomonScheme) Decode(block []byte, erasures []int) DecodeResult {
	if len(erasures) > s.m {
		return DecodeResult{Detected: len(erasures), Status: StatusUncorrectable}
	}
	shards := s.shards(block)
	for _, e := range erasures {
		shards[e] = nil
	}
	if err := s.enc.Reconstruct(shards); err != nil {
		return DecodeResult{Detected: len(erasures), Status: StatusUncorrectable}
	}
	for _, e := range erasures {
		block[e] = shards[e][0]
	}
	// Redundancy left over after the erasures is used to check the trusted bytes.
	if ok, err := s.enc.Verify(shards); err != nil || !ok {
		return DecodeResult{Detected: len(erasures) + 1, Corrected: len(erasures), Status: StatusUncorrectable}
	}
	return DecodeResult{Detected: len(erasures), Corrected: len(erasures)}
}
