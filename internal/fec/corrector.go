package fec

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ddritzenhoff/strandfec/internal/wire"
)

// CorrectionStats aggregates the decode results of all diagonal groups of a packet.
type CorrectionStats struct {
	// TotalDetected is the sum of the errors and erasures detected per diagonal.
	TotalDetected int
	// MaxDetected is the largest number detected in a single diagonal.
	MaxDetected int
	// TotalUncorrected is the sum of detected-but-uncorrected errors per diagonal.
	TotalUncorrected int
	MaxUncorrected   int
	// ErrorCodes counts the diagonals decoded with a status other than StatusOK.
	ErrorCodes int
}

func (s *CorrectionStats) add(r DecodeResult) {
	s.TotalDetected += r.Detected
	s.MaxDetected = max(s.MaxDetected, r.Detected)
	s.TotalUncorrected += r.Uncorrected()
	s.MaxUncorrected = max(s.MaxUncorrected, r.Uncorrected())
	if r.Status != StatusOK {
		s.ErrorCodes++
	}
}

// Correct decodes every diagonal group of a copy of p, using the erasures marked in mask.
// A diagonal that can't be corrected doesn't stop the others: its best guess is written back
// and the damage shows up in the returned stats.
// The only errors are mismatched dimensions.
func Correct(p *wire.Packet, mask *wire.ErasureMask, s Scheme, parallelism int) (*wire.Packet, CorrectionStats, error) {
	if err := checkBlockLength(p, s); err != nil {
		return nil, CorrectionStats{}, err
	}
	l := p.Layout()
	if mask.Rows() != l.StrandsPerPacket || mask.Cols() != l.MessageBytesPerStrand {
		return nil, CorrectionStats{}, fmt.Errorf("erasure mask is %dx%d, payload region is %dx%d",
			mask.Rows(), mask.Cols(), l.StrandsPerPacket, l.MessageBytesPerStrand)
	}
	out := p.Clone()

	results := make([]DecodeResult, l.MessageBytesPerStrand)
	var g errgroup.Group
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for j := 0; j < l.MessageBytesPerStrand; j++ {
		j := j
		g.Go(func() error {
			buf := wire.GetDiagonalBuffer(l.StrandsPerPacket)
			defer wire.PutDiagonalBuffer(buf)
			out.GatherDiagonal(j, *buf)
			results[j] = s.Decode(*buf, mask.DiagonalErasures(j, nil))
			out.ScatterDiagonal(j, *buf)
			return nil
		})
	}
	// the goroutines never fail, the group only bounds the parallelism
	_ = g.Wait()

	var stats CorrectionStats
	for _, r := range results {
		stats.add(r)
	}
	return out, stats, nil
}
