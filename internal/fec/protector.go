package fec

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ddritzenhoff/strandfec/internal/wire"
)

// Protect returns a copy of p with its check strands filled in.
// Every diagonal group is encoded independently, at most parallelism at a time
// (no limit if parallelism <= 0).
func Protect(p *wire.Packet, s Scheme, parallelism int) (*wire.Packet, error) {
	if err := checkBlockLength(p, s); err != nil {
		return nil, err
	}
	out := p.Clone()
	l := out.Layout()

	var g errgroup.Group
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for j := 0; j < l.MessageBytesPerStrand; j++ {
		j := j
		g.Go(func() error {
			buf := wire.GetDiagonalBuffer(l.StrandsPerPacket)
			defer wire.PutDiagonalBuffer(buf)
			// diagonals don't share cells, so gather and scatter need no locking
			out.GatherDiagonal(j, *buf)
			if err := s.Encode(*buf); err != nil {
				return fmt.Errorf("diagonal %d: %w", j, err)
			}
			out.ScatterDiagonal(j, *buf)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func checkBlockLength(p *wire.Packet, s Scheme) error {
	if p.Strands() != s.BlockLength() {
		return fmt.Errorf("packet of %d strands doesn't fit an outer code block of %d bytes", p.Strands(), s.BlockLength())
	}
	return nil
}
