package protocol

import "fmt"

// DNAConstraints are the physical sequence constraints the inner codec enforces.
// A zero value disables the corresponding constraint.
type DNAConstraints struct {
	// MaxHomopolymer is the longest allowed run of one symbol.
	MaxHomopolymer int
	// GCWindow is the width of the sliding window the GC bounds apply to.
	GCWindow int
	MaxGC    int
	MinGC    int
}

// DefaultDNAConstraints: runs of at most 4, between 4 and 8 G/C in every window of 12.
var DefaultDNAConstraints = DNAConstraints{
	MaxHomopolymer: 4,
	GCWindow:       12,
	MaxGC:          8,
	MinGC:          4,
}

func (c DNAConstraints) Validate() error {
	if c.MaxHomopolymer < 0 || c.GCWindow < 0 || c.MaxGC < 0 || c.MinGC < 0 {
		return fmt.Errorf("negative DNA constraint: %+v", c)
	}
	if c.GCWindow == 0 {
		return nil
	}
	if c.MaxGC > c.GCWindow || c.MinGC > c.MaxGC {
		return fmt.Errorf("GC bounds [%d, %d] don't fit a window of %d", c.MinGC, c.MaxGC, c.GCWindow)
	}
	return nil
}
