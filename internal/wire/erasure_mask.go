package wire

import "github.com/ddritzenhoff/strandfec/internal/protocol"

// An ErasureMask marks the payload bytes of a packet that were not reliably decoded.
// It covers exactly the payload region: one row per strand, one column per message byte.
type ErasureMask struct {
	rows, cols int
	cells      []bool
}

// NewErasureMask returns a mask with every byte trusted.
func NewErasureMask(l protocol.Layout) *ErasureMask {
	return &ErasureMask{
		rows:  l.StrandsPerPacket,
		cols:  l.MessageBytesPerStrand,
		cells: make([]bool, l.StrandsPerPacket*l.MessageBytesPerStrand),
	}
}

func (m *ErasureMask) Rows() int { return m.rows }
func (m *ErasureMask) Cols() int { return m.cols }

// Erased reports whether payload byte col of strand i is an erasure.
func (m *ErasureMask) Erased(i, col int) bool { return m.cells[i*m.cols+col] }

// EraseFrom marks every payload byte of strand i from col on, and trusts the bytes before it.
func (m *ErasureMask) EraseFrom(i, col int) {
	row := m.cells[i*m.cols : (i+1)*m.cols]
	for k := range row {
		row[k] = k >= col
	}
}

// Count returns the number of erasures.
func (m *ErasureMask) Count() int {
	var n int
	for _, e := range m.cells {
		if e {
			n++
		}
	}
	return n
}

// DiagonalErasures appends to dst the strand indices whose byte in diagonal group j is erased.
func (m *ErasureMask) DiagonalErasures(j int, dst []int) []int {
	for i := 0; i < m.rows; i++ {
		if m.Erased(i, DiagonalColumn(j, i, m.cols)) {
			dst = append(dst, i)
		}
	}
	return dst
}
