package wire

import (
	"github.com/ddritzenhoff/strandfec/internal/protocol"
)

// A Packet is a grid of strands sharing a packet number.
// Every row is protocol.Layout.BytesPerStrand() wide: strand ID, payload, runout.
type Packet struct {
	Number protocol.PacketNumber

	layout protocol.Layout
	buf    []byte
}

// NewPacket allocates a zero-filled packet.
func NewPacket(l protocol.Layout, n protocol.PacketNumber) *Packet {
	return &Packet{
		Number: n,
		layout: l,
		buf:    make([]byte, l.StrandsPerPacket*l.BytesPerStrand()),
	}
}

func (p *Packet) Layout() protocol.Layout { return p.layout }

// Strands is the number of rows.
func (p *Packet) Strands() int { return p.layout.StrandsPerPacket }

// Row returns row i. Writes to the returned slice modify the packet.
func (p *Packet) Row(i int) []byte {
	w := p.layout.BytesPerStrand()
	return p.buf[i*w : (i+1)*w : (i+1)*w]
}

// Payload returns the payload region of row i.
func (p *Packet) Payload(i int) []byte {
	row := p.Row(i)
	return row[p.layout.StrandIDBytes : p.layout.StrandIDBytes+p.layout.MessageBytesPerStrand]
}

// Clone returns a deep copy.
func (p *Packet) Clone() *Packet {
	c := &Packet{Number: p.Number, layout: p.layout, buf: make([]byte, len(p.buf))}
	copy(c.buf, p.buf)
	return c
}

// GatherDiagonal copies diagonal group j into dst, one byte per strand.
func (p *Packet) GatherDiagonal(j int, dst []byte) {
	for i := 0; i < p.layout.StrandsPerPacket; i++ {
		dst[i] = p.Row(i)[p.diagonalCell(j, i)]
	}
}

// ScatterDiagonal writes src back to the cells of diagonal group j.
func (p *Packet) ScatterDiagonal(j int, src []byte) {
	for i := 0; i < p.layout.StrandsPerPacket; i++ {
		p.Row(i)[p.diagonalCell(j, i)] = src[i]
	}
}

func (p *Packet) diagonalCell(j, i int) int {
	return p.layout.StrandIDBytes + DiagonalColumn(j, i, p.layout.MessageBytesPerStrand)
}

// DiagonalColumn is the payload column strand i contributes to diagonal group j.
// For a fixed strand the map j -> column is a bijection on [0, messageBytes),
// so the diagonal groups partition the payload region.
func DiagonalColumn(j, i, messageBytes int) int {
	return (j + i) % messageBytes
}
