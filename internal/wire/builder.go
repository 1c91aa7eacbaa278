package wire

import (
	"github.com/ddritzenhoff/strandfec/internal/protocol"
)

// BuildPacket builds packet n from the stream behind c.
// It returns the packet, with its check strands still zero, and the plaintext it carries,
// zero-padded to l.PayloadBytesPerPacket().
// Once the stream runs out the remaining message strands carry no plaintext.
func BuildPacket(l protocol.Layout, n protocol.PacketNumber, c *Cursor) (*Packet, []byte) {
	p := NewPacket(l, n)
	plaintext := make([]byte, l.PayloadBytesPerPacket())
	mess := l.MessageBytesPerStrand

	var eof bool
	for i := 0; i < l.StrandsPerPacket; i++ {
		row := p.Row(i)
		StrandID{Packet: n, Index: protocol.StrandIndex(i)}.Append(row[:0], l.StrandIDBytes)
		if i >= l.MessageStrands() || eof {
			continue
		}
		text, exhausted := c.Pull(mess)
		copy(p.Payload(i), text)
		copy(plaintext[i*mess:], text)
		eof = exhausted
	}
	return p, plaintext
}

// ExtractPlaintext reassembles the plaintext carried by the message strands of p.
func ExtractPlaintext(p *Packet) []byte {
	l := p.Layout()
	plaintext := make([]byte, l.PayloadBytesPerPacket())
	for i := 0; i < l.MessageStrands(); i++ {
		copy(plaintext[i*l.MessageBytesPerStrand:], p.Payload(i))
	}
	return plaintext
}

// CountBadBytes counts the positions at which got differs from want.
// Bytes present in only one of the two slices count as bad.
func CountBadBytes(want, got []byte) int {
	n := len(want)
	if len(got) > n {
		n = len(got)
	}
	var bad int
	for k := 0; k < n; k++ {
		if k >= len(want) || k >= len(got) || want[k] != got[k] {
			bad++
		}
	}
	return bad
}
