package wire

import (
	"fmt"

	"github.com/ddritzenhoff/strandfec/internal/protocol"
)

// StrandID identifies a strand: the packet it belongs to and its row in that packet.
type StrandID struct {
	Packet protocol.PacketNumber
	Index  protocol.StrandIndex
}

// Append appends the ID using idBytes bytes.
// The packet number is written big-endian into the first idBytes-1 bytes and
// is truncated to that width; the last byte is the strand index.
func (id StrandID) Append(b []byte, idBytes int) []byte {
	for k := idBytes - 2; k >= 0; k-- {
		if k >= 8 {
			b = append(b, 0)
			continue
		}
		b = append(b, byte(uint64(id.Packet)>>(8*k)))
	}
	return append(b, byte(id.Index))
}

// ParseStrandID reads a strand ID from the start of a row.
func ParseStrandID(row []byte, idBytes int) (StrandID, error) {
	if idBytes < 2 {
		return StrandID{}, fmt.Errorf("strand ID needs at least 2 bytes, got %d", idBytes)
	}
	if len(row) < idBytes {
		return StrandID{}, fmt.Errorf("row of %d bytes is too short for a %d byte strand ID", len(row), idBytes)
	}
	var n uint64
	for _, c := range row[:idBytes-1] {
		n = n<<8 | uint64(c)
	}
	return StrandID{Packet: protocol.PacketNumber(n), Index: protocol.StrandIndex(row[idBytes-1])}, nil
}
