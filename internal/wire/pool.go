package wire

import (
	"sync"

	"github.com/ddritzenhoff/strandfec/internal/protocol"
)

var pool sync.Pool

func init() {
	pool.New = func() interface{} {
		b := make([]byte, protocol.MaxStrandsPerPacket)
		return &b
	}
}

// GetDiagonalBuffer returns a buffer for one diagonal group of n strands.
func GetDiagonalBuffer(n int) *[]byte {
	b := pool.Get().(*[]byte)
	*b = (*b)[:n]
	return b
}

// PutDiagonalBuffer returns a buffer obtained from GetDiagonalBuffer.
func PutDiagonalBuffer(b *[]byte) {
	if cap(*b) != protocol.MaxStrandsPerPacket {
		panic("wire.PutDiagonalBuffer called with buffer of wrong size!")
	}
	pool.Put(b)
}
