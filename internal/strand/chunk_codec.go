package strand

import (
	"errors"
	"fmt"
	"hash/crc32"
	"sync/atomic"

	"github.com/ddritzenhoff/strandfec/internal/protocol"
)

var (
	// ErrNotConfigured is returned when a codec is used before it was configured.
	ErrNotConfigured = errors.New("inner codec used before Configure")
	// ErrReconfigure is returned when a configured codec is configured differently.
	ErrReconfigure = errors.New("inner codec is already configured")
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CodecParams is the process-wide configuration of the inner codec.
type CodecParams struct {
	LeftPrimer  string
	RightPrimer string
	CodeRate    protocol.CodeRate
	Constraints protocol.DNAConstraints
	// ChunkBytes is the number of bytes covered by one check byte. Defaults to 4.
	ChunkBytes int
}

type chunkConfig struct {
	params CodecParams
	left   []byte
	right  []byte
}

// ChunkCodec is a simple inner codec: two bits per symbol between the primers,
// with a check byte after every chunk so that damage is noticed at chunk granularity.
// It records the DNA constraints but doesn't shape its output to them.
//
// A ChunkCodec must be configured exactly once before use.
type ChunkCodec struct {
	cfg atomic.Pointer[chunkConfig]
}

var _ InnerCodec = &ChunkCodec{}

// Configure sets the codec parameters.
// Configuring again with identical parameters is a no-op, anything else fails with ErrReconfigure.
func (c *ChunkCodec) Configure(p CodecParams) error {
	if p.ChunkBytes == 0 {
		p.ChunkBytes = 4
	}
	if p.ChunkBytes < 0 {
		return fmt.Errorf("invalid chunk size %d", p.ChunkBytes)
	}
	if !p.CodeRate.Valid() {
		return fmt.Errorf("invalid code rate %d", int(p.CodeRate))
	}
	if err := p.Constraints.Validate(); err != nil {
		return err
	}
	left, err := ParseSymbols(p.LeftPrimer)
	if err != nil {
		return fmt.Errorf("left primer: %w", err)
	}
	right, err := ParseSymbols(p.RightPrimer)
	if err != nil {
		return fmt.Errorf("right primer: %w", err)
	}
	if c.cfg.CompareAndSwap(nil, &chunkConfig{params: p, left: left, right: right}) {
		return nil
	}
	if c.cfg.Load().params != p {
		return ErrReconfigure
	}
	return nil
}

// EncodedLength is the number of symbols Encode produces for a row of n bytes.
func (c *ChunkCodec) EncodedLength(n int) (int, error) {
	cfg := c.cfg.Load()
	if cfg == nil {
		return 0, ErrNotConfigured
	}
	chunks := (n + cfg.params.ChunkBytes - 1) / cfg.params.ChunkBytes
	return len(cfg.left) + 4*(n+chunks) + len(cfg.right), nil
}

func (c *ChunkCodec) Encode(row []byte) ([]byte, error) {
	cfg := c.cfg.Load()
	if cfg == nil {
		return nil, ErrNotConfigured
	}
	n, _ := c.EncodedLength(len(row))
	out := make([]byte, 0, n)
	out = append(out, cfg.left...)
	for off := 0; off < len(row); off += cfg.params.ChunkBytes {
		chunk := row[off:min(off+cfg.params.ChunkBytes, len(row))]
		for _, b := range chunk {
			out = appendByte(out, b)
		}
		out = appendByte(out, checkByte(chunk))
	}
	return append(out, cfg.right...), nil
}

func (c *ChunkCodec) Decode(symbols []byte, expectedBits int) (int, []byte) {
	cfg := c.cfg.Load()
	if cfg == nil {
		return StatusNotConfigured, nil
	}
	if len(symbols) < len(cfg.left) || mismatches(symbols[:len(cfg.left)], cfg.left) > len(cfg.left)/4 {
		return StatusNoPrimer, nil
	}
	body := symbols[len(cfg.left):]
	expected := expectedBits / 8
	data := make([]byte, 0, expected)
	for len(data) < expected {
		size := min(cfg.params.ChunkBytes, expected-len(data))
		if len(body) < 4*(size+1) {
			return StatusTruncated, data
		}
		chunk := make([]byte, size+1)
		for k := range chunk {
			b, ok := readByte(body[4*k : 4*k+4])
			if !ok {
				return StatusChecksum, data
			}
			chunk[k] = b
		}
		if checkByte(chunk[:size]) != chunk[size] {
			return StatusChecksum, data
		}
		data = append(data, chunk[:size]...)
		body = body[4*(size+1):]
	}
	return StatusOK, data
}

func checkByte(chunk []byte) byte {
	return byte(crc32.Checksum(chunk, castagnoli))
}

// appendByte appends the four symbols of b, most significant bits first.
func appendByte(out []byte, b byte) []byte {
	return append(out, b>>6, (b>>4)&3, (b>>2)&3, b&3)
}

func readByte(s []byte) (byte, bool) {
	var b byte
	for _, v := range s {
		if v > 3 {
			return 0, false
		}
		b = b<<2 | v
	}
	return b, true
}

func mismatches(a, b []byte) int {
	var n int
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}
