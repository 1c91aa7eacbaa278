package wire

// A Cursor hands out a plaintext stream in fixed-size pieces.
// It is not safe for concurrent use; packets consuming the same stream must be built in order.
type Cursor struct {
	data   []byte
	offset int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pull returns the next n bytes of the stream in a new slice.
// At the end of the stream the remaining bytes are zero-padded to n and the cursor is moved to the end.
// exhausted reports whether the stream has no bytes left after this call.
func (c *Cursor) Pull(n int) (b []byte, exhausted bool) {
	b = make([]byte, n)
	c.offset += copy(b, c.data[c.offset:])
	return b, c.Exhausted()
}

func (c *Cursor) Exhausted() bool { return c.offset == len(c.data) }
