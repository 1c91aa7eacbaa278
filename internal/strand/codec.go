package strand

// Status codes reported by InnerCodec.Decode.
const (
	StatusOK = iota
	// StatusTruncated means the strand ended before the expected number of bits was decoded.
	StatusTruncated
	// StatusChecksum means a chunk failed its check, decoding stopped before it.
	StatusChecksum
	// StatusNoPrimer means the left primer wasn't found, nothing was decoded.
	StatusNoPrimer
	// StatusNotConfigured means the codec was used before Configure.
	StatusNotConfigured
)

// InnerCodec converts the bytes of a single strand to and from symbols.
// Symbols are 0..3, standing for A, C, G and T.
// Implementations must be safe for concurrent use once configured.
type InnerCodec interface {
	// Encode returns the symbol sequence for a row, primers included.
	Encode(row []byte) ([]byte, error)
	// Decode reads up to expectedBits bits back from a symbol sequence.
	// A status other than StatusOK means data may be shorter than expected;
	// whatever prefix is returned is still considered decoded correctly.
	Decode(symbols []byte, expectedBits int) (status int, data []byte)
}
