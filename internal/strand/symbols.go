package strand

import "fmt"

const alphabet = "ACGT"

// filler is inserted between the message and the right primer of short strands.
var filler = []byte{0, 2, 1, 3, 0, 3, 2, 1, 2, 0, 3, 1, 3, 1, 2, 0, 2, 3, 1, 0, 3, 2, 1, 0, 1, 3}

// ParseSymbols converts a DNA string such as a primer to symbols.
func ParseSymbols(s string) ([]byte, error) {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'a':
			out[i] = 0
		case 'C', 'c':
			out[i] = 1
		case 'G', 'g':
			out[i] = 2
		case 'T', 't':
			out[i] = 3
		default:
			return nil, fmt.Errorf("invalid nucleotide %q at position %d", s[i], i)
		}
	}
	return out, nil
}

// FormatSymbols is the inverse of ParseSymbols. Values above 3 are printed as 'N'.
func FormatSymbols(symbols []byte) string {
	b := make([]byte, len(symbols))
	for i, s := range symbols {
		if s > 3 {
			b[i] = 'N'
			continue
		}
		b[i] = alphabet[s]
	}
	return string(b)
}

// appendFiller appends n filler symbols, repeating the filler sequence as often as needed.
func appendFiller(b []byte, n int) []byte {
	for n > 0 {
		k := min(n, len(filler))
		b = append(b, filler[:k]...)
		n -= k
	}
	return b
}
