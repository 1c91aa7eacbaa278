package protocol

// OuterSchemeID selects the code applied across the diagonal groups of a packet.
type OuterSchemeID byte

// TODO (ddritzenhoff) is it better to use an enum here?
const OuterSchemeUnknown OuterSchemeID = 0

// XORScheme is a single parity strand. It needs exactly one check strand.
const XORScheme OuterSchemeID = 1

// ReedSolomonScheme is an erasure-only Reed-Solomon code. Errors outside the
// erasure positions are detected but never located.
const ReedSolomonScheme OuterSchemeID = 2

// BerlekampWelchScheme is a Reed-Solomon code decoded for errors and erasures.
const BerlekampWelchScheme OuterSchemeID = 3

func (s OuterSchemeID) String() string {
	switch s {
	case XORScheme:
		return "XOR"
	case ReedSolomonScheme:
		return "ReedSolomon"
	case BerlekampWelchScheme:
		return "BerlekampWelch"
	default:
		return "unknown"
	}
}

// ParseOuterScheme parses the names returned by String and their short aliases.
func ParseOuterScheme(s string) (OuterSchemeID, bool) {
	switch s {
	case "XOR", "xor":
		return XORScheme, true
	case "ReedSolomon", "reedsolomon", "rs":
		return ReedSolomonScheme, true
	case "BerlekampWelch", "berlekampwelch", "bw":
		return BerlekampWelchScheme, true
	default:
		return OuterSchemeUnknown, false
	}
}
