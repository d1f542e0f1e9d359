package bgl

import (
	"fmt"
	"strings"
)

// Identifier fields in the format pack up to five characters of the
// alphabet " 0-9A-Z" into one integer, base 38, most significant
// character first. Character values: 2-11 are '0'-'9', 12-37 are
// 'A'-'Z'. Values 0 and 1 are unused and decode to nothing.
const icaoBase = 38

// DecodeIcao unpacks a compacted identifier. The caller masks and
// shifts the raw word first; the bit positions differ per field but the
// packing is the same for every 5-character identifier in the format.
func DecodeIcao(value uint32) string {
	if value == 0 {
		return ""
	}

	var digits [8]uint32
	n := 0
	for value > icaoBase-1 {
		digits[n] = value % icaoBase
		value /= icaoBase
		n++
	}
	digits[n] = value

	var sb strings.Builder
	for i := n; i >= 0; i-- {
		c := digits[i]
		switch {
		case c >= 2 && c <= 11:
			sb.WriteByte(byte('0' + c - 2))
		case c >= 12 && c <= 37:
			sb.WriteByte(byte('A' + c - 12))
		}
	}
	return sb.String()
}

// EncodeIcao packs an identifier into the compacted integer form.
// Characters outside " 0-9A-Z" make the identifier unencodable and
// return an error.
func EncodeIcao(ident string) (uint32, error) {
	var value uint32
	for i := 0; i < len(ident); i++ {
		c := ident[i]
		var d uint32
		switch {
		case c >= '0' && c <= '9':
			d = uint32(c-'0') + 2
		case c >= 'A' && c <= 'Z':
			d = uint32(c-'A') + 12
		default:
			return 0, fmt.Errorf("ident %q: unencodable character %q", ident, c)
		}
		value = value*icaoBase + d
	}
	return value, nil
}

// DecodeApproachTypeByte splits the packed approach type byte:
// approach type in bits 0-3, runway designator in bits 4-6, GPS overlay
// flag in bit 7.
func DecodeApproachTypeByte(b uint8) (ApproachType, RunwayDesignator, bool) {
	return ApproachType(b & 0xf), RunwayDesignator((b >> 4) & 0x7), b&0x80 == 0x80
}

// EncodeApproachTypeByte is the inverse of DecodeApproachTypeByte.
func EncodeApproachTypeByte(t ApproachType, d RunwayDesignator, gpsOverlay bool) uint8 {
	b := uint8(t)&0xf | (uint8(d)&0x7)<<4
	if gpsOverlay {
		b |= 0x80
	}
	return b
}

// DecodeFixWord splits a packed fix descriptor word: fix type in bits
// 0-3, compacted identifier in bits 5-31.
func DecodeFixWord(w uint32) (FixType, string) {
	return FixType(w & 0xf), DecodeIcao((w >> 5) & 0xfffffff)
}

// DecodeRegionWord splits a packed region/airport word: region code in
// bits 0-10, airport identifier in bits 11-31.
func DecodeRegionWord(w uint32) (region, airportIdent string) {
	return DecodeIcao(w & 0x7ff), DecodeIcao((w >> 11) & 0x1fffff)
}

// RunwayName formats a runway number and designator the way the source
// format names runway ends: two-digit zero-padded number plus the
// designator letter. Number 0 marks a procedure not aligned with a
// runway and yields an empty name.
func RunwayName(number int, designator RunwayDesignator) string {
	if number == 0 {
		return ""
	}
	return fmt.Sprintf("%02d%s", number, designator)
}
