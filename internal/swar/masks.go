package swar

import "bytes"

// Masks holds the per-strip comparator and wrap masks of spec.md §3,
// each the width of Geometry.NWords words. They are derived once at
// worker start and never mutated afterward.
type Masks struct {
	Mask1       []uint64
	MaskCanvas  []uint64
	MaskWrapLeft  []uint64
	MaskWrapRight []uint64
	MaskNot3 []uint64
	MaskNot4 []uint64
	MaskNot6 []uint64
}

// BuildMasks derives g's Masks, translating the byte-pattern
// construction of original_source/swargol.py's MASK_1/MASK_CANVAS/
// MASK_WRAP_LEFT/MASK_WRAP_RIGHT one for one: each mask is a repeating
// nibble pattern placed at a fixed byte offset within a zeroed buffer
// of Geometry.CapacityBytes, then packed into words.
func BuildMasks(g Geometry) Masks {
	mask1 := placeAt(g, g.CanvasByteOffset, bytes.Repeat([]byte{0x11}, g.StateBytes))

	canvasRow := append(bytes.Repeat([]byte{0x11}, g.W/2), bytes.Repeat([]byte{0x00}, g.P/2)...)
	maskCanvas := placeAt(g, g.CanvasByteOffset, bytes.Repeat(canvasRow, g.H))

	leftRow := concatBytes(
		bytes.Repeat([]byte{0x11}, (g.P/2)/2),
		bytes.Repeat([]byte{0x00}, (g.W-g.P/2)/2),
		bytes.Repeat([]byte{0x00}, g.P/2),
	)
	maskWrapLeft := placeAt(g, 1, bytes.Repeat(leftRow, g.H+2))

	rightRow := concatBytes(
		bytes.Repeat([]byte{0x00}, (g.W-g.P/2)/2),
		bytes.Repeat([]byte{0x11}, (g.P/2)/2),
		bytes.Repeat([]byte{0x00}, g.P/2),
	)
	maskWrapRight := placeAt(g, 1, bytes.Repeat(rightRow, g.H+2))

	mask1Words := bytesToWords(mask1, g.NWords)

	return Masks{
		Mask1:         mask1Words,
		MaskCanvas:    bytesToWords(maskCanvas, g.NWords),
		MaskWrapLeft:  bytesToWords(maskWrapLeft, g.NWords),
		MaskWrapRight: bytesToWords(maskWrapRight, g.NWords),
		MaskNot3:      scaleNibbles(mask1Words, 15^3),
		MaskNot4:      scaleNibbles(mask1Words, 15^4),
		MaskNot6:      scaleNibbles(mask1Words, 15^6),
	}
}

func placeAt(g Geometry, byteOffset int, pattern []byte) []byte {
	buf := make([]byte, g.CapacityBytes)
	copy(buf[byteOffset:byteOffset+len(pattern)], pattern)
	return buf
}

func concatBytes(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// scaleNibbles multiplies every nibble of a MASK_1-shaped word array
// (each set nibble holding bit value 1) by a 4-bit factor, i.e. it
// realises the source's "MASK_1 * (15 ^ n)" comparator constants:
// every live nibble becomes the factor's value instead of 1.
func scaleNibbles(mask1 []uint64, factor byte) []uint64 {
	out := make([]uint64, len(mask1))
	for i, w := range mask1 {
		var r uint64
		for nibble := 0; nibble < 16; nibble++ {
			bit := (w >> uint(nibble*4)) & 0xF
			if bit != 0 {
				r |= uint64(factor) << uint(nibble*4)
			}
		}
		out[i] = r
	}
	return out
}
