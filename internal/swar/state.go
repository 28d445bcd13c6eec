package swar

// State is one strip's working state: a single wide unsigned value
// held as a little-endian array of 64-bit words, per spec.md §3's
// "Working state" entity.
type State []uint64

// NewState returns a zeroed working state sized for g.
func NewState(g Geometry) State {
	return State(newWords(g.NWords))
}

// FromPacked builds a working state from a persisted packed canvas
// (spec.md §3's "Packed state": (S*H)/2 bytes, canvas row-major, low
// nibble first), placing it at the canvas byte offset and masking it
// to MaskCanvas so any out-of-range input bits can never leak in.
func FromPacked(g Geometry, m Masks, packed []byte) State {
	buf := make([]byte, g.CapacityBytes)
	copy(buf[g.CanvasByteOffset:g.CanvasByteOffset+g.StateBytes], packed)
	words := bytesToWords(buf, g.NWords)
	return State(andWords(words, m.MaskCanvas))
}

// Packed extracts the persisted packed canvas from a working state.
func (s State) Packed(g Geometry) []byte {
	buf := wordsToBytes(s, g.CapacityBytes)
	return buf[g.CanvasByteOffset : g.CanvasByteOffset+g.StateBytes]
}

// TopRow returns the packed bytes of canvas row 0, exactly
// Geometry.HaloRowBytes long — the message sent on halo_up per
// spec.md §4.3 step 1/4.
func (s State) TopRow(g Geometry) []byte {
	packed := s.Packed(g)
	row := make([]byte, g.HaloRowBytes)
	copy(row, packed[:g.HaloRowBytes])
	return row
}

// BottomRow returns the packed bytes of canvas row H-1, the message
// sent on halo_down.
func (s State) BottomRow(g Geometry) []byte {
	packed := s.Packed(g)
	row := make([]byte, g.HaloRowBytes)
	copy(row, packed[len(packed)-g.HaloRowBytes:])
	return row
}

// WithHalos returns a new state with the top and bottom halo rows
// OR'd in at their fixed byte offsets (spec.md §4.2 step 1, first
// half). Each row must be exactly Geometry.HaloRowBytes long.
func (s State) WithHalos(g Geometry, top, bottom []byte) State {
	buf := make([]byte, g.CapacityBytes)
	copy(buf[g.TopHaloByteOffset:g.TopHaloByteOffset+g.HaloRowBytes], top)
	copy(buf[g.BottomHaloByteOffset:g.BottomHaloByteOffset+g.HaloRowBytes], bottom)
	overlay := bytesToWords(buf, g.NWords)
	return State(orWords(s, overlay))
}
