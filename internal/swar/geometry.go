package swar

import "github.com/flga/swargol/internal/errors"

// Geometry holds the per-strip constants derived once at worker start,
// per spec.md §3/§4.1 (component C1). All byte/bit offsets below are
// derived from (W, H, P) exactly as original_source/swargol.py derives
// them, translated from an arbitrary-precision Python integer into
// fixed-width word-array offsets (Design Notes §9).
type Geometry struct {
	W, H, P int // cells wide, rows tall, fixed even padding (>=4, divisible by 4)
	Stride  int // S = W + P

	BiasBits     int // (S+2)*4: nibble offset, in bits, where canvas row 0 begins
	ColShiftBits int // S*4: one row, in bits
	WrapShiftBits int // S*H*4: one full canvas height, in bits
	WidthBits    int // W*4: one cell-width's worth of columns, in bits

	StateBytes  int // (S*H)/2: length of one strip's persisted packed state
	HaloRowBytes int // S/2: length of one halo message (exactly one packed row)

	TopHaloByteOffset    int // byte offset where the top halo row is OR'd in (CanvasByteOffset - HaloRowBytes)
	BottomHaloByteOffset int // byte offset where the bottom halo row is OR'd in
	CanvasByteOffset     int // byte offset where canvas row 0 begins (BiasBits/8)

	CapacityBytes int // total backing byte length (word-aligned)
	NWords        int // CapacityBytes/8
}

// NewGeometry validates (W, H, P) and derives the strip constants of
// spec.md §4.1. W and P must both be even and P must be a multiple of
// 4 (the wrap masks are built from P/4-byte pieces, same as the
// source's integer-division-based byte slicing, which silently
// assumes this); P must be >= 4; W*H must be even; W and H must be
// positive.
func NewGeometry(w, h, p int) (Geometry, error) {
	switch {
	case w <= 0 || h <= 0:
		return Geometry{}, &errors.ConfigError{Msg: "width and height must be positive"}
	case w%2 != 0:
		return Geometry{}, &errors.ConfigError{Msg: "width must be even"}
	case p < 4:
		return Geometry{}, &errors.ConfigError{Msg: "padding must be at least 4"}
	case p%4 != 0:
		return Geometry{}, &errors.ConfigError{Msg: "padding must be a multiple of 4"}
	case (w*h)%2 != 0:
		return Geometry{}, &errors.ConfigError{Msg: "width*height must be even"}
	}

	s := w + p
	g := Geometry{
		W: w, H: h, P: p,
		Stride:        s,
		BiasBits:      (s + 2) * 4,
		ColShiftBits:  s * 4,
		WrapShiftBits: s * h * 4,
		WidthBits:     w * 4,
		StateBytes:    (s * h) / 2,
		HaloRowBytes:  s / 2,
	}

	g.CanvasByteOffset = g.BiasBits / 8
	// The top halo row sits immediately before canvas row 0 — one
	// halo-row-width earlier than CanvasByteOffset, matching where
	// MaskWrapLeft/MaskWrapRight are placed (masks.go): those masks
	// span "all H+2 rows" starting at byte offset 1, one row before
	// the canvas. This is always CanvasByteOffset - HaloRowBytes, not 0.
	g.TopHaloByteOffset = g.CanvasByteOffset - g.HaloRowBytes
	g.BottomHaloByteOffset = (g.WrapShiftBits + g.BiasBits) / 8

	minBytes := g.BottomHaloByteOffset + g.HaloRowBytes + s // s bytes = two extra rows of slack for shift overflow
	g.CapacityBytes = roundUp8(minBytes)
	g.NWords = g.CapacityBytes / 8

	if g.StateBytes == 0 {
		return Geometry{}, &errors.ConfigError{Msg: "geometry produces zero payload"}
	}

	return g, nil
}

func roundUp8(n int) int {
	if n%8 == 0 {
		return n
	}
	return n + (8 - n%8)
}
