package strip

import (
	"crypto/rand"

	"github.com/flga/swargol/internal/swar"
)

// Seed returns StateBytes bytes of packed nibble-per-cell state to
// initialise a strip's canvas: cryptographic randomness in normal
// operation, or a fixed test pattern when deterministic is set, per
// spec.md §4.3's initialisation rule. Random bytes are masked down to
// valid nibble values (0 or 1) with randomizeAliveBytes rather than
// used raw, since a nibble may only ever hold 0 or 1 in persisted
// state (spec.md §3).
func Seed(g swar.Geometry, deterministic bool) []byte {
	if deterministic {
		return GliderPattern(g)
	}

	raw := make([]byte, g.StateBytes)
	if _, err := rand.Read(raw); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is
		// unavailable, which leaves the process unable to do anything
		// useful; there is no recoverable fallback at this layer.
		panic("strip: crypto/rand unavailable: " + err.Error())
	}
	return randomizeAliveBytes(raw)
}

// randomizeAliveBytes reduces each nibble of raw to 0 or 1 using its
// low bit, so the returned bytes are valid packed state per spec.md
// §3 (nibble values 2..15 must never be persisted).
func randomizeAliveBytes(raw []byte) []byte {
	out := make([]byte, len(raw))
	for i, b := range raw {
		lo := b & 0x1
		hi := (b >> 4) & 0x1
		out[i] = lo | (hi << 4)
	}
	return out
}

// GliderPattern returns a deterministic packed canvas with a single
// glider at rows 4-6, cols 3-5 (".X." / "..X" / "XXX"), matching
// spec.md §8 scenario S1. Used when a worker is started in test mode.
func GliderPattern(g swar.Geometry) []byte {
	packed := make([]byte, g.StateBytes)
	set := func(x, y int) {
		byteIdx := (y*g.Stride + x) / 2
		if x%2 == 0 {
			packed[byteIdx] |= 0x01
		} else {
			packed[byteIdx] |= 0x10
		}
	}

	cells := [][2]int{{4, 4}, {5, 5}, {3, 6}, {4, 6}, {5, 6}}
	for _, c := range cells {
		x, y := c[0], c[1]
		if x < g.W && y < g.H {
			set(x, y)
		}
	}
	return packed
}
