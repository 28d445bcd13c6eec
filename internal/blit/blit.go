// Package blit implements the blitter stage (spec.md §4.5, component
// C5): one goroutine per strip that unpacks a nibble-per-cell frame
// into a streaming 32-bpp RGBA surface for the presenter, grounded
// directly on original_source/swargol.py's blit_thread (itself a thin
// wrapper over the same SDL2 indexed-surface-to-RGBA conversion the
// teacher's internal/gui.Renderer performs for its own textures, just
// starting from an indexed surface instead of an already-RGBA one).
package blit

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/flga/swargol/internal/errors"
	"github.com/flga/swargol/internal/swar"
	"github.com/veandco/go-sdl2/sdl"
)

// Palette is the 2-entry indexed palette applied to every frame
// before conversion: index 0 -> off colour, index 1 -> on colour.
type Palette [2]sdl.Color

var DefaultPalette = Palette{
	{R: 0, G: 0, B: 0, A: 255},
	{R: 255, G: 255, B: 255, A: 255},
}

// Blitter owns one strip's conversion pipeline: packed frame in,
// converted *sdl.Surface out. It must run on a goroutine exempt from
// no special thread affinity requirement — unlike the presenter, SDL
// surface conversion does not touch the window/renderer, so any
// goroutine may run it (spec.md §5: "blitters are cancelled
// cooperatively").
type Blitter struct {
	Index    int
	G        swar.Geometry
	Palette  Palette
	// ReverseNibbles requests MSB-ordered indexed surfaces from SDL
	// instead of LSB, working around the nibble-order bug documented
	// in spec.md §4.5. When true, the corresponding strip worker must
	// reverse its packed byte order before sending a frame — Probe
	// below selects this once at start, not per frame.
	ReverseNibbles bool

	FrameIn    <-chan []byte
	SurfaceOut chan<- *sdl.Surface
}

// Probe resolves the nibble-order workaround once at startup by
// inspecting the linked SDL2 version, per Design Notes §9's preferred
// resolution of the compile-time-flag open question ("a cleaner
// design queries the library at start and configures itself").
// SDL2 versions before 2.0.16 are known to treat INDEX4LSB surfaces
// as MSB-ordered; 2.0.16 and later behave correctly.
func Probe() bool {
	v := sdl.Version{}
	sdl.GetVersion(&v)
	if v.Major > 2 {
		return false
	}
	if v.Major == 2 && v.Minor > 0 {
		return false
	}
	return v.Major == 2 && v.Minor == 0 && v.Patch < 16
}

func (b *Blitter) indexedFormat() uint32 {
	if b.ReverseNibbles {
		return sdl.PIXELFORMAT_INDEX4MSB
	}
	return sdl.PIXELFORMAT_INDEX4LSB
}

// Run reads packed frames from FrameIn and pushes converted surfaces
// to SurfaceOut until ctx is cancelled. On cancellation it performs
// one final (non-blocking) read from FrameIn so a worker parked on
// its frame send can make progress during shutdown (spec.md §4.7 step
// 3), even though in this port workers already watch ctx themselves
// on that same send (see internal/strip.Worker.Run) — this is
// deliberate belt-and-suspenders matching the spec's documented
// shutdown choreography rather than a strict necessity.
func (b *Blitter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			select {
			case <-b.FrameIn:
			default:
			}
			return nil
		case packed, ok := <-b.FrameIn:
			if !ok {
				return nil
			}
			if len(packed) != b.G.StateBytes {
				return &errors.ProtocolViolation{Component: "blit", Want: b.G.StateBytes, Got: len(packed)}
			}

			surf, err := b.convert(packed)
			if err != nil {
				return err
			}

			select {
			case b.SurfaceOut <- surf:
			case <-ctx.Done():
				surf.Free()
				return nil
			}
		}
	}
}

// convert wraps packed as an indexed surface, palettizes it, and
// converts it to ARGB8888, exactly spec.md §4.5's contract.
func (b *Blitter) convert(packed []byte) (*sdl.Surface, error) {
	pitch := b.G.Stride / 2

	indexed, err := sdl.CreateRGBSurfaceWithFormatFrom(
		unsafe.Pointer(&packed[0]),
		int32(b.G.W), int32(b.G.H),
		4,
		int32(pitch),
		b.indexedFormat(),
	)
	if err != nil {
		return nil, &errors.PlatformError{Op: "CreateRGBSurfaceWithFormatFrom", Err: err}
	}
	defer indexed.Free()

	if err := indexed.Format.Palette.SetColors(b.Palette[:], 0); err != nil {
		return nil, &errors.PlatformError{Op: "Palette.SetColors", Err: err}
	}

	dstFormat, err := sdl.AllocFormat(uint(sdl.PIXELFORMAT_ARGB8888))
	if err != nil {
		return nil, &errors.PlatformError{Op: "AllocFormat", Err: err}
	}
	defer dstFormat.Free()

	converted, err := indexed.Convert(dstFormat, 0)
	if err != nil {
		return nil, &errors.PlatformError{Op: "Surface.Convert", Err: err}
	}

	return converted, nil
}

func (p Palette) String() string {
	return fmt.Sprintf("off=%v on=%v", p[0], p[1])
}
