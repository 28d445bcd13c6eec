package strip

import (
	"context"

	"github.com/flga/swargol/internal/halo"
	"github.com/flga/swargol/internal/swar"
)

// Worker owns one strip and runs spec.md §4.3's per-tick protocol as a
// single goroutine. Design Notes §9: in the target language the
// source needed a separate OS process per strip to escape its
// runtime's global interpreter lock; Go has no such lock, so a worker
// here is simply a goroutine (the spec's own guidance: "workers
// become threads, not processes").
type Worker struct {
	Index    int
	Geometry swar.Geometry
	Kernel   swar.Kernel
	Halo     halo.Handle
	FrameOut chan<- []byte

	Frameskip     int
	Deterministic bool

	// SeedOverride, if non-nil, is used as the strip's initial packed
	// state instead of calling Seed(Geometry, Deterministic). Exists
	// for tests that need a known, externally-constructed initial
	// canvas (e.g. to check halo exchange across several strips against
	// a full-canvas reference oracle); production callers leave it nil.
	SeedOverride []byte

	// Errc, if non-nil, receives a fatal *errors.ProtocolViolation
	// before Run returns early. The coordinator selects on it to tear
	// the whole pipeline down (spec.md §7: "Fatal for the receiving
	// component; coordinator must tear down").
	Errc chan<- error
}

// Run seeds the strip, pre-sends its halo rows, then loops the
// protocol of spec.md §4.3 until ctx is done. ctx.Done() is this
// worker's view of the spec's shared "stopped" flag: write-once-set,
// monotonically observed between ticks (§5).
func (w *Worker) Run(ctx context.Context) {
	g, k := w.Geometry, w.Kernel

	seed := w.SeedOverride
	if seed == nil {
		seed = Seed(g, w.Deterministic)
	}
	state := swar.FromPacked(g, k.M, seed)

	// Initialisation: pre-send so every worker's first receive can
	// succeed without any worker needing to go first (spec.md §4.3).
	halo.Send(w.Halo.SendTop, state.TopRow(g), g.HaloRowBytes)
	halo.Send(w.Halo.SendBottom, state.BottomRow(g), g.HaloRowBytes)

	framectr := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		top, err := halo.Recv("strip.RecvTop", w.Halo.RecvTop, g.HaloRowBytes)
		if err != nil {
			w.fail(err)
			return
		}
		bottom, err := halo.Recv("strip.RecvBottom", w.Halo.RecvBottom, g.HaloRowBytes)
		if err != nil {
			w.fail(err)
			return
		}

		state = k.Step(state, top, bottom)

		halo.Send(w.Halo.SendTop, state.TopRow(g), g.HaloRowBytes)
		halo.Send(w.Halo.SendBottom, state.BottomRow(g), g.HaloRowBytes)

		framectr++
		if framectr%w.Frameskip != 0 {
			continue
		}

		select {
		case w.FrameOut <- state.Packed(g):
		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) fail(err error) {
	if w.Errc == nil {
		return
	}
	select {
	case w.Errc <- err:
	default:
	}
}
