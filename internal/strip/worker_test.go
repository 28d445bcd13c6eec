package strip

import (
	"context"
	"testing"
	"time"

	"github.com/flga/swargol/internal/halo"
	"github.com/flga/swargol/internal/swar"
)

// runWorker drives a single self-looped strip (a 1-strip ring, so the
// worker's halo neighbours are itself, exactly reproducing a single
// toroidal canvas) for n ticks worth of frames, deterministically
// seeded, and returns every frame it emits on FrameOut.
func runWorker(t *testing.T, g swar.Geometry, frameskip, wantFrames int) [][]byte {
	t.Helper()

	handles, err := halo.NewRing(1)
	if err != nil {
		t.Fatalf("NewRing: %s", err)
	}

	frameOut := make(chan []byte, wantFrames)
	w := &Worker{
		Index:         0,
		Geometry:      g,
		Kernel:        swar.NewKernel(g, swar.RuleLife),
		Halo:          handles[0],
		FrameOut:      frameOut,
		Frameskip:     frameskip,
		Deterministic: true,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	frames := make([][]byte, 0, wantFrames)
	for len(frames) < wantFrames {
		select {
		case f := <-frameOut:
			frames = append(frames, f)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for frame %d/%d", len(frames), wantFrames)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after cancellation")
	}

	return frames
}

// TestFrameskipConsistency checks property 6: with frameskip = k, the
// presented sequence equals every k-th element of the frameskip = 1
// sequence.
func TestFrameskipConsistency(t *testing.T) {
	g, err := swar.NewGeometry(32, 32, 16)
	if err != nil {
		t.Fatalf("NewGeometry: %s", err)
	}

	const k = 3
	const wantSkipped = 4

	baseline := runWorker(t, g, 1, wantSkipped*k)
	skipped := runWorker(t, g, k, wantSkipped)

	for i := 0; i < wantSkipped; i++ {
		want := baseline[(i+1)*k-1]
		got := skipped[i]
		if string(want) != string(got) {
			t.Fatalf("frame %d: frameskip=%d output does not match every %dth frame of frameskip=1 sequence", i, k, k)
		}
	}
}
