package strip

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/flga/swargol/internal/halo"
	"github.com/flga/swargol/internal/swar"
)

// naiveFullStep is a cell-by-cell toroidal Life oracle over the whole
// (unsplit) canvas, used to check that K real strip workers exchanging
// halos over a real ring reproduce the same result as a single
// unsplit simulation (spec.md §8 property 3, scenario S5).
func naiveFullStep(w, h int, alive []bool) []bool {
	get := func(x, y int) bool {
		x = ((x % w) + w) % w
		y = ((y % h) + h) % h
		return alive[y*w+x]
	}

	out := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					if get(x+dx, y+dy) {
						n++
					}
				}
			}
			self := get(x, y)
			out[y*w+x] = n == 3 || (self && n == 2)
		}
	}
	return out
}

// packRows packs a row-major bool grid slice (rows [y0,y1) of a wider
// alive grid of width w) into g's nibble layout, 2 cells per byte.
func packRows(g swar.Geometry, w int, alive []bool, y0, y1 int) []byte {
	packed := make([]byte, g.StateBytes)
	for y := y0; y < y1; y++ {
		localY := y - y0
		for x := 0; x < w; x += 2 {
			lo := byte(0)
			hi := byte(0)
			if alive[y*w+x] {
				lo = 1
			}
			if x+1 < w && alive[y*w+x+1] {
				hi = 1
			}
			byteIdx := (localY*g.Stride + x) / 2
			packed[byteIdx] = lo | (hi << 4)
		}
	}
	return packed
}

// unpackRows is packRows' inverse, writing into rows [y0,y1) of a
// w-wide bool grid.
func unpackRows(g swar.Geometry, w int, packed []byte, out []bool, y0, y1 int) {
	for y := y0; y < y1; y++ {
		localY := y - y0
		for x := 0; x < w; x++ {
			byteIdx := (localY*g.Stride + x) / 2
			b := packed[byteIdx]
			var nibble byte
			if x%2 == 0 {
				nibble = b & 0xF
			} else {
				nibble = (b >> 4) & 0xF
			}
			out[y*w+x] = nibble != 0
		}
	}
}

// TestMultiStripHaloProtocol runs a real K=4 strip.Worker ring over
// internal/halo.NewRing(4), comparing the reassembled canvas after
// several ticks against a single unsplit toroidal oracle — spec.md §8
// property 3 ("halo exchange reproduces the single-canvas result")
// and scenario S5 ("K=4 ring halo exchange").
func TestMultiStripHaloProtocol(t *testing.T) {
	const w, h, p, k = 16, 16, 4, 4
	const ticks = 6

	heights := Heights(h, k)

	rnd := rand.New(rand.NewSource(7))
	alive := make([]bool, w*h)
	for i := range alive {
		alive[i] = rnd.Intn(2) == 1
	}

	oracle := make([][]bool, ticks+1)
	oracle[0] = alive
	for t := 1; t <= ticks; t++ {
		oracle[t] = naiveFullStep(w, h, oracle[t-1])
	}

	geometries := make([]swar.Geometry, k)
	y0 := 0
	rowStart := make([]int, k)
	for i, sh := range heights {
		g, err := swar.NewGeometry(w, sh, p)
		if err != nil {
			t.Fatalf("NewGeometry strip %d: %s", i, err)
		}
		geometries[i] = g
		rowStart[i] = y0
		y0 += sh
	}

	handles, err := halo.NewRing(k)
	if err != nil {
		t.Fatalf("NewRing: %s", err)
	}

	frameOuts := make([]chan []byte, k)
	workers := make([]*Worker, k)
	for i := 0; i < k; i++ {
		frameOuts[i] = make(chan []byte, ticks)
		seed := packRows(geometries[i], w, alive, rowStart[i], rowStart[i]+heights[i])
		workers[i] = &Worker{
			Index:        i,
			Geometry:     geometries[i],
			Kernel:       swar.NewKernel(geometries[i], swar.RuleLife),
			Halo:         handles[i],
			FrameOut:     frameOuts[i],
			Frameskip:    1,
			SeedOverride: seed,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make([]chan struct{}, k)
	for i := 0; i < k; i++ {
		done[i] = make(chan struct{})
		go func(i int) {
			workers[i].Run(ctx)
			close(done[i])
		}(i)
	}

	got := make([]bool, w*h)
	for tick := 1; tick <= ticks; tick++ {
		for i := 0; i < k; i++ {
			select {
			case frame := <-frameOuts[i]:
				unpackRows(geometries[i], w, frame, got, rowStart[i], rowStart[i]+heights[i])
			case <-time.After(time.Second):
				t.Fatalf("tick %d: timed out waiting for strip %d's frame", tick, i)
			}
		}

		want := oracle[tick]
		for cell := range want {
			if got[cell] != want[cell] {
				t.Fatalf("tick %d: mismatch at cell %d: got %v want %v", tick, cell, got[cell], want[cell])
			}
		}
	}

	cancel()
	for i := 0; i < k; i++ {
		select {
		case <-done[i]:
		case <-time.After(time.Second):
			t.Fatalf("strip %d did not exit after cancellation", i)
		}
	}
}

// TestShutdownIsClean checks spec.md §8 scenario S6: once the shared
// context is cancelled, every strip worker goroutine parked on its
// frame send returns promptly, with no goroutine leak.
func TestShutdownIsClean(t *testing.T) {
	const w, h, p, k = 8, 8, 4, 3

	heights := Heights(h, k)
	geometries := make([]swar.Geometry, k)
	for i, sh := range heights {
		g, err := swar.NewGeometry(w, sh, p)
		if err != nil {
			t.Fatalf("NewGeometry strip %d: %s", i, err)
		}
		geometries[i] = g
	}

	handles, err := halo.NewRing(k)
	if err != nil {
		t.Fatalf("NewRing: %s", err)
	}

	// Unbuffered FrameOut with no reader: a worker that reaches its
	// frame send blocks there until ctx.Done() fires, exercising the
	// cancellation branch of that select (internal/strip/worker.go).
	workers := make([]*Worker, k)
	for i := 0; i < k; i++ {
		workers[i] = &Worker{
			Index:         i,
			Geometry:      geometries[i],
			Kernel:        swar.NewKernel(geometries[i], swar.RuleLife),
			Halo:          handles[i],
			FrameOut:      make(chan []byte),
			Frameskip:     1,
			Deterministic: true,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make([]chan struct{}, k)
	for i := 0; i < k; i++ {
		done[i] = make(chan struct{})
		go func(i int) {
			workers[i].Run(ctx)
			close(done[i])
		}(i)
	}

	// Let every worker reach steady state (blocked on its unread
	// FrameOut send, since nothing drains it) before cancelling.
	time.Sleep(50 * time.Millisecond)
	cancel()

	for i := 0; i < k; i++ {
		select {
		case <-done[i]:
		case <-time.After(time.Second):
			t.Fatalf("strip %d did not exit within 1s of cancellation", i)
		}
	}
}
