// Package pipeline wires components C1-C6 together and implements the
// lifecycle coordinator (spec.md §4.7, component C7): start order,
// cancellation, and teardown. Grounded on the teacher's cmd/vnes
// main.go/engine.go split between process wiring (main) and the
// run loop (engine) — pipeline.Run plays both roles for this domain,
// since there is only one long-running loop (the presenter's) rather
// than the teacher's multi-view engine.
package pipeline

import (
	"context"
	"fmt"

	"github.com/flga/swargol/internal/blit"
	"github.com/flga/swargol/internal/config"
	"github.com/flga/swargol/internal/cpuinfo"
	"github.com/flga/swargol/internal/halo"
	"github.com/flga/swargol/internal/present"
	"github.com/flga/swargol/internal/strip"
	"github.com/flga/swargol/internal/swar"
	"github.com/veandco/go-sdl2/sdl"
)

// Run builds the geometry, channel topology, strip workers, blitters,
// and presenter described by cfg, then drives them until ctx is
// cancelled or the presenter's window is closed. It returns the first
// fatal error encountered by any component, following spec.md §4.7's
// shutdown rule: "a ProtocolViolation from any worker or blitter is
// fatal for the whole pipeline".
func Run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Println("pipeline: host SIMD hints:", cpuinfo.Summary())

	heights := strip.Heights(cfg.Height, cfg.NumProcs)

	rule := swar.RuleLife
	if cfg.Drylife {
		rule = swar.RuleDrylife
	}

	geometries := make([]swar.Geometry, cfg.NumProcs)
	kernels := make([]swar.Kernel, cfg.NumProcs)
	for i, h := range heights {
		g, err := swar.NewGeometry(cfg.Width, h, cfg.Padding)
		if err != nil {
			return fmt.Errorf("pipeline: strip %d: %w", i, err)
		}
		geometries[i] = g
		kernels[i] = swar.NewKernel(g, rule)
	}

	haloHandles, err := halo.NewRing(cfg.NumProcs)
	if err != nil {
		return err
	}

	reverseNibbles := blit.Probe()

	frameChans := make([]chan []byte, cfg.NumProcs)
	surfaceChans := make([]chan *sdl.Surface, cfg.NumProcs)
	for i := range frameChans {
		frameChans[i] = make(chan []byte, 1)
		surfaceChans[i] = make(chan *sdl.Surface, 1)
	}

	errc := make(chan error, cfg.NumProcs*2+1)

	workers := make([]*strip.Worker, cfg.NumProcs)
	for i := range workers {
		workers[i] = &strip.Worker{
			Index:         i,
			Geometry:      geometries[i],
			Kernel:        kernels[i],
			Halo:          haloHandles[i],
			FrameOut:      frameChans[i],
			Frameskip:     cfg.Frameskip,
			Deterministic: cfg.Deterministic,
			Errc:          errc,
		}
	}

	blitters := make([]*blit.Blitter, cfg.NumProcs)
	for i := range blitters {
		blitters[i] = &blit.Blitter{
			Index:          i,
			G:              geometries[i],
			Palette:        blit.DefaultPalette,
			ReverseNibbles: reverseNibbles,
			FrameIn:        frameChans[i],
			SurfaceOut:     surfaceChans[i],
		}
	}

	pres := &present.Presenter{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Vsync:      cfg.Vsync,
		Fullscreen: cfg.Fullscreen,
		Frameskip:  cfg.Frameskip,
		Strips:     present.Layout(heights),
	}
	for i := range pres.Strips {
		pres.Strips[i].SurfaceIn = surfaceChans[i]
	}
	if err := pres.Init("swargol"); err != nil {
		return err
	}
	defer func() {
		if derr := pres.Destroy(); derr != nil {
			fmt.Println("pipeline: teardown:", derr)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start order: workers, then blitters, matching spec.md §4.7's
	// "producers before consumers" start ordering so no stage blocks
	// forever on a peer that hasn't been scheduled yet (buffered
	// channels make the ordering a liveness nicety, not a correctness
	// requirement).
	for _, w := range workers {
		go w.Run(ctx)
	}
	for _, b := range blitters {
		go func(b *blit.Blitter) {
			if err := b.Run(ctx); err != nil {
				select {
				case errc <- err:
				default:
				}
			}
		}(b)
	}

	// A fatal error from any worker or blitter stops the presenter too.
	var fatal error
	stop := func() bool {
		select {
		case <-ctx.Done():
			return true
		case fatal = <-errc:
			return true
		default:
			return false
		}
	}

	quit, runErr := pres.Run(stop)
	cancel()

	if runErr != nil {
		return runErr
	}
	if fatal != nil {
		return fatal
	}

	if !quit {
		select {
		case err := <-errc:
			return err
		default:
		}
	}

	return nil
}
