// Command swargol renders a strip-parallel SWAR Life/Drylife
// simulation in an SDL2 window. Grounded on the teacher's cmd/vnes
// main.go: runtime.LockOSThread in init, flag-based CLI, SIGINT/
// SIGTERM-driven context cancellation, optional CPU/memory profiling.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"

	"github.com/flga/swargol/internal/config"
	"github.com/flga/swargol/internal/pipeline"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	runtime.LockOSThread()
}

func initSDL() (func(), error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return func() {}, fmt.Errorf("initSDL: unable to init sdl: %s", err)
	}
	return sdl.Quit, nil
}

func run(cfg config.Config) error {
	quitSDL, err := initSDL()
	if err != nil {
		return err
	}
	defer quitSDL()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigchan
		cancel()
	}()

	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			return fmt.Errorf("could not create cpu profile: %s", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start cpu profile: %s", err)
		}
		defer pprof.StopCPUProfile()
	}
	if cfg.MemProfile != "" {
		f, err := os.Create(cfg.MemProfile)
		if err != nil {
			return fmt.Errorf("could not create memory profile: %s", err)
		}
		defer f.Close()
		defer func() {
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				panic("could not write memory profile: " + err.Error())
			}
		}()
	}

	return pipeline.Run(ctx, cfg)
}

func main() {
	def := config.Default()

	width := flag.Int("width", def.Width, "framebuffer width in cells (even)")
	height := flag.Int("height", def.Height, "framebuffer height in cells")
	padding := flag.Int("padding", def.Padding, "stride padding in cells (>=4, multiple of 4)")
	vsync := flag.Bool("vsync", def.Vsync, "enable vsync presentation")
	fullscreen := flag.Bool("fullscreen", def.Fullscreen, "start in fullscreen desktop mode")
	drylife := flag.Bool("drylife", def.Drylife, "use the Drylife rule instead of Life")
	frameskip := flag.Int("frameskip", def.Frameskip, "present every Nth generation")
	numProcs := flag.Int("num_procs", def.NumProcs, "number of strip workers")
	deterministic := flag.Bool("seed", def.Deterministic, "seed every strip from a fixed glider pattern instead of crypto/rand")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")

	flag.Parse()

	cfg := config.Config{
		Width:         *width,
		Height:        *height,
		Padding:       *padding,
		Vsync:         *vsync,
		Fullscreen:    *fullscreen,
		Drylife:       *drylife,
		Frameskip:     *frameskip,
		NumProcs:      *numProcs,
		Deterministic: *deterministic,
		CPUProfile:    *cpuprofile,
		MemProfile:    *memprofile,
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
