// Package present implements the presenter (spec.md §4.6, component
// C6): the single goroutine that owns the SDL window, renderer, and
// per-strip textures, polls input, and composites each strip's latest
// surface into one frame. Grounded on the teacher's
// cmd/internal/gui.View/Renderer pair and cmd/vnes's engine poll/
// update/render/paint loop, collapsed here into one window with one
// texture per strip instead of the teacher's multi-view layout.
package present

import (
	"fmt"
	"time"

	"github.com/flga/swargol/internal/errors"
	"github.com/flga/swargol/internal/meter"
	"github.com/veandco/go-sdl2/sdl"
)

// Strip is one strip's presenter-facing state: where its texture sits
// in the window and where its next surface arrives from.
type Strip struct {
	Y         int32
	Height    int32
	SurfaceIn <-chan *sdl.Surface
	texture   *sdl.Texture
}

// Presenter owns the window/renderer and the FPS/TPS title reporting
// the original source drives via pygame.display.set_caption; this
// port uses sdl.Window.SetTitle (spec.md §6 "progress is observable
// via FPS in the window title").
type Presenter struct {
	Width, Height int
	Vsync         bool
	Fullscreen    bool
	Frameskip     int

	Strips []Strip

	window   *sdl.Window
	renderer *sdl.Renderer

	fps *meter.Meter
}

// Init creates the window, renderer, and one streaming texture per
// strip, after the teacher's newRenderer (a TEXTUREACCESS_STREAMING
// texture; here PIXELFORMAT_ARGB8888, the format the blitters convert to).
func (p *Presenter) Init(title string) error {
	windowFlags := uint32(sdl.WINDOW_SHOWN)
	if p.Fullscreen {
		windowFlags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	window, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(p.Width), int32(p.Height),
		windowFlags,
	)
	if err != nil {
		return &errors.PlatformError{Op: "CreateWindow", Err: err}
	}
	p.window = window

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if p.Vsync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}

	renderer, err := sdl.CreateRenderer(window, -1, rendererFlags)
	if err != nil {
		return &errors.PlatformError{Op: "CreateRenderer", Err: err}
	}
	p.renderer = renderer

	for i := range p.Strips {
		tex, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, int32(p.Width), p.Strips[i].Height)
		if err != nil {
			return &errors.PlatformError{Op: "CreateTexture", Err: err}
		}
		p.Strips[i].texture = tex
	}

	p.fps = meter.New(30)

	return nil
}

// Destroy releases every SDL resource the presenter created, matching
// the teacher's View.Destroy/errors.List drain-everything pattern.
func (p *Presenter) Destroy() error {
	var ee errors.List
	for i := range p.Strips {
		if p.Strips[i].texture != nil {
			ee = ee.Add(p.Strips[i].texture.Destroy())
		}
	}
	if p.renderer != nil {
		ee = ee.Add(p.renderer.Destroy())
	}
	if p.window != nil {
		ee = ee.Add(p.window.Destroy())
	}
	return ee.Err()
}

// Run polls events and composites frames until stop returns true or
// a quit event arrives, mirroring spec.md §4.6's "poll, drain one
// surface per strip if available, composite, present" cadence. A quit
// event or the Escape key is reported as quit=true; stop returning
// true is reported as quit=false. The caller (internal/pipeline)
// decides whether that's a normal shutdown trigger or an error.
func (p *Presenter) Run(stop func() bool) (quit bool, err error) {
	start := time.Now()
	for {
		if stop() {
			return false, nil
		}

		for evt := sdl.PollEvent(); evt != nil; evt = sdl.PollEvent() {
			if _, ok := evt.(*sdl.QuitEvent); ok {
				return true, nil
			}
			if ke, ok := evt.(*sdl.KeyboardEvent); ok {
				if ke.Type == sdl.KEYDOWN && ke.Keysym.Sym == sdl.K_ESCAPE {
					return true, nil
				}
			}
		}

		if err := p.composite(); err != nil {
			return false, err
		}

		p.renderer.Present()

		p.fps.Record(time.Since(start))
		start = time.Now()

		if err := p.window.SetTitle(p.title()); err != nil {
			return false, &errors.PlatformError{Op: "Window.SetTitle", Err: err}
		}
	}
}

func (p *Presenter) title() string {
	return fmt.Sprintf("swargol — %d fps / %d tps", p.fps.Fps(), p.fps.Tps(p.Frameskip))
}

// composite drains at most one pending surface per strip (a strip
// that hasn't produced a new frame keeps showing its last texture
// contents, exactly like the teacher's "skip views that aren't ready"
// render loop) and copies every strip's texture into the window.
func (p *Presenter) composite() error {
	for i := range p.Strips {
		s := &p.Strips[i]

		select {
		case surf, ok := <-s.SurfaceIn:
			if !ok {
				continue
			}
			if err := s.update(surf); err != nil {
				return err
			}
		default:
		}

		dst := &sdl.Rect{X: 0, Y: s.Y, W: int32(p.Width), H: s.Height}
		if err := p.renderer.Copy(s.texture, nil, dst); err != nil {
			return &errors.PlatformError{Op: "Renderer.Copy", Err: err}
		}
	}
	return nil
}

func (s *Strip) update(surf *sdl.Surface) error {
	defer surf.Free()

	pixels, pitch, err := s.texture.Lock(nil)
	if err != nil {
		return &errors.PlatformError{Op: "Texture.Lock", Err: err}
	}
	defer s.texture.Unlock()

	src := surf.Pixels()
	srcPitch := int(surf.Pitch)
	rowBytes := int(surf.W) * 4
	for row := 0; row < int(surf.H); row++ {
		copy(pixels[row*pitch:row*pitch+rowBytes], src[row*srcPitch:row*srcPitch+rowBytes])
	}

	return nil
}

// Layout builds the per-strip Y offsets for a set of heights computed
// by internal/strip.Heights, stacking strips top to bottom.
func Layout(heights []int) []Strip {
	strips := make([]Strip, len(heights))
	y := int32(0)
	for i, h := range heights {
		strips[i] = Strip{Y: y, Height: int32(h)}
		y += int32(h)
	}
	return strips
}
