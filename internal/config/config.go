// Package config validates the CLI-level configuration described in
// spec.md §6, returning a typed ConfigError (see internal/errors) for
// anything that would leave a worker with zero payload to simulate.
package config

import (
	"github.com/flga/swargol/internal/errors"
)

// Config mirrors the recognised CLI options of spec.md §6.
type Config struct {
	Width      int
	Height     int
	Padding    int
	Vsync      bool
	Fullscreen bool
	Drylife    bool
	Frameskip  int
	NumProcs   int

	Deterministic bool // test-mode flag: seed from a fixed pattern instead of crypto/rand

	CPUProfile string
	MemProfile string
}

// Default returns the documented CLI defaults. Padding of 16 matches
// original_source/swargol.py's WIDTH_PADDING.
func Default() Config {
	return Config{
		Width:      1280,
		Height:     720,
		Padding:    16,
		Vsync:      true,
		Fullscreen: false,
		Drylife:    true,
		Frameskip:  1,
		NumProcs:   8,
	}
}

// Validate checks the invariants required by C1's geometry derivation
// and the worker pool shape, returning a *errors.ConfigError wrapping
// a human-readable reason.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Width%2 != 0:
		return &errors.ConfigError{Msg: "width must be a positive even number of cells"}
	case c.Height <= 0:
		return &errors.ConfigError{Msg: "height must be positive"}
	case c.Padding < 4 || c.Padding%4 != 0:
		return &errors.ConfigError{Msg: "padding must be >= 4 and a multiple of 4"}
	case c.NumProcs < 1:
		return &errors.ConfigError{Msg: "num_procs must be >= 1"}
	case c.NumProcs > c.Height:
		return &errors.ConfigError{Msg: "num_procs must not exceed height"}
	case c.Frameskip < 1:
		return &errors.ConfigError{Msg: "frameskip must be >= 1"}
	}
	return nil
}
