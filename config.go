package edfconv

import (
	"math"

	"github.com/noriah/edfconv/dsp"
	"github.com/noriah/edfconv/dsp/window"
	"github.com/pkg/errors"
)

type Config struct {
	// The rate the recordings were sampled at (fs)
	SampleRate float64
	// The rate to decimate to (new_fs)
	TargetRate float64
	// The length of one analysis window in seconds (win)
	Window float64
	// Multiplier applied to every decimated sample (scale)
	Scale float64
	// Name of the anti-alias filter window. Empty selects window.Default
	Filter string
}

func NewZeroConfig() Config {
	return Config{
		Scale:  1,
		Filter: window.Default,
	}
}

// DownFactor is the integer decimation factor floor(fs / new_fs). Rates that
// do not divide evenly are truncated; EffectiveRate reports the result. It is
// 0 when the ratio is undefined or above dsp.MaxFactor.
func (cfg Config) DownFactor() int {
	if cfg.TargetRate <= 0 || !finite(cfg.SampleRate) || !finite(cfg.TargetRate) {
		return 0
	}

	r := math.Floor(cfg.SampleRate / cfg.TargetRate)
	if r > dsp.MaxFactor {
		return 0
	}
	return int(r)
}

// WindowSamples is the number of decimated samples per window,
// round(new_fs * win).
func (cfg Config) WindowSamples() int {
	return int(math.Round(cfg.TargetRate * cfg.Window))
}

// EffectiveRate is the rate actually produced by decimating by DownFactor.
func (cfg Config) EffectiveRate() float64 {
	d := cfg.DownFactor()
	if d < 1 {
		return 0
	}
	return cfg.SampleRate / float64(d)
}

// FilterWindow resolves the Filter name.
func (cfg Config) FilterWindow() (window.Function, error) {
	fn, ok := window.Lookup(cfg.Filter)
	if !ok {
		return nil, errors.Wrapf(dsp.ErrInvalidParameter,
			"unknown filter window %q (have %v)", cfg.Filter, window.Names())
	}
	return fn, nil
}

func (cfg Config) Validate() error {
	switch {
	case !finite(cfg.SampleRate) || cfg.SampleRate <= 0:
		return errors.Wrapf(dsp.ErrInvalidParameter, "fs must be positive, got %v", cfg.SampleRate)

	case !finite(cfg.TargetRate) || cfg.TargetRate <= 0:
		return errors.Wrapf(dsp.ErrInvalidParameter, "new_fs must be positive, got %v", cfg.TargetRate)

	case !finite(cfg.Window) || cfg.Window <= 0:
		return errors.Wrapf(dsp.ErrInvalidParameter, "win must be positive, got %v", cfg.Window)

	case !finite(cfg.Scale):
		return errors.Wrapf(dsp.ErrInvalidParameter, "scale must be finite, got %v", cfg.Scale)
	}

	if r := cfg.SampleRate / cfg.TargetRate; r >= dsp.MaxFactor+1 {
		return errors.Wrapf(dsp.ErrInvalidParameter,
			"fs %v / new_fs %v exceeds the largest down factor %d", cfg.SampleRate, cfg.TargetRate, dsp.MaxFactor)
	}

	if d := cfg.DownFactor(); d < 1 {
		return errors.Wrapf(dsp.ErrInvalidParameter,
			"down factor %d: new_fs %v exceeds fs %v", d, cfg.TargetRate, cfg.SampleRate)
	}

	if w := cfg.WindowSamples(); w < 1 {
		return errors.Wrapf(dsp.ErrInvalidParameter,
			"window of %v s at %v Hz holds no samples", cfg.Window, cfg.TargetRate)
	}

	_, err := cfg.FilterWindow()
	return err
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
