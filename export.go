package edfconv

import (
	"github.com/noriah/edfconv/dsp"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// ExportChannel turns one raw channel into its window matrix: decimate by
// cfg.DownFactor, multiply by cfg.Scale, then cut into rows of
// cfg.WindowSamples. raw is not modified.
func ExportChannel(raw []float64, cfg Config) (*dsp.Windows, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fn, err := cfg.FilterWindow()
	if err != nil {
		return nil, err
	}

	dec, err := dsp.Decimate(raw, cfg.DownFactor(), fn)
	if err != nil {
		return nil, errors.Wrap(err, "decimate")
	}

	// dec is always a fresh slice
	floats.Scale(cfg.Scale, dec)

	return dsp.Window(dec, cfg.WindowSamples())
}
