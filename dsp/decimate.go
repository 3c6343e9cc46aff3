// Package dsp implements the numeric stages of channel conversion: anti-alias
// decimation and fixed-width windowing.
package dsp

import (
	"math"

	"github.com/noriah/edfconv/dsp/window"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidParameter is returned for non-positive factors, sizes or empty input.
var ErrInvalidParameter = errors.New("invalid parameter")

const (
	// TapsPerFactor sets the low-pass length to TapsPerFactor*factor+1 taps.
	TapsPerFactor = 20
	// CutoffRatio is the low-pass cutoff as a fraction of the decimated Nyquist.
	CutoffRatio = 0.8
	// MaxFactor is the largest decimation factor accepted.
	MaxFactor = 1 << 20
)

// DecimatedLen is the number of samples Decimate returns for n input samples.
// Output sample i sits at input sample i*factor.
func DecimatedLen(n, factor int) int {
	if n <= 0 || factor < 1 {
		return 0
	}
	return (n + factor - 1) / factor
}

// Lowpass builds a windowed-sinc low-pass filter for decimation by factor.
// The taps are symmetric, odd in number and sum to one.
func Lowpass(factor int, fn window.Function) ([]float64, error) {
	if err := checkFactor(factor); err != nil {
		return nil, err
	}
	return lowpass(factor, TapsPerFactor*factor/2, fn), nil
}

func checkFactor(factor int) error {
	if factor < 1 || factor > MaxFactor {
		return errors.Wrapf(ErrInvalidParameter, "decimation factor %d (1 to %d)", factor, MaxFactor)
	}
	return nil
}

// lowpass builds the filter with 2*half+1 taps.
func lowpass(factor, half int, fn window.Function) []float64 {
	if fn == nil {
		fn = window.Hamming
	}

	taps := make([]float64, 2*half+1)

	// cutoff in cycles per input sample
	fc := CutoffRatio * 0.5 / float64(factor)

	for i := range taps {
		x := float64(i - half)
		if x == 0 {
			taps[i] = 2 * fc
			continue
		}
		taps[i] = math.Sin(2*math.Pi*fc*x) / (math.Pi * x)
	}

	fn(taps)

	floats.Scale(1/floats.Sum(taps), taps)

	return taps
}

// Decimate low-pass filters raw and keeps every factor-th sample.
//
// The filter is applied centred on each kept sample, so there is no phase
// shift: output i lines up with raw[i*factor]. Samples past either end are
// taken from the point reflection of the signal about that end. raw is not
// modified. A factor of 1 returns a copy of raw. The filter reaches at most
// len(raw) samples to either side of the kept sample.
func Decimate(raw []float64, factor int, fn window.Function) ([]float64, error) {
	if err := checkFactor(factor); err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "empty signal")
	}

	out := make([]float64, DecimatedLen(len(raw), factor))

	if factor == 1 {
		copy(out, raw)
		return out, nil
	}

	taps := lowpass(factor, min(TapsPerFactor*factor/2, len(raw)), fn)

	half := len(taps) / 2
	last := len(raw) - 1

	for i := range out {
		center := i * factor
		lo, hi := center-half, center+half

		if lo >= 0 && hi <= last {
			out[i] = floats.Dot(taps, raw[lo:hi+1])
			continue
		}

		var acc float64
		for k, tap := range taps {
			acc += tap * reflect(raw, lo+k)
		}
		out[i] = acc
	}

	return out, nil
}

// reflect returns x[idx], extending x by point reflection about its ends.
func reflect(x []float64, idx int) float64 {
	last := len(x) - 1

	switch {
	case idx < 0:
		j := -idx
		if j > last {
			j = last
		}
		return 2*x[0] - x[j]

	case idx > last:
		j := 2*last - idx
		if j < 0 {
			j = 0
		}
		return 2*x[last] - x[j]
	}

	return x[idx]
}
