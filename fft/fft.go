// Package fft computes spectra of real signals.
package fft

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Plan holds a gonum FFT plan for one input length.
type Plan struct {
	Input  []float64
	Output []complex128
	fft    *fourier.FFT
}

// NewPlan makes a plan for inputs of n samples.
func NewPlan(n int) *Plan {
	return &Plan{
		Input:  make([]float64, n),
		Output: make([]complex128, n/2+1),
		fft:    fourier.NewFFT(n),
	}
}

// Execute transforms Input into Output.
func (p *Plan) Execute() {
	p.fft.Coefficients(p.Output, p.Input)
}

// Amplitude is the one-sided amplitude of bin k of the last Execute. A pure
// tone of amplitude a reads a in its bin.
func (p *Plan) Amplitude(k int) float64 {
	n := float64(len(p.Input))
	a := cmplx.Abs(p.Output[k]) / n

	// DC and Nyquist have no mirror image
	if k == 0 || (len(p.Input)%2 == 0 && k == len(p.Output)-1) {
		return a
	}
	return 2 * a
}

// Freq is the centre frequency of bin k for a signal sampled at rate.
func (p *Plan) Freq(k int, rate float64) float64 {
	return p.fft.Freq(k) * rate
}

// Peak returns the non-DC bin with the largest amplitude. It returns -1 when
// there is no such bin.
func (p *Plan) Peak() int {
	peak, best := -1, 0.0
	for k := 1; k < len(p.Output); k++ {
		if a := cmplx.Abs(p.Output[k]); a > best {
			peak, best = k, a
		}
	}
	return peak
}
