// Package window provides symmetric window functions for FIR filter design.
//
// See https://wikipedia.org/wiki/Window_function
package window

import (
	"math"
	"sort"
	"strings"
)

// Function scales buf in place by the window of the same length.
type Function func(buf []float64)

// Default is the window used when none is configured.
const Default = "hamming"

var functions = map[string]Function{
	"rectangle": Rectangle,
	"hamming":   Hamming,
	"hann":      Hann,
	"blackman":  Blackman,
}

// Lookup returns the window registered under name. An empty name is Default.
func Lookup(name string) (Function, bool) {
	if name == "" {
		name = Default
	}

	fn, ok := functions[strings.ToLower(name)]
	return fn, ok
}

// Names returns the registered window names, sorted.
func Names() []string {
	out := make([]string, 0, len(functions))
	for name := range functions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Rectangle is just do nothing
func Rectangle(buf []float64) {}

// CosSum applies a symmetric two-term cosine sum window following a0.
func CosSum(buf []float64, a0 float64) {
	size := len(buf)
	if size < 2 {
		return
	}

	a1 := 1.0 - a0
	coef := 2.0 * math.Pi / float64(size-1)
	for n := range buf {
		buf[n] *= a0 - a1*math.Cos(coef*float64(n))
	}
}

// Hamming applies a Hamming window (a0 = 0.54).
func Hamming(buf []float64) {
	CosSum(buf, 0.54)
}

// Hann applies a Hann window
func Hann(buf []float64) {
	CosSum(buf, 0.5)
}

// Blackman applies the classic three-term Blackman window.
func Blackman(buf []float64) {
	size := len(buf)
	if size < 2 {
		return
	}

	coef := 2.0 * math.Pi / float64(size-1)
	for n := range buf {
		x := coef * float64(n)
		buf[n] *= 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	}
}
