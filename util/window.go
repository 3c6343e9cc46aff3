package util

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// MovingWindow keeps the last Cap values in a ring and reports their mean
// and standard deviation.
type MovingWindow struct {
	values []float64
	next   int
	length int

	average float64
	stddev  float64
}

// NewMovingWindow returns a new moving window holding at most size values.
func NewMovingWindow(size int) *MovingWindow {
	if size < 1 {
		size = 1
	}

	return &MovingWindow{
		values: make([]float64, size),
	}
}

func (mw *MovingWindow) calcFinal() (float64, float64) {
	switch mw.length {
	case 0:
		mw.average, mw.stddev = 0, 0
	case 1:
		mw.average, mw.stddev = mw.values[0], 0
	default:
		mw.average, mw.stddev = stat.MeanStdDev(mw.window(), nil)
	}

	return mw.average, mw.stddev
}

// window is the populated part of the ring. Order does not matter to the
// statistics.
func (mw *MovingWindow) window() []float64 {
	return mw.values[:mw.length]
}

// Update adds value, evicting the oldest value once the window is full.
func (mw *MovingWindow) Update(value float64) (float64, float64) {
	mw.values[mw.next] = value
	mw.next = (mw.next + 1) % len(mw.values)

	if mw.length < len(mw.values) {
		mw.length++
	}

	return mw.calcFinal()
}

// Reset empties the window.
func (mw *MovingWindow) Reset() {
	mw.next, mw.length = 0, 0
	mw.calcFinal()
}

// Len returns how many items in the window
func (mw *MovingWindow) Len() int {
	return mw.length
}

// Cap returns max size of window
func (mw *MovingWindow) Cap() int {
	return len(mw.values)
}

// Mean is the moving window average
func (mw *MovingWindow) Mean() float64 {
	return mw.average
}

// StdDev is the moving window sample standard deviation
func (mw *MovingWindow) StdDev() float64 {
	return mw.stddev
}

// Stats returns the statistics of this window
func (mw *MovingWindow) Stats() (float64, float64) {
	return mw.average, mw.stddev
}

// ETA estimates the time for remaining more items, treating window values as
// per-item seconds.
func (mw *MovingWindow) ETA(remaining int) time.Duration {
	if remaining <= 0 || mw.length == 0 {
		return 0
	}
	return time.Duration(mw.average * float64(remaining) * float64(time.Second))
}
