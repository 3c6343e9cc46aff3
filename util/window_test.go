package util

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMovingWindow(t *testing.T) {
	mw := NewMovingWindow(3)
	assert.Equal(t, 3, mw.Cap())

	mean, std := mw.Update(2)
	assert.Equal(t, 2.0, mean)
	assert.Zero(t, std)

	mw.Update(4)
	mean, std = mw.Update(6)
	assert.Equal(t, 3, mw.Len())
	assert.InDelta(t, 4.0, mean, 1e-12)
	assert.InDelta(t, 2.0, std, 1e-12)

	// 2 falls out
	mean, _ = mw.Update(8)
	assert.Equal(t, 3, mw.Len())
	assert.InDelta(t, 6.0, mean, 1e-12)

	m, s := mw.Stats()
	assert.Equal(t, mw.Mean(), m)
	assert.Equal(t, mw.StdDev(), s)
	assert.False(t, math.IsNaN(s))
}

func TestMovingWindowReset(t *testing.T) {
	mw := NewMovingWindow(0)
	assert.Equal(t, 1, mw.Cap())

	mw.Update(5)
	mw.Update(7)
	assert.Equal(t, 7.0, mw.Mean())

	mw.Reset()
	assert.Zero(t, mw.Len())
	assert.Zero(t, mw.Mean())
}

func TestMovingWindowETA(t *testing.T) {
	mw := NewMovingWindow(4)
	assert.Zero(t, mw.ETA(10))

	mw.Update(1.5)
	mw.Update(2.5)
	assert.Equal(t, 20*time.Second, mw.ETA(10))
	assert.Zero(t, mw.ETA(0))
}
