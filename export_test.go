package edfconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func sine(n int, fs, freq, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/fs)
	}
	return out
}

func TestExportDeterministic(t *testing.T) {
	cfg := Config{SampleRate: 200, TargetRate: 50, Window: 2, Scale: 3}
	raw := sine(4000, 200, 3, 1)

	a, err := ExportChannel(raw, cfg)
	require.NoError(t, err)
	b, err := ExportChannel(raw, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.RawData(), b.RawData())
}

func TestExportDoesNotModifyInput(t *testing.T) {
	raw := sine(1000, 100, 2, 1)
	saved := append([]float64(nil), raw...)

	_, err := ExportChannel(raw, Config{SampleRate: 100, TargetRate: 10, Window: 1, Scale: 5})
	require.NoError(t, err)
	assert.Equal(t, saved, raw)

	_, err = ExportChannel(raw, Config{SampleRate: 100, TargetRate: 100, Window: 1, Scale: 5})
	require.NoError(t, err)
	assert.Equal(t, saved, raw)
}

func TestExportShapeLaw(t *testing.T) {
	tests := []struct {
		n       int
		fs, nfs float64
		win     float64
	}{
		{n: 3000, fs: 100, nfs: 10, win: 30},
		{n: 3001, fs: 100, nfs: 10, win: 1},
		{n: 2999, fs: 100, nfs: 10, win: 1},
		{n: 7, fs: 100, nfs: 10, win: 1},
		{n: 12345, fs: 256, nfs: 64, win: 0.5},
		{n: 1000, fs: 100, nfs: 30, win: 2},
		{n: 999, fs: 1, nfs: 1, win: 10},
	}

	for _, tc := range tests {
		cfg := Config{SampleRate: tc.fs, TargetRate: tc.nfs, Window: tc.win, Scale: 1}
		d := cfg.DownFactor()
		w := cfg.WindowSamples()

		m, err := ExportChannel(sine(tc.n, tc.fs, 0.5, 1), cfg)
		require.NoError(t, err)

		rows, cols := m.Dims()
		decimated := (tc.n + d - 1) / d
		assert.Equal(t, decimated/w, rows, "n=%d d=%d w=%d", tc.n, d, w)
		assert.Equal(t, w, cols)
	}
}

func TestExportTruncatesNotPads(t *testing.T) {
	cfg := Config{SampleRate: 100, TargetRate: 10, Window: 2, Scale: 1}
	d, w := cfg.DownFactor(), cfg.WindowSamples()

	m, err := ExportChannel(sine(3*d*w+7, 100, 1, 1), cfg)
	require.NoError(t, err)

	rows, _ := m.Dims()
	assert.Equal(t, 3, rows)
}

func TestExportScaleLinear(t *testing.T) {
	raw := sine(5000, 500, 7, 2)
	cfg := Config{SampleRate: 500, TargetRate: 100, Window: 1, Scale: 1}

	base, err := ExportChannel(raw, cfg)
	require.NoError(t, err)

	for _, k := range []float64{-2, 0, 0.5, 1e6} {
		cfg.Scale = k
		got, err := ExportChannel(raw, cfg)
		require.NoError(t, err)

		want := make([]float64, len(base.RawData()))
		floats.ScaleTo(want, k, base.RawData())

		assert.True(t, floats.EqualApprox(want, got.RawData(), 1e-9*math.Max(1, math.Abs(k))), "scale %v", k)
	}
}

func TestExportIdentity(t *testing.T) {
	raw := sine(250, 50, 3, 1)
	cfg := Config{SampleRate: 50, TargetRate: 50, Window: 1, Scale: 2}

	m, err := ExportChannel(raw, cfg)
	require.NoError(t, err)

	rows, cols := m.Dims()
	require.Equal(t, 5, rows)
	require.Equal(t, 50, cols)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			require.Equal(t, 2*raw[i*cols+j], m.At(i, j))
		}
	}
}

func TestExportPreservesEnergy(t *testing.T) {
	const fs = 1000.0

	raw := sine(60000, fs, 2, 1)
	cfg := Config{SampleRate: fs, TargetRate: 100, Window: 10, Scale: 1}

	m, err := ExportChannel(raw, cfg)
	require.NoError(t, err)

	energy := func(x []float64) float64 {
		return floats.Dot(x, x) / float64(len(x))
	}

	assert.InEpsilon(t, energy(raw), energy(m.RawData()), 0.01)
	assert.InDelta(t, 0, mat.Sum(m)/float64(len(m.RawData())), 1e-3)
}

func TestExportInvalid(t *testing.T) {
	_, err := ExportChannel(sine(100, 100, 1, 1), Config{SampleRate: 100, TargetRate: 200, Window: 1, Scale: 1})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = ExportChannel(nil, Config{SampleRate: 100, TargetRate: 10, Window: 1, Scale: 1})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
