package text

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/noriah/edfconv/dsp"
	"github.com/noriah/edfconv/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestWriteFormat(t *testing.T) {
	var buf bytes.Buffer

	m := mat.NewDense(2, 3, []float64{1, 0.5, -2, 1e-7, math.Pi, 1234567})
	require.NoError(t, Write(&buf, m))

	assert.Equal(t, "1,0.5,-2\n1e-07,3.141592653589793,1.234567e+06\n", buf.String())
}

func TestRoundTrip(t *testing.T) {
	data := []float64{0.1, -0.2, 1.0 / 3, 2e300, -5e-300, 0, 7, 8}
	w, err := dsp.Window(data, 4)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, w))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, data, got.RawData())

	r, c := got.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 4, c)
}

func TestReadErrors(t *testing.T) {
	_, err := Read(bytes.NewBufferString(""))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Read(bytes.NewBufferString("1,2\n3\n"))
	assert.Error(t, err)

	_, err = Read(bytes.NewBufferString("1,x\n"))
	assert.Error(t, err)
}

func TestWriteEmpty(t *testing.T) {
	w, err := dsp.Window([]float64{1, 2}, 5)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, w))
	assert.Zero(t, buf.Len())
}

func TestSink(t *testing.T) {
	dir := t.TempDir()

	sink, err := NewFactory(dir)("/recordings/night.edf")
	require.NoError(t, err)

	for ch := 0; ch < 2; ch++ {
		w, err := dsp.Window([]float64{float64(ch), 1, 2, 3}, 2)
		require.NoError(t, err)
		require.NoError(t, sink.WriteChannel(ch, w))
	}
	require.NoError(t, sink.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"night-ch_1.csv", "night-ch_2.csv"}, names)

	got, err := ReadFile(filepath.Join(dir, "night-ch_2.csv"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 2, 3}, got.RawData())
}

func TestSinkAbort(t *testing.T) {
	dir := t.TempDir()

	// a sibling file must survive the abort
	other := filepath.Join(dir, "other-ch_1.csv")
	require.NoError(t, os.WriteFile(other, []byte("1\n"), 0o644))

	sink, err := NewFactory(dir)("night.edf")
	require.NoError(t, err)

	w, err := dsp.Window([]float64{1, 2}, 1)
	require.NoError(t, err)
	require.NoError(t, sink.WriteChannel(0, w))
	require.FileExists(t, output.ChannelFileName(dir, "night.edf", 0, Ext))

	require.NoError(t, sink.Abort())
	assert.NoFileExists(t, output.ChannelFileName(dir, "night.edf", 0, Ext))
	assert.FileExists(t, other)
}

func TestSinkIOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := NewFactory(filepath.Join(blocker, "sub"))("night.edf")
	assert.ErrorIs(t, err, output.ErrIO)
}
