package edfconv_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenPSG/edf"
	"github.com/stretchr/testify/require"

	_ "github.com/noriah/edfconv/input/all"
)

type fixtureSignal struct {
	label     string
	perRecord int
	value     func(i int) float64
}

// writeEDF writes a recording with one-second data records.
func writeEDF(t *testing.T, dir, name string, records int, signals ...fixtureSignal) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	hdr := edf.Header{
		Version:            edf.Version0,
		PatientID:          "X",
		RecordingID:        "fixture",
		StartTime:          time.Date(2024, 5, 6, 22, 0, 0, 0, time.UTC),
		DataRecordDuration: time.Second,
		SignalCount:        len(signals),
	}

	for _, s := range signals {
		hdr.Signals = append(hdr.Signals, edf.Signal{
			Label:             s.label,
			PhysicalDimension: "uV",
			PhysicalMin:       -32768,
			PhysicalMax:       32767,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  s.perRecord,
		})
	}

	ew, err := edf.Create(f, hdr)
	require.NoError(t, err)

	for r := 0; r < records; r++ {
		rec := make([][]float64, len(signals))
		for i, s := range signals {
			rec[i] = make([]float64, s.perRecord)
			for j := range rec[i] {
				rec[i][j] = s.value(r*s.perRecord + j)
			}
		}
		require.NoError(t, ew.Write(rec))
	}

	require.NoError(t, ew.Close())
	return path
}

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
