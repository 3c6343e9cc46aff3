// Package text writes window matrices as plain comma-separated tables, one
// table per channel.
package text

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/noriah/edfconv/dsp"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Ext is the table file extension.
const Ext = ".csv"

// ErrEmpty is returned by Read for a table with no rows.
var ErrEmpty = errors.New("empty table")

// Write writes m row by row. There is no header and no index column; values
// use the shortest representation that parses back to the same float64.
func Write(w io.Writer, m mat.Matrix) error {
	rows, cols := m.Dims()

	cw := csv.NewWriter(w)
	record := make([]string, cols)

	for i := 0; i < rows; i++ {
		for j := range record {
			record[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read parses a table written by Write.
func Read(r io.Reader) (*dsp.Windows, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	var (
		data []float64
		rows int
		cols int
	)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read table")
		}

		// csv enforces equal field counts after the first record
		cols = len(record)
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d col %d", rows, j)
			}
			data = append(data, v)
		}
		rows++
	}

	if rows == 0 {
		return nil, ErrEmpty
	}

	return dsp.NewWindows(rows, cols, data)
}

// ReadFile reads the table at path.
func ReadFile(path string) (*dsp.Windows, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}
