package dsp

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Windows is a row-major matrix of fixed-width analysis windows.
// Row r holds samples [r*cols, (r+1)*cols) of the windowed signal.
//
// Windows implements mat.Matrix. Unlike mat.Dense it may have zero rows.
type Windows struct {
	rows int
	cols int
	data []float64
}

var _ mat.Matrix = (*Windows)(nil)

// Window reshapes signal into rows of size samples. Trailing samples that do
// not fill a whole row are dropped. The result shares memory with signal.
func Window(signal []float64, size int) (*Windows, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "window size %d", size)
	}

	rows := len(signal) / size
	n := rows * size

	return &Windows{
		rows: rows,
		cols: size,
		data: signal[:n:n],
	}, nil
}

// NewWindows wraps data as a rows x cols matrix. data must hold exactly
// rows*cols values.
func NewWindows(rows, cols int, data []float64) (*Windows, error) {
	if rows < 0 || cols <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "shape (%d, %d)", rows, cols)
	}

	if len(data) != rows*cols {
		return nil, errors.Wrapf(ErrInvalidParameter,
			"%d values for shape (%d, %d)", len(data), rows, cols)
	}

	return &Windows{rows: rows, cols: cols, data: data}, nil
}

// Dims returns the number of windows and the window size.
func (w *Windows) Dims() (r, c int) {
	return w.rows, w.cols
}

// At returns sample j of window i.
func (w *Windows) At(i, j int) float64 {
	if i < 0 || i >= w.rows {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= w.cols {
		panic(mat.ErrColAccess)
	}
	return w.data[i*w.cols+j]
}

// T returns the implicit transpose.
func (w *Windows) T() mat.Matrix {
	return mat.Transpose{Matrix: w}
}

// Row returns window i without copying.
func (w *Windows) Row(i int) []float64 {
	if i < 0 || i >= w.rows {
		panic(mat.ErrRowAccess)
	}
	return w.data[i*w.cols : (i+1)*w.cols]
}

// RawData returns the backing row-major slice.
func (w *Windows) RawData() []float64 {
	return w.data
}

// Dense copies the windows into a mat.Dense. It returns nil when there are no
// rows, since mat.Dense cannot be empty.
func (w *Windows) Dense() *mat.Dense {
	if w.rows == 0 {
		return nil
	}

	data := make([]float64, len(w.data))
	copy(data, w.data)

	return mat.NewDense(w.rows, w.cols, data)
}
