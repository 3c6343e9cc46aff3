package store

import (
	"os"

	"github.com/noriah/edfconv/output"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

type sink struct {
	path string
	file *os.File
	w    *Writer
	next int
}

// NewFactory returns a factory of sinks writing one store per source file
// into outDir.
func NewFactory(outDir string) output.Factory {
	return func(path string) (output.Sink, error) {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, output.WrapIO(err, "create %s", outDir)
		}
		return &sink{path: output.StoreFileName(outDir, path, Ext)}, nil
	}
}

// OpenFile opens the store at path. Closing the Reader closes the file.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	sr, err := Open(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return sr, nil
}

// WriteChannel creates the store from the shape of the first channel and
// appends every channel after it.
func (s *sink) WriteChannel(ch int, m mat.Matrix) error {
	if ch != s.next {
		return errors.Errorf("channel %d written out of order, expected %d", ch, s.next)
	}

	if s.w == nil {
		f, err := os.Create(s.path)
		if err != nil {
			return output.WrapIO(err, "create %s", s.path)
		}
		s.file = f

		rows, cols := m.Dims()
		w, err := Create(f, DatasetName, rows, cols)
		if err != nil {
			return output.WrapIO(err, "start %s", s.path)
		}
		s.w = w
	}

	if err := s.w.Append(m); err != nil {
		if errors.Is(err, output.ErrShapeMismatch) {
			return err
		}
		return output.WrapIO(err, "append to %s", s.path)
	}

	s.next++
	return nil
}

// Close finalizes the store. A source without channels leaves no file.
func (s *sink) Close() error {
	if s.w == nil {
		return nil
	}

	if err := s.w.Close(); err != nil {
		s.file.Close()
		return output.WrapIO(err, "finalize %s", s.path)
	}

	if err := s.file.Close(); err != nil {
		return output.WrapIO(err, "close %s", s.path)
	}

	s.file = nil
	return nil
}

// Abort removes the store file.
func (s *sink) Abort() error {
	if s.file == nil {
		return nil
	}

	s.file.Close()
	s.file = nil
	s.w = nil

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return output.WrapIO(err, "remove %s", s.path)
	}
	return nil
}
