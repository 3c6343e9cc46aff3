package text

import (
	"os"

	"github.com/noriah/edfconv/output"
	"gonum.org/v1/gonum/mat"
)

const partSuffix = ".part"

type sink struct {
	outDir  string
	source  string
	written []string
}

// NewFactory returns a factory of sinks writing one table per channel into
// outDir.
func NewFactory(outDir string) output.Factory {
	return func(path string) (output.Sink, error) {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, output.WrapIO(err, "create %s", outDir)
		}
		return &sink{outDir: outDir, source: path}, nil
	}
}

// WriteChannel writes the table to a temporary name and renames it into
// place once complete.
func (s *sink) WriteChannel(ch int, m mat.Matrix) error {
	name := output.ChannelFileName(s.outDir, s.source, ch, Ext)
	part := name + partSuffix

	f, err := os.Create(part)
	if err != nil {
		return output.WrapIO(err, "create %s", part)
	}

	if err := Write(f, m); err != nil {
		f.Close()
		os.Remove(part)
		return output.WrapIO(err, "write %s", part)
	}

	if err := f.Close(); err != nil {
		os.Remove(part)
		return output.WrapIO(err, "close %s", part)
	}

	if err := os.Rename(part, name); err != nil {
		os.Remove(part)
		return output.WrapIO(err, "rename %s", part)
	}

	s.written = append(s.written, name)
	return nil
}

func (s *sink) Close() error {
	s.written = nil
	return nil
}

// Abort removes every table written for the source.
func (s *sink) Abort() error {
	var first error
	for _, name := range s.written {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) && first == nil {
			first = output.WrapIO(err, "remove %s", name)
		}
	}
	s.written = nil
	return first
}
