// Package output defines where windowed channels go once exported.
package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShapeMismatch is returned when a channel's window matrix does not
	// match the shape of the channels already written to the same store.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrIO is returned when an output artifact cannot be written.
	ErrIO = errors.New("output write failed")
)

// Sink receives the exported channels of one source file.
type Sink interface {
	// WriteChannel writes the windows of channel ch. Channels arrive in
	// increasing order.
	WriteChannel(ch int, m mat.Matrix) error
	// Close finalizes the artifacts. A sink must not be used after Close.
	Close() error
	// Abort discards everything written for this source.
	Abort() error
}

// Factory creates the Sink for the source file at path.
type Factory func(path string) (Sink, error)

// Stem is the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Key is the part of every output name that depends on path. Sources with
// equal keys write to the same files. Keys are case-folded so that names
// differing only in case also collide on case-insensitive filesystems.
func Key(path string) string {
	return strings.ToLower(Stem(path))
}

// ChannelFileName is the per-channel table for channel ch (0-based) of the
// source at path. Channel numbers in names are 1-based.
func ChannelFileName(outDir, path string, ch int, ext string) string {
	return filepath.Join(outDir, fmt.Sprintf("%s-ch_%d%s", Stem(path), ch+1, ext))
}

// StoreFileName is the single store written for the source at path.
func StoreFileName(outDir, path, ext string) string {
	return filepath.Join(outDir, Stem(path)+ext)
}

// WrapIO marks err as an output failure.
func WrapIO(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(ErrIO, "%s: %v", fmt.Sprintf(format, args...), err)
}
