package input

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Backend opens recordings of one container format.
type Backend interface {
	// Open opens the recording at path. The returned Source owns the file.
	Open(path string) (Source, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(path string) (Source, error)

// Open calls f(path).
func (f BackendFunc) Open(path string) (Source, error) {
	return f(path)
}

type NamedBackend struct {
	Name       string
	Extensions []string
	Backend
}

var Backends []NamedBackend

// RegisterBackend registers a backend globally for the given file extensions
// (with the leading dot). This function is not thread-safe, and most packages
// should call it on init().
func RegisterBackend(name string, b Backend, exts ...string) {
	for i := range exts {
		exts[i] = strings.ToLower(exts[i])
	}

	Backends = append(Backends, NamedBackend{
		Name:       name,
		Extensions: exts,
		Backend:    b,
	})
}

// GetAllBackendNames returns the names of all installed backends.
func GetAllBackendNames() []string {
	out := make([]string, len(Backends))
	for i, backend := range Backends {
		out[i] = backend.Name
	}
	return out
}

// Extensions returns every registered file extension, sorted.
func Extensions() []string {
	var out []string
	for _, backend := range Backends {
		out = append(out, backend.Extensions...)
	}
	sort.Strings(out)
	return out
}

// FindBackend is a helper function that finds the backend handling the
// extension of path. It returns nil if there is none.
func FindBackend(path string) Backend {
	ext := strings.ToLower(filepath.Ext(path))
	for _, backend := range Backends {
		for _, e := range backend.Extensions {
			if e == ext {
				return backend
			}
		}
	}
	return nil
}

// HasBackend reports whether a backend handles the extension of path.
func HasBackend(path string) bool {
	return FindBackend(path) != nil
}

// Open opens the recording at path with the backend for its extension.
func Open(path string) (Source, error) {
	backend := FindBackend(path)
	if backend == nil {
		return nil, errors.Errorf("no backend for %q; check list-backends", filepath.Ext(path))
	}

	src, err := backend.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceRead, "failed to open %s: %v", path, err)
	}

	return src, nil
}

// OpenFile opens path for reading through a block cache. Backends use it so
// that sample-by-sample seeking does not turn into a syscall per sample.
func OpenFile(path string) (*BlockReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	return NewBlockReader(f, info.Size(), DefaultBlockSize), nil
}
