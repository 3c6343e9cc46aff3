package batch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/noriah/edfconv/input"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBad = errors.New("bad file")

func testConfig(workers int) Config {
	return Config{
		Workers: workers,
		Stage:   "test",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// failBad fails every path containing "bad".
func failBad(ctx context.Context, path string) error {
	if strings.Contains(path, "bad") {
		return errors.Wrap(errBad, path)
	}
	return nil
}

func runners() map[string]Runner {
	return map[string]Runner{
		"sequential": New(testConfig(0)),
		"threaded":   NewThreaded(testConfig(3)),
		"threaded-1": NewThreaded(testConfig(1)),
	}
}

func TestRunReportOrder(t *testing.T) {
	paths := []string{"a", "bad-b", "c", "d", "bad-e", "f", "g"}

	for name, r := range runners() {
		t.Run(name, func(t *testing.T) {
			rep := r.Run(context.Background(), paths, failBad)

			require.Len(t, rep.Results, len(paths))
			for i, res := range rep.Results {
				assert.Equal(t, paths[i], res.Path)
			}

			assert.NotEmpty(t, rep.RunID)
			assert.Equal(t, 2, rep.Failed())
			assert.Equal(t, 5, rep.Succeeded())

			fails := rep.Failures()
			require.Len(t, fails, 2)
			assert.Equal(t, "bad-b", fails[0].Path)
			assert.ErrorIs(t, fails[1].Err, errBad)

			assert.Equal(t, []string{"a", "c", "d", "f", "g"}, rep.Paths())
		})
	}
}

func TestRunRecoversPanic(t *testing.T) {
	for name, r := range runners() {
		t.Run(name, func(t *testing.T) {
			rep := r.Run(context.Background(), []string{"ok", "boom", "ok2"},
				func(ctx context.Context, path string) error {
					if path == "boom" {
						panic("kaboom")
					}
					return nil
				})

			require.Equal(t, 1, rep.Failed())
			assert.Contains(t, rep.Failures()[0].Err.Error(), "kaboom")
		})
	}
}

func TestRunCanceled(t *testing.T) {
	paths := []string{"a", "b", "c", "d", "e"}

	for name, r := range runners() {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var calls atomic.Int32
			rep := r.Run(ctx, paths, func(ctx context.Context, path string) error {
				if calls.Add(1) == 1 {
					cancel()
				}
				<-ctx.Done()
				return ctx.Err()
			})

			require.Len(t, rep.Results, len(paths))
			assert.Equal(t, len(paths), rep.Failed())
			for _, res := range rep.Results {
				assert.ErrorIs(t, res.Err, context.Canceled)
			}
		})
	}
}

func TestRunOutputCollision(t *testing.T) {
	paths := []string{"in/night.edf", "in/day.edf", "in/night.wav", "in/bad-x.edf"}
	stem := func(path string) string {
		base := filepath.Base(path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}

	for name, workers := range map[string]int{"sequential": 0, "threaded": 3} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(workers)
			cfg.Key = stem

			r := New(cfg)
			if workers > 0 {
				r = NewThreaded(cfg)
			}

			var calls atomic.Int32
			rep := r.Run(context.Background(), paths, func(ctx context.Context, path string) error {
				calls.Add(1)
				return failBad(ctx, path)
			})

			assert.EqualValues(t, 2, calls.Load())
			assert.Equal(t, []string{"in/day.edf"}, rep.Paths())

			require.ErrorIs(t, rep.Results[0].Err, ErrOutputCollision)
			require.ErrorIs(t, rep.Results[2].Err, ErrOutputCollision)
			assert.Contains(t, rep.Results[0].Err.Error(), "night.wav")
			assert.Contains(t, rep.Results[2].Err.Error(), "night.edf")
			assert.ErrorIs(t, rep.Results[3].Err, errBad)
		})
	}
}

func TestRunEmpty(t *testing.T) {
	for name, r := range runners() {
		t.Run(name, func(t *testing.T) {
			rep := r.Run(context.Background(), nil, failBad)
			assert.Empty(t, rep.Results)
			assert.Zero(t, rep.Failed())
		})
	}
}

func TestDiscover(t *testing.T) {
	saved := input.Backends
	t.Cleanup(func() { input.Backends = saved })

	input.Backends = nil
	input.RegisterBackend("fake", input.BackendFunc(func(string) (input.Source, error) {
		return nil, errBad
	}), ".edf")

	dir := t.TempDir()
	for _, name := range []string{"b.edf", "a.EDF", "notes.txt", "c.edf.bak"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.edf"), 0o755))

	got, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.EDF"),
		filepath.Join(dir, "b.edf"),
	}, got)

	_, err = Discover(filepath.Join(dir, "absent"))
	assert.Error(t, err)
}
