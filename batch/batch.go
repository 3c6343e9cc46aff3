// Package batch runs one operation over many recordings and collects a
// per-file report. A failing file never stops the rest of the batch.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/noriah/edfconv/input"
	"github.com/noriah/edfconv/util"
	"github.com/pkg/errors"
)

// etaWindow is the number of recent item durations used for the ETA.
const etaWindow = 16

// ErrOutputCollision fails files whose outputs would be written under the
// same name as another file of the batch.
var ErrOutputCollision = errors.New("output name shared with another file")

// Func processes the file at path.
type Func func(ctx context.Context, path string) error

// Result is the outcome of one file.
type Result struct {
	Path    string
	Err     error
	Elapsed time.Duration
}

// Report holds one Result per input, in input order.
type Report struct {
	RunID   string
	Results []Result
}

// Failed is the number of files that failed.
func (r Report) Failed() int {
	return len(r.Failures())
}

// Succeeded is the number of files processed without error.
func (r Report) Succeeded() int {
	return len(r.Results) - r.Failed()
}

// Failures returns the failed results in input order.
func (r Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Paths returns the paths of results that succeeded.
func (r Report) Paths() []string {
	var out []string
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res.Path)
		}
	}
	return out
}

type Runner interface {
	Run(ctx context.Context, paths []string, fn Func) Report
}

type Config struct {
	Workers int          // parallel files, threaded runner only
	Stage   string       // name logged with every item
	Logger  *slog.Logger // nil logs to slog.Default()

	// Key names the output of a path. Paths sharing a key fail with
	// ErrOutputCollision and fn is never called for them.
	Key func(path string) string
}

func (cfg Config) logger() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}

// Discover lists the files in dir that an input backend can open, sorted by
// name. Subdirectories are not searched.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !input.HasBackend(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}

	return out, nil
}

type sequential struct {
	cfg Config
}

// New returns a runner that processes one file at a time.
func New(cfg Config) Runner {
	return &sequential{cfg: cfg}
}

func (s *sequential) Run(ctx context.Context, paths []string, fn Func) Report {
	rep, prog := start(s.cfg, paths)

	for i, path := range paths {
		if rep.Results[i].Err != nil {
			continue
		}

		if err := ctx.Err(); err != nil {
			rep.Results[i] = Result{Path: path, Err: err}
			continue
		}

		rep.Results[i] = runOne(ctx, path, fn)
		prog.done(rep.Results[i])
	}

	prog.finish(rep)
	return rep
}

func start(cfg Config, paths []string) (Report, *progress) {
	rep := Report{
		RunID:   uuid.NewString(),
		Results: make([]Result, len(paths)),
	}

	log := cfg.logger().With("run_id", rep.RunID)
	if cfg.Stage != "" {
		log = log.With("stage", cfg.Stage)
	}

	log.Info("batch started", "files", len(paths))

	total := len(paths)
	for i, err := range collisions(cfg.Key, paths) {
		if err != nil {
			total--
			rep.Results[i] = Result{Path: paths[i], Err: err}
			log.Warn("file skipped", "file", paths[i], "error", err)
		}
	}

	return rep, &progress{
		log:   log,
		total: total,
		began: time.Now(),
		times: util.NewMovingWindow(etaWindow),
	}
}

// collisions returns an error for every path whose key is shared.
func collisions(key func(string) string, paths []string) []error {
	errs := make([]error, len(paths))
	if key == nil {
		return errs
	}

	groups := make(map[string][]int)
	for i, path := range paths {
		k := key(path)
		groups[k] = append(groups[k], i)
	}

	for k, idx := range groups {
		if len(idx) < 2 {
			continue
		}

		for _, i := range idx {
			var others []string
			for _, j := range idx {
				if j != i {
					others = append(others, filepath.Base(paths[j]))
				}
			}
			errs[i] = errors.Wrapf(ErrOutputCollision, "%q also written by %s",
				k, strings.Join(others, ", "))
		}
	}

	return errs
}

// runOne calls fn, turning a panic into a failed result.
func runOne(ctx context.Context, path string, fn Func) (res Result) {
	res.Path = path
	began := time.Now()

	defer func() {
		res.Elapsed = time.Since(began)
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic: %v", r)
		}
	}()

	res.Err = fn(ctx, path)
	return res
}

type progress struct {
	mu    sync.Mutex
	log   *slog.Logger
	total int
	count int
	began time.Time
	times *util.MovingWindow
}

func (p *progress) done(res Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.count++
	p.times.Update(res.Elapsed.Seconds())

	attrs := []any{
		"file", res.Path,
		"done", p.count,
		"total", p.total,
		"elapsed", res.Elapsed.Round(time.Millisecond),
		"eta", p.times.ETA(p.total - p.count).Round(time.Second),
	}

	if res.Err != nil {
		p.log.Warn("file failed", append(attrs, "error", res.Err)...)
		return
	}

	p.log.Info("file done", attrs...)
}

func (p *progress) finish(rep Report) {
	p.log.Info("batch finished",
		"succeeded", rep.Succeeded(),
		"failed", rep.Failed(),
		"took", time.Since(p.began).Round(time.Millisecond))
}
