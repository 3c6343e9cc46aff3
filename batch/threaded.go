package batch

import (
	"context"
	"runtime"
	"sync"
)

type threaded struct {
	cfg Config
}

// NewThreaded returns a runner with a fixed pool of cfg.Workers goroutines,
// each converting one file at a time. Workers < 1 uses one per CPU.
func NewThreaded(cfg Config) Runner {
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	return &threaded{cfg: cfg}
}

func (t *threaded) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan int,
	paths []string, fn Func, rep *Report, prog *progress) {

	defer wg.Done()

	for idx := range jobs {
		// each worker owns the slots it receives
		rep.Results[idx] = runOne(ctx, paths[idx], fn)
		prog.done(rep.Results[idx])
	}
}

func (t *threaded) Run(ctx context.Context, paths []string, fn Func) Report {
	rep, prog := start(t.cfg, paths)

	jobs := make(chan int)
	started := make([]bool, len(paths))

	var wg sync.WaitGroup
	wg.Add(t.cfg.Workers)

	for i := 0; i < t.cfg.Workers; i++ {
		go t.worker(ctx, &wg, jobs, paths, fn, &rep, prog)
	}

feed:
	for i := range paths {
		if rep.Results[i].Err != nil {
			started[i] = true
			continue
		}

		if ctx.Err() != nil {
			break
		}

		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
			started[i] = true
		}
	}

	close(jobs)
	wg.Wait()

	for i, ok := range started {
		if !ok {
			rep.Results[i] = Result{Path: paths[i], Err: ctx.Err()}
		}
	}

	prog.finish(rep)
	return rep
}
