package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/noriah/edfconv"
	"github.com/noriah/edfconv/batch"
	paramfile "github.com/noriah/edfconv/config"
	"github.com/noriah/edfconv/fft"
	"github.com/noriah/edfconv/input"
	"github.com/noriah/edfconv/output"
	"github.com/noriah/edfconv/output/store"
	"github.com/noriah/edfconv/output/text"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

func newRunner(cfg *config, stage string, logger *slog.Logger) batch.Runner {
	bcfg := batch.Config{
		Workers: cfg.workers,
		Stage:   stage,
		Logger:  logger,
		Key:     output.Key,
	}

	if cfg.workers > 1 {
		return batch.NewThreaded(bcfg)
	}
	return batch.New(bcfg)
}

func discover(dir string) ([]string, error) {
	paths, err := batch.Discover(dir)
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		return nil, errors.Errorf("no recordings in %s (extensions %v)", dir, input.Extensions())
	}

	return paths, nil
}

// runCheck pre-flights every recording in cfg.dir. failed reports whether any
// file could not be read.
func runCheck(ctx context.Context, w io.Writer, cfg *config, logger *slog.Logger) (bool, error) {
	paths, err := discover(cfg.dir)
	if err != nil {
		return false, err
	}

	conv := &edfconv.Converter{Logger: logger}
	rep := newRunner(cfg, "check", logger).Run(ctx, paths, conv.Check)

	printReport(w, "check", rep)
	return rep.Failed() > 0, nil
}

func newFactory(cfg *config) output.Factory {
	if cfg.format == formatStore {
		return store.NewFactory(cfg.outDir)
	}
	return text.NewFactory(cfg.outDir)
}

// runConvert loads the parameters, pre-flights unless told not to, and
// converts every readable recording in cfg.dir.
func runConvert(ctx context.Context, w io.Writer, cfg *config, logger *slog.Logger) (bool, error) {
	path := paramfile.Path(cfg.configPath)

	params, err := paramfile.Load(path)
	if err != nil {
		return false, err
	}

	logger.Info("parameters loaded",
		"config", path,
		"down_factor", params.DownFactor(),
		"window_samples", params.WindowSamples(),
		"effective_rate", params.EffectiveRate(),
		"scale", params.Scale,
		"filter", params.Filter)

	if params.EffectiveRate() != params.TargetRate {
		logger.Warn("fs is not a multiple of new_fs; output rate differs",
			"new_fs", params.TargetRate,
			"effective_rate", params.EffectiveRate())
	}

	paths, err := discover(cfg.dir)
	if err != nil {
		return false, err
	}

	conv := &edfconv.Converter{
		Config: params,
		Output: newFactory(cfg),
		Logger: logger,
	}

	failed := false

	if !cfg.skipCheck {
		rep := newRunner(cfg, "check", logger).Run(ctx, paths, conv.Check)
		if rep.Failed() > 0 {
			printReport(w, "check", rep)
			failed = true
		}
		paths = rep.Paths()
	}

	rep := newRunner(cfg, "convert", logger).Run(ctx, paths, conv.Convert)
	printReport(w, "convert", rep)

	return failed || rep.Failed() > 0, nil
}

func printReport(w io.Writer, stage string, rep batch.Report) {
	for _, res := range rep.Failures() {
		fmt.Fprintf(w, "FAIL %s\n", failure(res))
	}

	fmt.Fprintf(w, "%s: %d ok, %d failed (run %s)\n",
		stage, rep.Succeeded(), rep.Failed(), rep.RunID)
}

func failure(res batch.Result) string {
	var cerr *edfconv.ChannelError
	if errors.As(res.Err, &cerr) && cerr.Channel >= 0 {
		return fmt.Sprintf("%s channel %d: %v", cerr.File, cerr.Channel, cerr.Err)
	}
	if errors.As(res.Err, &cerr) {
		return fmt.Sprintf("%s: %v", cerr.File, cerr.Err)
	}
	return fmt.Sprintf("%s: %v", res.Path, res.Err)
}

// runInspect prints a summary of cfg.file.
func runInspect(w io.Writer, cfg *config) error {
	switch strings.ToLower(filepath.Ext(cfg.file)) {
	case store.Ext:
		return inspectStore(w, cfg.file)
	case text.Ext:
		return inspectTable(w, cfg.file)
	}

	return inspectRecording(w, cfg.file, cfg.inspectSeconds)
}

func inspectStore(w io.Writer, path string) error {
	sr, err := store.OpenFile(path)
	if err != nil {
		return err
	}
	defer sr.Close()

	rows, cols, chans := sr.Shape()
	fmt.Fprintf(w, "%s: dataset %q, %d windows x %d samples x %d channels\n",
		path, sr.Name(), rows, cols, chans)

	for c := 0; c < chans; c++ {
		m, err := sr.Channel(c)
		if err != nil {
			return err
		}
		if rows == 0 {
			continue
		}
		mean, std := stat.MeanStdDev(m.Row(0), nil)
		fmt.Fprintf(w, "  ch %d: first window mean %g std %g\n", c+1, mean, std)
	}

	return nil
}

func inspectTable(w io.Writer, path string) error {
	m, err := text.ReadFile(path)
	if err != nil {
		return err
	}

	rows, cols := m.Dims()
	mean, std := stat.MeanStdDev(m.Row(0), nil)

	fmt.Fprintf(w, "%s: %d windows x %d samples, first window mean %g std %g\n",
		path, rows, cols, mean, std)
	return nil
}

func inspectRecording(w io.Writer, path string, seconds float64) error {
	src, err := input.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	fmt.Fprintf(w, "%s: %d channels\n", path, src.Channels())

	for ch := 0; ch < src.Channels(); ch++ {
		rate := src.SampleRate(ch)
		n := min(src.Len(ch), int(rate*seconds))

		line := fmt.Sprintf("  ch %d %-16q %8g Hz %10d samples", ch+1, src.Label(ch), rate, src.Len(ch))

		if n > 1 {
			buf := make([]float64, n)
			got, err := src.ReadSamples(ch, 0, buf)
			if err != nil && err != io.EOF {
				return errors.Wrapf(err, "channel %d", ch+1)
			}
			mean, std := stat.MeanStdDev(buf[:got], nil)
			line += fmt.Sprintf("  mean %g std %g (first %gs)", mean, std, seconds)

			if got > 1 {
				plan := fft.NewPlan(got)
				copy(plan.Input, buf[:got])
				plan.Execute()

				if k := plan.Peak(); k > 0 {
					line += fmt.Sprintf("  peak %.3g Hz", plan.Freq(k, rate))
				}
			}
		}

		fmt.Fprintln(w, line)
	}

	return nil
}
