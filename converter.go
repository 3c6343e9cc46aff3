package edfconv

import (
	"context"
	"io"
	"log/slog"
	"math"

	"github.com/noriah/edfconv/input"
	"github.com/noriah/edfconv/output"
	"github.com/pkg/errors"
)

// CheckLength is the number of samples Check reads at each probe position.
const CheckLength = 1000

// Converter exports every channel of a recording to an output sink.
type Converter struct {
	// Conversion parameters shared by all channels
	Config Config
	// Creates the sink for each converted file
	Output output.Factory
	// Where progress is logged. nil logs to slog.Default()
	Logger *slog.Logger
}

func (c *Converter) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Convert exports the recording at path. On failure everything written for
// the file is discarded and the error is a *ChannelError.
func (c *Converter) Convert(ctx context.Context, path string) error {
	if err := c.Config.Validate(); err != nil {
		return &ChannelError{File: path, Channel: -1, Err: err}
	}

	if c.Output == nil {
		return &ChannelError{File: path, Channel: -1, Err: errors.New("no output configured")}
	}

	src, err := input.Open(path)
	if err != nil {
		return &ChannelError{File: path, Channel: -1, Err: err}
	}
	defer src.Close()

	sink, err := c.Output(path)
	if err != nil {
		return &ChannelError{File: path, Channel: -1, Err: err}
	}

	log := c.logger().With("file", path)

	for ch := 0; ch < src.Channels(); ch++ {
		if err := ctx.Err(); err != nil {
			return c.abort(sink, log, &ChannelError{File: path, Channel: ch, Err: err})
		}

		if err := c.convertChannel(src, sink, ch, log); err != nil {
			return c.abort(sink, log, &ChannelError{File: path, Channel: ch, Err: err})
		}
	}

	if err := sink.Close(); err != nil {
		return c.abort(sink, log, &ChannelError{File: path, Channel: -1, Err: err})
	}

	log.Debug("converted", "channels", src.Channels())
	return nil
}

func (c *Converter) convertChannel(src input.Source, sink output.Sink, ch int, log *slog.Logger) error {
	if rate := src.SampleRate(ch); math.Abs(rate-c.Config.SampleRate) > 1e-9 {
		log.Warn("channel rate differs from fs",
			"channel", ch,
			"label", src.Label(ch),
			"rate", rate,
			"fs", c.Config.SampleRate)
	}

	raw, err := src.ReadAll(ch)
	if err != nil {
		return err
	}

	windows, err := ExportChannel(raw, c.Config)
	if err != nil {
		return err
	}

	rows, cols := windows.Dims()
	log.Debug("channel exported",
		"channel", ch,
		"label", src.Label(ch),
		"samples", len(raw),
		"windows", rows,
		"window_size", cols)

	return sink.WriteChannel(ch, windows)
}

func (c *Converter) abort(sink output.Sink, log *slog.Logger, cerr *ChannelError) error {
	if err := sink.Abort(); err != nil {
		log.Error("failed to discard partial output", "error", err)
	}
	return cerr
}

// Check opens the recording at path and reads CheckLength samples at the
// start, middle and end of every channel.
func (c *Converter) Check(ctx context.Context, path string) error {
	src, err := input.Open(path)
	if err != nil {
		return &ChannelError{File: path, Channel: -1, Err: err}
	}
	defer src.Close()

	if src.Channels() == 0 {
		return &ChannelError{File: path, Channel: -1,
			Err: errors.Wrap(input.ErrSourceRead, "no signal channels")}
	}

	buf := make([]float64, CheckLength)

	for ch := 0; ch < src.Channels(); ch++ {
		if err := ctx.Err(); err != nil {
			return &ChannelError{File: path, Channel: ch, Err: err}
		}

		if err := checkChannel(src, ch, buf); err != nil {
			return &ChannelError{File: path, Channel: ch, Err: err}
		}
	}

	return nil
}

func checkChannel(src input.Source, ch int, buf []float64) error {
	n := src.Len(ch)
	if n == 0 {
		return errors.Wrap(input.ErrSourceRead, "channel is empty")
	}

	probe := min(len(buf), n)

	for _, start := range []int{0, (n - probe) / 2, n - probe} {
		got, err := src.ReadSamples(ch, start, buf[:probe])
		if err != nil && err != io.EOF {
			return err
		}
		if got != probe {
			return errors.Wrapf(input.ErrSourceRead,
				"read %d of %d samples at %d", got, probe, start)
		}
	}

	return nil
}
