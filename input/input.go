package input

import (
	"io"

	"github.com/pkg/errors"
)

// ErrSourceRead is returned when a source cannot supply the requested samples.
var ErrSourceRead = errors.New("source read failed")

// Source is a recording of one or more channel sample streams. Channels are
// indexed from 0 in the order the container stores them, and each channel may
// have its own native rate.
type Source interface {
	// Channels is the number of signal channels.
	Channels() int
	// Label of channel ch, as stored in the container.
	Label(ch int) string
	// SampleRate is the native rate of channel ch in Hz.
	SampleRate(ch int) float64
	// Len is the number of samples recorded for channel ch.
	Len(ch int) int
	// ReadSamples fills dst with samples of channel ch starting at sample
	// start. It returns the number of samples read and io.EOF if the channel
	// ended before dst was filled.
	ReadSamples(ch, start int, dst []float64) (int, error)
	// ReadAll returns every sample of channel ch.
	ReadAll(ch int) ([]float64, error)

	io.Closer
}

// CheckChannel returns an error wrapping ErrSourceRead if ch is not a valid
// channel of src.
func CheckChannel(src Source, ch int) error {
	if ch < 0 || ch >= src.Channels() {
		return errors.Wrapf(ErrSourceRead, "channel %d out of range [0, %d)", ch, src.Channels())
	}
	return nil
}

// ReadAll reads channel ch of src in full through ReadSamples. Backends
// without a faster path can use it to implement Source.ReadAll.
func ReadAll(src Source, ch int) ([]float64, error) {
	if err := CheckChannel(src, ch); err != nil {
		return nil, err
	}

	out := make([]float64, src.Len(ch))

	n, err := src.ReadSamples(ch, 0, out)
	if err != nil && err != io.EOF {
		return nil, err
	}

	if n != len(out) {
		return nil, errors.Wrapf(ErrSourceRead,
			"channel %d: read %d of %d samples", ch, n, len(out))
	}

	return out, nil
}
