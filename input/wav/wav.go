// Package wav reads PCM WAVE files as multichannel recordings, one channel
// per interleaved WAVE channel.
package wav

import (
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/noriah/edfconv/input"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("wav", input.BackendFunc(func(path string) (input.Source, error) {
		return Open(path)
	}), ".wav", ".wave")
}

// Source holds a decoded WAVE file. Samples are normalized to [-1, 1).
type Source struct {
	rate     float64
	bitDepth int
	channels [][]float64
}

var _ input.Source = (*Source)(nil)

// Open decodes the WAVE file at path.
func Open(path string) (*Source, error) {
	file, err := input.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Decode(file)
}

// Decode reads a complete WAVE stream from rs.
func Decode(rs io.ReadSeeker) (*Source, error) {
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode pcm")
	}

	return fromBuffer(buf, int(dec.BitDepth))
}

// scale returns the full-scale value for bitDepth.
func scale(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 128
	case 24:
		return 8388608
	case 32:
		return 2147483648
	default:
		return 32768
	}
}

func fromBuffer(buf *goaudio.IntBuffer, bitDepth int) (*Source, error) {
	if buf == nil || buf.Format == nil {
		return nil, errors.New("wav buffer has no format")
	}

	chans := buf.Format.NumChannels
	if chans < 1 {
		return nil, errors.Errorf("wav has %d channels", chans)
	}

	if buf.Format.SampleRate <= 0 {
		return nil, errors.Errorf("wav sample rate %d", buf.Format.SampleRate)
	}

	frames := len(buf.Data) / chans

	src := &Source{
		rate:     float64(buf.Format.SampleRate),
		bitDepth: bitDepth,
		channels: make([][]float64, chans),
	}

	full := scale(bitDepth)

	// 8-bit WAVE samples are unsigned
	var offset float64
	if bitDepth == 8 {
		offset = 128
	}

	for c := range src.channels {
		ch := make([]float64, frames)
		for i := range ch {
			ch[i] = (float64(buf.Data[i*chans+c]) - offset) / full
		}
		src.channels[c] = ch
	}

	return src, nil
}

// BitDepth is the PCM sample size of the file.
func (s *Source) BitDepth() int {
	return s.bitDepth
}

func (s *Source) Channels() int {
	return len(s.channels)
}

func (s *Source) Label(ch int) string {
	return "wav"
}

func (s *Source) SampleRate(ch int) float64 {
	return s.rate
}

func (s *Source) Len(ch int) int {
	return len(s.channels[ch])
}

func (s *Source) ReadSamples(ch, start int, dst []float64) (int, error) {
	if err := input.CheckChannel(s, ch); err != nil {
		return 0, err
	}

	if start < 0 {
		return 0, errors.Wrapf(input.ErrSourceRead, "negative start %d", start)
	}

	data := s.channels[ch]
	if start >= len(data) {
		return 0, io.EOF
	}

	n := copy(dst, data[start:])
	if n < len(dst) {
		return n, io.EOF
	}

	return n, nil
}

func (s *Source) ReadAll(ch int) ([]float64, error) {
	if err := input.CheckChannel(s, ch); err != nil {
		return nil, err
	}

	out := make([]float64, len(s.channels[ch]))
	copy(out, s.channels[ch])
	return out, nil
}

func (s *Source) Close() error {
	s.channels = nil
	return nil
}
