// Package edf reads European Data Format recordings (EDF and EDF+).
package edf

import (
	"io"
	"strings"

	"github.com/OpenPSG/edf"
	"github.com/noriah/edfconv/input"
	"github.com/pkg/errors"
)

// AnnotationsLabel marks the EDF+ annotation signal, which carries TAL text
// instead of samples.
const AnnotationsLabel = "EDF Annotations"

// discardSize is the scratch length used when skipping to a start sample.
const discardSize = 4096

func init() {
	input.RegisterBackend("edf", input.BackendFunc(func(path string) (input.Source, error) {
		return Open(path)
	}), ".edf")
}

// Source is an opened EDF file. Annotation signals are hidden; channel ch
// maps to the ch-th data signal in the file.
type Source struct {
	file   *input.BlockReader
	reader *edf.Reader
	header edf.Header

	signals []int // file signal index per channel
	records int
}

var _ input.Source = (*Source)(nil)

// Open opens the EDF file at path.
func Open(path string) (*Source, error) {
	file, err := input.OpenFile(path)
	if err != nil {
		return nil, err
	}

	src, err := NewSource(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	return src, nil
}

// NewSource reads an EDF recording from file. The Source takes ownership of
// file.
func NewSource(file *input.BlockReader) (*Source, error) {
	hdr, err := ReadHeader(file)
	if err != nil {
		return nil, err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	reader, err := edf.Open(file)
	if err != nil {
		return nil, err
	}

	src := &Source{
		file:    file,
		reader:  reader,
		header:  hdr,
		records: hdr.DataRecords,
	}

	if src.records < 0 {
		return nil, errors.New("recording was not finalized (unknown data record count)")
	}

	// a file cut short holds fewer records than its header claims
	if rb := recordBytes(hdr); rb > 0 {
		avail := (file.Size() - int64(hdr.HeaderBytes)) / rb
		if avail < int64(src.records) {
			return nil, errors.Errorf("truncated: header claims %d data records, file holds %d",
				src.records, avail)
		}
	}

	for i, sig := range hdr.Signals {
		if strings.EqualFold(sig.Label, AnnotationsLabel) {
			continue
		}
		src.signals = append(src.signals, i)
	}

	return src, nil
}

// Header returns the parsed file header.
func (s *Source) Header() edf.Header {
	return s.header
}

func (s *Source) Channels() int {
	return len(s.signals)
}

func (s *Source) signal(ch int) edf.Signal {
	return s.header.Signals[s.signals[ch]]
}

func (s *Source) Label(ch int) string {
	return s.signal(ch).Label
}

// SampleRate is samples per record over the record duration.
func (s *Source) SampleRate(ch int) float64 {
	return float64(s.signal(ch).SamplesPerRecord) / s.header.DataRecordDuration.Seconds()
}

func (s *Source) Len(ch int) int {
	return s.records * s.signal(ch).SamplesPerRecord
}

func (s *Source) ReadSamples(ch, start int, dst []float64) (int, error) {
	if err := input.CheckChannel(s, ch); err != nil {
		return 0, err
	}

	if start < 0 {
		return 0, errors.Wrapf(input.ErrSourceRead, "negative start %d", start)
	}

	if start >= s.Len(ch) {
		return 0, io.EOF
	}

	sr, err := s.reader.Signal(s.signals[ch])
	if err != nil {
		return 0, errors.Wrap(input.ErrSourceRead, err.Error())
	}

	// the signal reader always begins at the first record
	if start > 0 {
		scratch := make([]float64, min(start, discardSize))
		for skip := start; skip > 0; {
			n, err := sr.Read(scratch[:min(skip, len(scratch))])
			skip -= n
			if err != nil {
				return 0, wrapRead(err, ch)
			}
		}
	}

	n, err := sr.Read(dst)
	if err != nil {
		return n, wrapRead(err, ch)
	}

	return n, nil
}

func wrapRead(err error, ch int) error {
	if err == io.EOF {
		return io.EOF
	}
	return errors.Wrapf(input.ErrSourceRead, "channel %d: %v", ch, err)
}

func (s *Source) ReadAll(ch int) ([]float64, error) {
	return input.ReadAll(s, ch)
}

func (s *Source) Close() error {
	return s.file.Close()
}
