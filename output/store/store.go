// Package store implements the windowed dataset store (.wds), a single file
// holding one float64 array of shape (windows, samples per window, channels).
//
// The layout follows the EDF convention of a fixed-width ASCII header with a
// count that stays -1 until the writer is closed:
//
//	offset  size  field
//	0       8     format id "WDS1"
//	8       80    dataset name
//	88      8     dtype "float64"
//	96      16    rows (windows)
//	112     16    cols (samples per window)
//	128     8     channels, -1 while being written
//	136     120   reserved
//
// followed by one little-endian rows*cols slab per channel, in channel order.
package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/noriah/edfconv/dsp"
	"github.com/noriah/edfconv/output"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// Ext is the store file extension.
	Ext = ".wds"
	// DatasetName is the name given to the array by the sink.
	DatasetName = "data"

	formatID    = "WDS1"
	dtype       = "float64"
	headerBytes = 256
	valueBytes  = 8
)

var (
	// ErrFormat is returned for files that are not stores.
	ErrFormat = errors.New("not a wds store")
	// ErrUnfinalized is returned for a store whose writer never closed.
	ErrUnfinalized = errors.New("store was not finalized")
	// ErrTruncated is returned when a store holds less data than its header
	// describes.
	ErrTruncated = errors.New("store is truncated")
)

type header struct {
	name     string
	rows     int
	cols     int
	channels int
}

func (h header) encode() []byte {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-8s", formatID))
	sb.WriteString(fmt.Sprintf("%-80s", h.name))
	sb.WriteString(fmt.Sprintf("%-8s", dtype))
	sb.WriteString(fmt.Sprintf("%-16d", h.rows))
	sb.WriteString(fmt.Sprintf("%-16d", h.cols))
	sb.WriteString(fmt.Sprintf("%-8d", h.channels))
	sb.WriteString(strings.Repeat(" ", headerBytes-sb.Len()))

	return []byte(sb.String())
}

func decodeHeader(b []byte) (header, error) {
	var h header

	field := func(lo, hi int) string {
		return strings.TrimSpace(string(b[lo:hi]))
	}

	if field(0, 8) != formatID {
		return h, ErrFormat
	}

	if dt := field(88, 96); dt != dtype {
		return h, errors.Wrapf(ErrFormat, "dtype %q", dt)
	}

	h.name = field(8, 88)

	var err error
	if h.rows, err = strconv.Atoi(field(96, 112)); err != nil || h.rows < 0 {
		return h, errors.Wrapf(ErrFormat, "rows %q", field(96, 112))
	}
	if h.cols, err = strconv.Atoi(field(112, 128)); err != nil || h.cols < 1 {
		return h, errors.Wrapf(ErrFormat, "cols %q", field(112, 128))
	}
	if h.channels, err = strconv.Atoi(field(128, 136)); err != nil {
		return h, errors.Wrapf(ErrFormat, "channels %q", field(128, 136))
	}

	if h.channels == -1 {
		return h, ErrUnfinalized
	}
	if h.channels < 0 {
		return h, errors.Wrapf(ErrFormat, "channels %d", h.channels)
	}

	return h, nil
}

func (h header) slabBytes() int64 {
	return int64(h.rows) * int64(h.cols) * valueBytes
}

// Writer appends channels to a store.
type Writer struct {
	w      io.WriteSeeker
	hdr    header
	closed bool
}

// Create starts a store of rows x cols channels on w. The header marks the
// store unfinalized until Close.
func Create(w io.WriteSeeker, name string, rows, cols int) (*Writer, error) {
	if rows < 0 || cols < 1 {
		return nil, errors.Wrapf(dsp.ErrInvalidParameter, "store shape (%d, %d)", rows, cols)
	}

	if len(name) > 80 {
		return nil, errors.Wrapf(dsp.ErrInvalidParameter, "dataset name longer than 80 bytes")
	}

	sw := &Writer{
		w:   w,
		hdr: header{name: name, rows: rows, cols: cols, channels: -1},
	}

	if err := sw.writeHeader(); err != nil {
		return nil, err
	}

	sw.hdr.channels = 0
	return sw, nil
}

func (sw *Writer) writeHeader() error {
	if _, err := sw.w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err := sw.w.Write(sw.hdr.encode())
	return err
}

// Shape returns the per-channel matrix shape.
func (sw *Writer) Shape() (rows, cols int) {
	return sw.hdr.rows, sw.hdr.cols
}

// Channels is the number of channels appended so far.
func (sw *Writer) Channels() int {
	return sw.hdr.channels
}

// Append writes m as the next channel. m must have the store's shape.
func (sw *Writer) Append(m mat.Matrix) error {
	if sw.closed {
		return errors.New("store writer is closed")
	}

	rows, cols := m.Dims()
	if rows != sw.hdr.rows || cols != sw.hdr.cols {
		return errors.Wrapf(output.ErrShapeMismatch,
			"channel %d has shape (%d, %d), store has (%d, %d)",
			sw.hdr.channels, rows, cols, sw.hdr.rows, sw.hdr.cols)
	}

	offset := headerBytes + int64(sw.hdr.channels)*sw.hdr.slabBytes()
	if _, err := sw.w.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	bw := bufio.NewWriter(sw.w)
	var b [valueBytes]byte

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(m.At(i, j)))
			if _, err := bw.Write(b[:]); err != nil {
				return err
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return err
	}

	sw.hdr.channels++
	return nil
}

// Close rewrites the header with the final channel count. It does not close
// the underlying writer.
func (sw *Writer) Close() error {
	if sw.closed {
		return errors.New("store writer already closed")
	}
	sw.closed = true

	return sw.writeHeader()
}

// Reader reads a finalized store.
type Reader struct {
	r   io.ReadSeeker
	hdr header
}

// Open validates the store on r.
func Open(r io.ReadSeeker) (*Reader, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	b := make([]byte, headerBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrFormat
		}
		return nil, err
	}

	hdr, err := decodeHeader(b)
	if err != nil {
		return nil, err
	}

	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	want := headerBytes + int64(hdr.channels)*hdr.slabBytes()
	if size < want {
		return nil, errors.Wrapf(ErrTruncated, "%d bytes, header describes %d", size, want)
	}

	return &Reader{r: r, hdr: hdr}, nil
}

// Name is the dataset name.
func (sr *Reader) Name() string {
	return sr.hdr.name
}

// Shape returns (windows, samples per window, channels).
func (sr *Reader) Shape() (rows, cols, channels int) {
	return sr.hdr.rows, sr.hdr.cols, sr.hdr.channels
}

func (sr *Reader) checkChannel(c int) error {
	if c < 0 || c >= sr.hdr.channels {
		return errors.Errorf("channel %d out of range [0, %d)", c, sr.hdr.channels)
	}
	return nil
}

// Channel reads the windows of channel c.
func (sr *Reader) Channel(c int) (*dsp.Windows, error) {
	if err := sr.checkChannel(c); err != nil {
		return nil, err
	}

	offset := headerBytes + int64(c)*sr.hdr.slabBytes()
	if _, err := sr.r.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	raw := make([]byte, sr.hdr.slabBytes())
	if _, err := io.ReadFull(sr.r, raw); err != nil {
		return nil, errors.Wrap(ErrTruncated, err.Error())
	}

	data := make([]float64, sr.hdr.rows*sr.hdr.cols)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*valueBytes:]))
	}

	return dsp.NewWindows(sr.hdr.rows, sr.hdr.cols, data)
}

// At reads sample s of window w in channel c.
func (sr *Reader) At(w, s, c int) (float64, error) {
	if err := sr.checkChannel(c); err != nil {
		return 0, err
	}

	if w < 0 || w >= sr.hdr.rows || s < 0 || s >= sr.hdr.cols {
		return 0, errors.Errorf("index (%d, %d) out of range (%d, %d)",
			w, s, sr.hdr.rows, sr.hdr.cols)
	}

	offset := headerBytes + int64(c)*sr.hdr.slabBytes() +
		(int64(w)*int64(sr.hdr.cols)+int64(s))*valueBytes
	if _, err := sr.r.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}

	var b [valueBytes]byte
	if _, err := io.ReadFull(sr.r, b[:]); err != nil {
		return 0, errors.Wrap(ErrTruncated, err.Error())
	}

	return math.Float64frombits(binary.LittleEndian.Uint64(b[:])), nil
}

// Close closes the underlying reader if it is an io.Closer.
func (sr *Reader) Close() error {
	if c, ok := sr.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
