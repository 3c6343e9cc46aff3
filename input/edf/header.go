package edf

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/OpenPSG/edf"
	"github.com/pkg/errors"
)

// fixedHeaderBytes is the size of the EDF header part that precedes the
// per-signal fields.
const fixedHeaderBytes = 256

// ReadHeader parses the EDF/EDF+ header at the start of r. Only the fields
// needed to address samples are validated; free-text fields are kept as is.
func ReadHeader(r io.Reader) (edf.Header, error) {
	var hdr edf.Header

	b := make([]byte, fixedHeaderBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return hdr, errors.Wrap(err, "failed to read header")
	}

	field := func(lo, hi int) string {
		return strings.TrimSpace(string(b[lo:hi]))
	}

	hdr.Version = edf.Version(field(0, 8))
	hdr.PatientID = field(8, 88)
	hdr.RecordingID = field(88, 168)

	var err error

	if hdr.HeaderBytes, err = strconv.Atoi(field(184, 192)); err != nil {
		return hdr, errors.Wrap(err, "bad header size")
	}

	if hdr.DataRecords, err = strconv.Atoi(field(236, 244)); err != nil {
		return hdr, errors.Wrap(err, "bad data record count")
	}

	seconds, err := strconv.ParseFloat(field(244, 252), 64)
	if err != nil {
		return hdr, errors.Wrap(err, "bad data record duration")
	}
	if seconds <= 0 {
		return hdr, errors.Errorf("data record duration %v", seconds)
	}
	hdr.DataRecordDuration = time.Duration(seconds * float64(time.Second))

	if hdr.SignalCount, err = strconv.Atoi(field(252, 256)); err != nil {
		return hdr, errors.Wrap(err, "bad signal count")
	}
	if hdr.SignalCount < 0 {
		return hdr, errors.Errorf("signal count %d", hdr.SignalCount)
	}

	ns := hdr.SignalCount
	hdr.Signals = make([]edf.Signal, ns)

	// per-signal fields are stored field by field, ns entries each
	widths := []int{16, 80, 8, 8, 8, 8, 8, 80, 8, 32}
	fields := make([][]string, len(widths))

	for i, width := range widths {
		buf := make([]byte, width*ns)
		if _, err := io.ReadFull(r, buf); err != nil {
			return hdr, errors.Wrap(err, "failed to read signal headers")
		}

		fields[i] = make([]string, ns)
		for s := range fields[i] {
			fields[i][s] = strings.TrimSpace(string(buf[s*width : (s+1)*width]))
		}
	}

	for s := range hdr.Signals {
		sig := &hdr.Signals[s]

		sig.Label = fields[0][s]
		sig.TransducerType = fields[1][s]
		sig.PhysicalDimension = fields[2][s]
		sig.PhysicalMin, _ = strconv.ParseFloat(fields[3][s], 64)
		sig.PhysicalMax, _ = strconv.ParseFloat(fields[4][s], 64)
		sig.DigitalMin, _ = strconv.Atoi(fields[5][s])
		sig.DigitalMax, _ = strconv.Atoi(fields[6][s])
		sig.Prefiltering = fields[7][s]
		sig.Reserved = fields[9][s]

		if sig.SamplesPerRecord, err = strconv.Atoi(fields[8][s]); err != nil {
			return hdr, errors.Wrapf(err, "signal %d: bad samples per record", s)
		}
		if sig.SamplesPerRecord <= 0 {
			return hdr, errors.Errorf("signal %d: %d samples per record", s, sig.SamplesPerRecord)
		}
	}

	return hdr, nil
}

// recordBytes is the size of one data record.
func recordBytes(hdr edf.Header) int64 {
	var n int64
	for _, sig := range hdr.Signals {
		n += int64(sig.SamplesPerRecord) * 2
	}
	return n
}
