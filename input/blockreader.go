package input

import (
	"io"

	"github.com/pkg/errors"
)

// DefaultBlockSize is the block size used by OpenFile.
const DefaultBlockSize = 1 << 20

// BlockReader is an io.ReadSeeker over an io.ReaderAt that keeps one aligned
// block in memory. Seeks are free; reads inside the cached block do not touch
// the underlying reader.
type BlockReader struct {
	r    io.ReaderAt
	size int64
	off  int64

	buf   []byte
	start int64 // offset of buf[0]
	valid int   // bytes of buf holding data
}

var _ io.ReadSeeker = (*BlockReader)(nil)

// NewBlockReader wraps r, which holds size bytes.
func NewBlockReader(r io.ReaderAt, size int64, blockSize int) *BlockReader {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	return &BlockReader{
		r:    r,
		size: size,
		buf:  make([]byte, blockSize),
	}
}

// Size is the length of the underlying data.
func (br *BlockReader) Size() int64 {
	return br.size
}

// Read implements io.Reader.
func (br *BlockReader) Read(p []byte) (int, error) {
	if br.off >= br.size {
		return 0, io.EOF
	}

	if br.off < br.start || br.off >= br.start+int64(br.valid) {
		if err := br.fill(); err != nil {
			return 0, err
		}
	}

	n := copy(p, br.buf[br.off-br.start:br.valid])
	br.off += int64(n)

	return n, nil
}

func (br *BlockReader) fill() error {
	bs := int64(len(br.buf))
	br.start = br.off - br.off%bs

	n, err := br.r.ReadAt(br.buf, br.start)
	br.valid = n

	if err != nil && err != io.EOF {
		return errors.Wrap(err, "failed to read block")
	}

	if br.off >= br.start+int64(n) {
		return io.ErrUnexpectedEOF
	}

	return nil
}

// Seek implements io.Seeker.
func (br *BlockReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64

	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = br.off + offset
	case io.SeekEnd:
		abs = br.size + offset
	default:
		return 0, errors.Errorf("invalid whence: %d", whence)
	}

	if abs < 0 {
		return 0, errors.New("negative position")
	}

	br.off = abs
	return abs, nil
}

// Close closes the underlying reader if it is an io.Closer.
func (br *BlockReader) Close() error {
	if c, ok := br.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
