package bmp

import (
	"errors"
	"io"
)

// WriteBuffer is an in-memory io.WriteSeeker. Seeking past the end and
// writing there fills the hole with zeros, like a file would.
type WriteBuffer struct {
	buf []byte
	pos int64
}

// Write implements io.Writer.
func (b *WriteBuffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.buf)) {
		if end > int64(cap(b.buf)) {
			grown := make([]byte, end, max(end, 2*int64(cap(b.buf))))
			copy(grown, b.buf)
			b.buf = grown
		} else {
			// Bytes between len and cap may hold stale data after Reset.
			old := len(b.buf)
			b.buf = b.buf[:end]
			clear(b.buf[old:end])
		}
	}
	n := copy(b.buf[b.pos:end], p)
	b.pos = end
	return n, nil
}

// Seek implements io.Seeker.
func (b *WriteBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.pos + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, errors.New("bmp: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("bmp: negative position")
	}
	b.pos = abs
	return abs, nil
}

// Bytes returns the written contents. Holes left by a trailing seek are not
// included.
func (b *WriteBuffer) Bytes() []byte { return b.buf }

// Reset empties the buffer, keeping its storage.
func (b *WriteBuffer) Reset() {
	b.buf = b.buf[:0]
	b.pos = 0
}
