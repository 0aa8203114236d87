package ply

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

const readBufferSize = 64 << 10

// cursor is a buffered, offset-tracking view over a seekable stream.
// Every pass over the data section positions it explicitly with seek.
type cursor struct {
	rs   io.ReadSeeker
	r    *bufio.Reader
	off  int64
	size int64
	line []byte
}

func newCursor(rs io.ReadSeeker) (*cursor, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return &cursor{
		rs:   rs,
		r:    bufio.NewReaderSize(rs, readBufferSize),
		size: size,
	}, nil
}

// seek moves to an absolute offset, reusing buffered bytes for short forward jumps.
func (c *cursor) seek(off int64) error {
	if off < 0 || off > c.size {
		return fmt.Errorf("seek to %d outside stream of %d bytes: %w", off, c.size, io.ErrUnexpectedEOF)
	}
	if d := off - c.off; d >= 0 && d <= int64(c.r.Buffered()) {
		if _, err := c.r.Discard(int(d)); err != nil {
			return err
		}
		c.off = off
		return nil
	}
	if _, err := c.rs.Seek(off, io.SeekStart); err != nil {
		return err
	}
	c.r.Reset(c.rs)
	c.off = off
	return nil
}

// remaining is the number of bytes between the cursor and the end of the stream.
func (c *cursor) remaining() int64 {
	return c.size - c.off
}

// fits reports whether n values of width bytes each lie within the rest of
// the stream, without computing n*width.
func (c *cursor) fits(n, width int64) bool {
	if n < 0 || width < 0 {
		return false
	}
	return width == 0 || n <= c.remaining()/width
}

// skip advances n bytes without copying them out.
func (c *cursor) skip(n int64) error {
	if n < 0 {
		return fmt.Errorf("invalid skip length %d", n)
	}
	if c.off+n > c.size {
		return io.ErrUnexpectedEOF
	}
	return c.seek(c.off + n)
}

// readFull fills dst completely or fails with io.ErrUnexpectedEOF.
func (c *cursor) readFull(dst []byte) error {
	n, err := io.ReadFull(c.r, dst)
	c.off += int64(n)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// readLine returns the next line without its terminator. The returned slice
// is only valid until the next read. A final line without a newline is
// returned normally; io.EOF is reported only when nothing is left.
func (c *cursor) readLine() ([]byte, error) {
	c.line = c.line[:0]
	for {
		chunk, err := c.r.ReadSlice('\n')
		c.off += int64(len(chunk))
		switch {
		case err == nil:
			if len(c.line) == 0 {
				return trimEOL(chunk), nil
			}
			c.line = append(c.line, chunk...)
			return trimEOL(c.line), nil
		case errors.Is(err, bufio.ErrBufferFull):
			c.line = append(c.line, chunk...)
		case errors.Is(err, io.EOF):
			c.line = append(c.line, chunk...)
			if len(c.line) == 0 {
				return nil, io.EOF
			}
			return trimEOL(c.line), nil
		default:
			return nil, err
		}
	}
}

// eofToUnexpected reports a clean EOF in the middle of a structure as truncation.
func eofToUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte{'\n'})
	return bytes.TrimSuffix(b, []byte{'\r'})
}

// tokenizer splits an ASCII data line into whitespace-separated fields.
type tokenizer struct {
	b []byte
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func (t *tokenizer) next() ([]byte, bool) {
	i := 0
	for i < len(t.b) && isSpace(t.b[i]) {
		i++
	}
	if i == len(t.b) {
		t.b = t.b[i:]
		return nil, false
	}
	j := i
	for j < len(t.b) && !isSpace(t.b[j]) {
		j++
	}
	tok := t.b[i:j]
	t.b = t.b[j:]
	return tok, true
}

func (t *tokenizer) skip(n uint64) bool {
	for range n {
		if _, ok := t.next(); !ok {
			return false
		}
	}
	return true
}
