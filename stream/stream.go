// Package stream provides datum.Stream implementations over memory, files,
// memory-mapped files and generic io.Reader/io.Writer values.
package stream

import (
	"io"
)

// Memory is a growable in-memory stream with independent read and write
// cursors: writes append, reads consume from the front.
type Memory struct {
	buf []byte
	off int
}

func NewMemory(data []byte) *Memory {
	return &Memory{buf: data}
}

func (m *Memory) WriteBytes(p []byte) error {
	m.buf = append(m.buf, p...)
	return nil
}

func (m *Memory) ReadBytes(p []byte) error {
	if len(m.buf)-m.off < len(p) {
		m.off = len(m.buf)
		return io.ErrUnexpectedEOF
	}
	m.off += copy(p, m.buf[m.off:])
	return nil
}

// Pos returns the read position.
func (m *Memory) Pos() int64 { return int64(m.off) }

// Bytes returns the unread part of the stream.
func (m *Memory) Bytes() []byte { return m.buf[m.off:] }

func (m *Memory) Len() int { return len(m.buf) - m.off }

// Reset empties the stream, keeping the allocated buffer.
func (m *Memory) Reset() {
	m.buf = m.buf[:0]
	m.off = 0
}

// Reader adapts an io.Reader. Pos counts the bytes consumed so far.
type Reader struct {
	r   io.Reader
	pos int64
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) ReadBytes(p []byte) error {
	n, err := io.ReadFull(r.r, p)
	r.pos += int64(n)
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (r *Reader) WriteBytes(p []byte) error {
	return errReadOnly
}

func (r *Reader) Pos() int64 { return r.pos }

// Writer adapts an io.Writer. Pos counts the bytes written so far.
type Writer struct {
	w   io.Writer
	pos int64
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) WriteBytes(p []byte) error {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return err
}

func (w *Writer) ReadBytes(p []byte) error {
	return errWriteOnly
}

func (w *Writer) Pos() int64 { return w.pos }
