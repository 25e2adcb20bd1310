package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/andreyvit/datum/internal/mmap"
)

var (
	errReadOnly  = errors.New("stream is read-only")
	errWriteOnly = errors.New("stream is write-only")
)

// File is a buffered stream over an *os.File, open either for reading or
// for writing.
type File struct {
	f   *os.File
	r   *bufio.Reader
	w   *bufio.Writer
	pos int64
}

// Create creates or truncates the file at path for writing.
func Create(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, err
	}
	return &File{f: f, w: bufio.NewWriter(f)}, nil
}

// Open opens the file at path for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &File{f: f, r: bufio.NewReader(f)}, nil
}

func (f *File) WriteBytes(p []byte) error {
	if f.w == nil {
		return errReadOnly
	}
	n, err := f.w.Write(p)
	f.pos += int64(n)
	return err
}

func (f *File) ReadBytes(p []byte) error {
	if f.r == nil {
		return errWriteOnly
	}
	n, err := io.ReadFull(f.r, p)
	f.pos += int64(n)
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (f *File) Pos() int64 { return f.pos }

// Sync flushes buffered writes and the file's data to stable storage.
func (f *File) Sync() error {
	if f.w == nil {
		return nil
	}
	if err := f.w.Flush(); err != nil {
		return err
	}
	if err := mmap.Fdatasync(f.f); err != nil {
		return fmt.Errorf("fdatasync %s: %w", f.f.Name(), err)
	}
	return nil
}

// Close flushes buffered writes (without syncing) and closes the file.
func (f *File) Close() error {
	var err error
	if f.w != nil {
		err = f.w.Flush()
	}
	if cerr := f.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Hint is the expected access pattern of a Mapped stream.
type Hint = mmap.Hint

const (
	Normal     = mmap.Normal
	Sequential = mmap.Sequential
	Random     = mmap.Random
)

// Mapped is a read-only stream over a memory-mapped file.
type Mapped struct {
	f    *os.File
	data []byte
	off  int
}

// Map maps the file at path for reading with the given access hint.
func Map(path string, hint Hint) (*Mapped, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	data, err := mmap.Map(f, st.Size(), hint)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &Mapped{f: f, data: data}, nil
}

func (m *Mapped) ReadBytes(p []byte) error {
	if len(m.data)-m.off < len(p) {
		m.off = len(m.data)
		return io.ErrUnexpectedEOF
	}
	m.off += copy(p, m.data[m.off:])
	return nil
}

func (m *Mapped) WriteBytes(p []byte) error {
	return errReadOnly
}

func (m *Mapped) Pos() int64 { return int64(m.off) }

// Len returns the number of unread bytes.
func (m *Mapped) Len() int { return len(m.data) - m.off }

// Close unmaps the file. The stream must not be used afterwards.
func (m *Mapped) Close() error {
	err := mmap.Unmap(m.data)
	m.data = nil
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
