package datum

import (
	"encoding/binary"
	"io"
	"math"
)

func ensureCapacity(buf []byte, minCap int) []byte {
	c := cap(buf)
	if minCap > c {
		if c < 16 {
			c = 16
		}
		for minCap > c {
			c <<= 1
		}
		old := buf
		buf = make([]byte, len(old), c)
		copy(buf, old)
	}
	return buf
}

func grow(buf []byte, n int) (int, []byte) {
	off := len(buf)
	newLen := off + n
	buf = ensureCapacity(buf, newLen)
	return off, buf[:newLen]
}

func appendU32(buf []byte, v uint32) []byte {
	off, buf := grow(buf, 4)
	binary.LittleEndian.PutUint32(buf[off:], v)
	return buf
}

func appendF32s(buf []byte, vs ...float32) []byte {
	off, buf := grow(buf, 4*len(vs))
	for _, v := range vs {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	return buf
}

// appendString writes a u32-length-prefixed string.
func appendString(buf []byte, s string) []byte {
	buf = appendU32(buf, uint32(len(s)))
	return append(buf, s...)
}

// appendShortString writes a u8-length-prefixed string; len(s) must fit.
func appendShortString(buf []byte, s string) []byte {
	if len(s) > math.MaxUint8 {
		panic("short string too long")
	}
	buf = append(buf, byte(len(s)))
	return append(buf, s...)
}

// byteStream is a read-only Stream over a byte slice.
type byteStream struct {
	Orig []byte
	Buf  []byte
}

func makeByteStream(buf []byte) byteStream {
	return byteStream{buf, buf}
}

func (d *byteStream) Pos() int64 {
	return int64(len(d.Orig) - len(d.Buf))
}

func (d *byteStream) ReadBytes(p []byte) error {
	if len(d.Buf) < len(p) {
		d.Buf = d.Buf[len(d.Buf):]
		return io.ErrUnexpectedEOF
	}
	copy(p, d.Buf)
	d.Buf = d.Buf[len(p):]
	return nil
}

func (d *byteStream) WriteBytes(p []byte) error {
	return io.ErrShortWrite
}
