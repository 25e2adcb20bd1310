package datum

import (
	"encoding/binary"
	"math"
	"slices"
)

// Stream is the sequential byte stream values are serialized to and from.
// ReadBytes must fill p completely or fail.
type Stream interface {
	WriteBytes(p []byte) error
	ReadBytes(p []byte) error
	Pos() int64
}

const (
	headerSize      = 2
	pointerWireSize = 4

	keyTagID   byte = 0
	keyTagName byte = 1

	// MaxStringLen bounds decoded strings and asset names.
	MaxStringLen = 16 << 20
	// MaxDepth bounds table nesting accepted by the decoder.
	MaxDepth = 64
)

// SerializationSize returns the exact number of bytes WriteStream emits for
// the current contents of v.
func (v *Value) SerializationSize() int {
	n := headerSize
	for i := range int(v.count) {
		n += v.data.wireSizeAt(i)
	}
	return n
}

// AppendBinary appends the wire encoding of v to buf:
//
//	value -> kind:8 count:8 element*
//
// Scalars are little-endian, strings and asset names are u32-length-prefixed,
// pointers are written as 4 zero bytes, and table elements are
// key value (recursively), with key -> 0:8 id:32 | 1:8 len:8 name.
func (v *Value) AppendBinary(buf []byte) []byte {
	buf = ensureCapacity(buf, len(buf)+v.SerializationSize())
	return appendValue(buf, v)
}

func appendValue(buf []byte, v *Value) []byte {
	buf = append(buf, byte(v.Kind()), v.count)
	for i := range int(v.count) {
		buf = v.data.appendAt(buf, i)
	}
	return buf
}

func (v *Value) MarshalBinary() ([]byte, error) {
	return v.AppendBinary(nil), nil
}

// WriteStream writes the wire encoding of v to s.
func (v *Value) WriteStream(s Stream) error {
	bp := wireBufPool.Get().(*[]byte)
	defer releaseWireBuf(bp)
	*bp = v.AppendBinary((*bp)[:0])
	return s.WriteBytes(*bp)
}

// ReadStream decodes one value from s into v. Decoding is all-or-nothing: on
// error v is left untouched.
//
// With external set, v must already borrow a buffer of the encoded kind and
// count; the decoded elements are copied into it. Otherwise v is replaced by
// a fresh internal value. Asset names are resolved through assets, which may
// be nil; unresolved names decode to nil assets.
func (v *Value) ReadStream(s Stream, external bool, assets AssetResolver) error {
	if external && v.storage != External {
		panic(usageErrf(ErrExternal, "ReadStream", v.Kind(), -1, "value does not borrow a buffer"))
	}
	start := s.Pos()
	d := decoder{s: s, assets: assets}
	fresh, err := d.value()
	if err != nil {
		return err
	}
	if external {
		if fresh.Kind() != v.Kind() || fresh.count != v.count {
			return dataErrf(start, nil, "encoded %v[%d] does not match external %v[%d]", fresh.Kind(), fresh.count, v.Kind(), v.count)
		}
		if n := int(v.count); n > 0 {
			fresh.data.moveTo(v.data, n)
		}
		return nil
	}
	v.release()
	v.setKind(fresh.Kind())
	v.data = fresh.data
	v.count = fresh.count
	return nil
}

// Decode decodes a single value from data into a new internal Value.
func Decode(data []byte, assets AssetResolver) (*Value, error) {
	bs := makeByteStream(data)
	v := &Value{}
	if err := v.ReadStream(&bs, false, assets); err != nil {
		return nil, err
	}
	if len(bs.Buf) != 0 {
		return nil, dataErrf(bs.Pos(), nil, "%d trailing bytes", len(bs.Buf))
	}
	return v, nil
}

// UnmarshalBinary decodes data into v without resolving assets.
func (v *Value) UnmarshalBinary(data []byte) error {
	d, err := Decode(data, nil)
	if err != nil {
		return err
	}
	v.release()
	v.setKind(d.Kind())
	v.data = d.data
	v.count = d.count
	return nil
}

func keyWireSize(k Key) int {
	if k.named {
		return 2 + len(k.name)
	}
	return 5
}

func appendKey(buf []byte, k Key) []byte {
	if k.named {
		buf = append(buf, keyTagName)
		return appendShortString(buf, k.name)
	}
	buf = append(buf, keyTagID)
	return appendU32(buf, uint32(k.id))
}

func elemWireSize[T any](p *T) int {
	switch p := any(p).(type) {
	case *string:
		return 4 + len(*p)
	case *Asset:
		return 4 + len(assetName(*p))
	case *KeyedValue:
		return keyWireSize(p.key) + p.Value.SerializationSize()
	default:
		return kindOf[T]().WireSize()
	}
}

func appendElem[T any](buf []byte, p *T) []byte {
	switch p := any(p).(type) {
	case *int32:
		return appendU32(buf, uint32(*p))
	case *float32:
		return appendF32s(buf, *p)
	case *bool:
		if *p {
			return append(buf, 1)
		}
		return append(buf, 0)
	case *string:
		return appendString(buf, *p)
	case *Vector2:
		return appendF32s(buf, p.X, p.Y)
	case *Vector3:
		return appendF32s(buf, p.X, p.Y, p.Z)
	case *Vector4:
		return appendF32s(buf, p.X, p.Y, p.Z, p.W)
	case *Asset:
		return appendString(buf, assetName(*p))
	case *uint32:
		return appendU32(buf, *p)
	case *uint8:
		return append(buf, *p)
	case *KeyedValue:
		buf = appendKey(buf, p.key)
		return appendValue(buf, &p.Value)
	case *Object:
		// pointers are transient; the placeholder always decodes to nil
		return appendU32(buf, 0)
	default:
		panic("unreachable")
	}
}

type decoder struct {
	s       Stream
	assets  AssetResolver
	depth   int
	scratch [16]byte
}

func (d *decoder) raw(n int) ([]byte, error) {
	var b []byte
	if n <= len(d.scratch) {
		b = d.scratch[:n]
	} else {
		b = make([]byte, n)
	}
	off := d.s.Pos()
	if err := d.s.ReadBytes(b); err != nil {
		return nil, dataErrf(off, err, "cannot read %d bytes", n)
	}
	return b, nil
}

func (d *decoder) u8() (byte, error) {
	b, err := d.raw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) u32() (uint32, error) {
	b, err := d.raw(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *decoder) f32s(out ...*float32) error {
	b, err := d.raw(4 * len(out))
	if err != nil {
		return err
	}
	for i, p := range out {
		*p = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return nil
}

func (d *decoder) string() (string, error) {
	off := d.s.Pos()
	n, err := d.u32()
	if err != nil {
		return "", err
	}
	if n > MaxStringLen {
		return "", dataErrf(off, nil, "string length %d exceeds %d", n, MaxStringLen)
	}
	b, err := d.bulk(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// bulkChunk bounds how far a read runs ahead of the bytes actually present.
const bulkChunk = 64 << 10

// bulk reads n bytes chunk by chunk, so a corrupt length prefix costs at most
// one chunk more than the input really holds.
func (d *decoder) bulk(n int) ([]byte, error) {
	if n <= bulkChunk {
		return d.raw(n)
	}
	off := d.s.Pos()
	b := make([]byte, 0, bulkChunk)
	for len(b) < n {
		k := min(n-len(b), bulkChunk)
		b = slices.Grow(b, k)
		if err := d.s.ReadBytes(b[len(b) : len(b)+k]); err != nil {
			return nil, dataErrf(off, err, "cannot read %d bytes", n)
		}
		b = b[:len(b)+k]
	}
	return b, nil
}

func (d *decoder) key() (Key, error) {
	off := d.s.Pos()
	tag, err := d.u8()
	if err != nil {
		return Key{}, err
	}
	switch tag {
	case keyTagID:
		id, err := d.u32()
		return ID(int32(id)), err
	case keyTagName:
		n, err := d.u8()
		if err != nil {
			return Key{}, err
		}
		b, err := d.raw(int(n))
		if err != nil {
			return Key{}, err
		}
		return Key{name: string(b), named: true}, nil
	default:
		return Key{}, dataErrf(off, nil, "invalid key tag %d", tag)
	}
}

// value decodes one value into fresh internal storage.
func (d *decoder) value() (Value, error) {
	off := d.s.Pos()
	hdr, err := d.raw(headerSize)
	if err != nil {
		return Value{}, err
	}
	k, n := Kind(hdr[0]), int(hdr[1])
	if k == KindNone {
		if n != 0 {
			return Value{}, dataErrf(off, nil, "%d elements in a value without kind", n)
		}
		return Value{}, nil
	}
	if !k.IsValid() {
		return Value{}, dataErrf(off, nil, "invalid kind %d", hdr[0])
	}
	if k == KindTable {
		if d.depth >= MaxDepth {
			return Value{}, dataErrf(off, nil, "tables nested deeper than %d", MaxDepth)
		}
		d.depth++
		defer func() { d.depth-- }()
	}
	var v Value
	v.setKind(k)
	if n > 0 {
		v.data = makeElems(k, n)
		for i := range n {
			if err := v.data.decodeAt(d, i); err != nil {
				return Value{}, err
			}
		}
	}
	v.count = uint8(n)
	return v, nil
}

func decodeElem[T any](d *decoder, p *T) error {
	switch p := any(p).(type) {
	case *int32:
		u, err := d.u32()
		*p = int32(u)
		return err
	case *float32:
		return d.f32s(p)
	case *bool:
		off := d.s.Pos()
		b, err := d.u8()
		if err != nil {
			return err
		}
		if b > 1 {
			return dataErrf(off, nil, "invalid bool %d", b)
		}
		*p = b == 1
		return nil
	case *string:
		s, err := d.string()
		*p = s
		return err
	case *Vector2:
		return d.f32s(&p.X, &p.Y)
	case *Vector3:
		return d.f32s(&p.X, &p.Y, &p.Z)
	case *Vector4:
		return d.f32s(&p.X, &p.Y, &p.Z, &p.W)
	case *Asset:
		name, err := d.string()
		if err != nil {
			return err
		}
		if name != "" && d.assets != nil {
			*p = d.assets.LookupAsset(name)
		}
		return nil
	case *uint32:
		u, err := d.u32()
		*p = u
		return err
	case *uint8:
		b, err := d.u8()
		*p = b
		return err
	case *KeyedValue:
		key, err := d.key()
		if err != nil {
			return err
		}
		v, err := d.value()
		if err != nil {
			return err
		}
		*p = KeyedValue{v, key}
		return nil
	case *Object:
		_, err := d.raw(pointerWireSize)
		*p = nil
		return err
	default:
		panic("unreachable")
	}
}
