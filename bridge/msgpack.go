package bridge

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/andreyvit/datum"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// msgpack extension types carrying engine values. Integer widths carry the
// kind as well: int32 for integers, uint32 for enums, uint8 for bytes.
const (
	extVector2 int8 = 1
	extVector3 int8 = 2
	extColor   int8 = 3
	extAsset   int8 = 4
)

// Marshal encodes v as msgpack. Tables become maps with string (name) and
// integer (id) keys in field order; runtime objects are encoded as nil.
func Marshal(v *datum.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.ResetDict(&buf, nil)
	err := encodeScript(enc, &buf, ToScript(v))
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %v value using MsgPack: %w", v.Kind(), err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes msgpack produced by Marshal (or by a script runtime
// following the same conventions) into a new Value. Malformed input yields
// a *datum.DataError.
func Unmarshal(data []byte, assets datum.AssetResolver) (*datum.Value, error) {
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	x, err := decodeScript(dec, &r, 0)
	msgpack.PutDecoder(dec)
	off := int64(len(data) - r.Len())
	if err != nil {
		return nil, &datum.DataError{Off: off, Err: err, Msg: "failed to decode msgpack"}
	}
	if r.Len() != 0 {
		return nil, &datum.DataError{Off: off, Err: datum.ErrMalformed, Msg: fmt.Sprintf("%d trailing bytes", r.Len())}
	}
	v, err := FromScript(x, assets)
	if err != nil {
		return nil, &datum.DataError{Off: 0, Err: err, Msg: "failed to convert msgpack"}
	}
	return v, nil
}

func encodeScript(e *msgpack.Encoder, w *bytes.Buffer, x any) error {
	switch x := x.(type) {
	case nil:
		return e.EncodeNil()
	case int32:
		return e.EncodeInt32(x)
	case float32:
		return e.EncodeFloat32(x)
	case bool:
		return e.EncodeBool(x)
	case string:
		return e.EncodeString(x)
	case datum.Vector2:
		return encodeExt(e, w, extVector2, appendFloats(nil, x.X, x.Y))
	case datum.Vector3:
		return encodeExt(e, w, extVector3, appendFloats(nil, x.X, x.Y, x.Z))
	case datum.Vector4:
		return encodeExt(e, w, extColor, appendFloats(nil, x.X, x.Y, x.Z, x.W))
	case AssetName:
		return encodeExt(e, w, extAsset, []byte(x))
	case uint32:
		return e.EncodeUint32(x)
	case uint8:
		return e.EncodeUint8(x)
	case []any:
		if err := e.EncodeArrayLen(len(x)); err != nil {
			return err
		}
		for _, item := range x {
			if err := encodeScript(e, w, item); err != nil {
				return err
			}
		}
		return nil
	case *Table:
		if err := e.EncodeMapLen(x.Len()); err != nil {
			return err
		}
		for i, key := range x.Keys {
			var err error
			if key.IsName() {
				err = e.EncodeString(key.NameKey())
			} else {
				err = e.EncodeInt32(key.IDKey())
			}
			if err != nil {
				return err
			}
			if err := encodeScript(e, w, x.Values[i]); err != nil {
				return err
			}
		}
		return nil
	case datum.Object:
		return e.EncodeNil()
	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, x)
	}
}

// encodeExt writes the extension payload straight to w; the encoder does not
// buffer, so the header and payload stay in order.
func encodeExt(e *msgpack.Encoder, w *bytes.Buffer, id int8, payload []byte) error {
	if err := e.EncodeExtHeader(id, len(payload)); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func appendFloats(buf []byte, fs ...float32) []byte {
	for _, f := range fs {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

func decodeScript(d *msgpack.Decoder, r *bytes.Reader, depth int) (any, error) {
	if depth > datum.MaxDepth {
		return nil, fmt.Errorf("nested deeper than %d", datum.MaxDepth)
	}
	c, err := d.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case c == msgpcode.Nil:
		return nil, d.DecodeNil()
	case c == msgpcode.False || c == msgpcode.True:
		return d.DecodeBool()
	case msgpcode.IsFixedNum(c) || c == msgpcode.Int8 || c == msgpcode.Int16 || c == msgpcode.Int32 || c == msgpcode.Int64:
		n, err := d.DecodeInt64()
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("integer %d does not fit into int32", n)
		}
		return int32(n), nil
	case c == msgpcode.Uint8:
		n, err := d.DecodeUint64()
		return uint8(n), err
	case c == msgpcode.Uint16 || c == msgpcode.Uint32 || c == msgpcode.Uint64:
		n, err := d.DecodeUint64()
		if err != nil {
			return nil, err
		}
		if n > math.MaxUint32 {
			return nil, fmt.Errorf("enum %d does not fit into uint32", n)
		}
		return uint32(n), nil
	case c == msgpcode.Float:
		return d.DecodeFloat32()
	case c == msgpcode.Double:
		f, err := d.DecodeFloat64()
		return float32(f), err
	case msgpcode.IsString(c):
		return d.DecodeString()
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := d.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		if n > datum.MaxCount {
			return nil, fmt.Errorf("%d array elements, max %d", n, datum.MaxCount)
		}
		out := make([]any, n)
		for i := range out {
			out[i], err = decodeScript(d, r, depth+1)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		return decodeTable(d, r, depth)
	case msgpcode.IsExt(c):
		return decodeExt(d, r)
	default:
		return nil, fmt.Errorf("unsupported msgpack code 0x%02x", c)
	}
}

func decodeTable(d *msgpack.Decoder, r *bytes.Reader, depth int) (*Table, error) {
	n, err := d.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if n > datum.MaxCount {
		return nil, fmt.Errorf("%d map entries, max %d", n, datum.MaxCount)
	}
	t := &Table{
		Keys:   make([]datum.Key, n),
		Values: make([]any, n),
	}
	for i := range n {
		k, err := decodeScript(d, r, depth+1)
		if err != nil {
			return nil, err
		}
		switch k := k.(type) {
		case string:
			if len(k) > datum.MaxKeyLen {
				return nil, fmt.Errorf("key longer than %d bytes", datum.MaxKeyLen)
			}
			t.Keys[i] = datum.Name(k)
		case int32:
			t.Keys[i] = datum.ID(k)
		default:
			return nil, fmt.Errorf("invalid map key of type %T", k)
		}
		t.Values[i], err = decodeScript(d, r, depth+1)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeExt(d *msgpack.Decoder, r *bytes.Reader) (any, error) {
	id, n, err := d.DecodeExtHeader()
	if err != nil {
		return nil, err
	}
	if n > r.Len() {
		return nil, io.ErrUnexpectedEOF
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	if id == extAsset {
		return AssetName(payload), nil
	}
	var want int
	switch id {
	case extVector2:
		want = 8
	case extVector3:
		want = 12
	case extColor:
		want = 16
	default:
		return nil, fmt.Errorf("unsupported msgpack extension %d", id)
	}
	if n != want {
		return nil, fmt.Errorf("extension %d carries %d bytes, wanted %d", id, n, want)
	}
	f := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:]))
	}
	switch id {
	case extVector2:
		return datum.Vector2{X: f(0), Y: f(1)}, nil
	case extVector3:
		return datum.Vector3{X: f(0), Y: f(1), Z: f(2)}, nil
	default:
		return datum.Vector4{X: f(0), Y: f(1), Z: f(2), W: f(3)}, nil
	}
}
