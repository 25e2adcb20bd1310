package datum

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestEncodingLayout(t *testing.T) {
	tests := []struct {
		name string
		v    *Value
		want []byte
	}{
		{"none", &Value{}, []byte{12, 0}},
		{"int", Of[int32](1, -1), []byte{0, 2, 1, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}},
		{"float", Of[float32](1), []byte{1, 1, 0, 0, 0x80, 0x3F}},
		{"bool", Of(true, false), []byte{2, 2, 1, 0}},
		{"string", Of("hi"), []byte{3, 1, 2, 0, 0, 0, 'h', 'i'}},
		{"asset", Of[Asset](testAsset("a"), nil), []byte{7, 2, 1, 0, 0, 0, 'a', 0, 0, 0, 0}},
		{"enum", Of[uint32](0x01020304), []byte{8, 1, 4, 3, 2, 1}},
		{"byte", Of[uint8](7), []byte{9, 1, 7}},
		{"pointer", Of[Object](&testObject{}), []byte{11, 1, 0, 0, 0, 0}},
		{"table", func() *Value {
			v := &Value{}
			SetField(v, Name("a"), uint8(1))
			SetField(v, ID(2), uint8(3))
			return v
		}(), []byte{10, 2, 1, 1, 'a', 9, 1, 1, 0, 2, 0, 0, 0, 9, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.AppendBinary(nil)
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("AppendBinary = % x, wanted % x", got, tt.want)
			}
			eq(t, tt.v.SerializationSize(), len(tt.want))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for depth := 1; depth <= 4; depth++ {
		v := sampleTable(depth)
		data := v.AppendBinary(nil)
		eq(t, len(data), v.SerializationSize())

		got, err := Decode(data, testAssets)
		ok(t, err)
		if !got.Equal(v) {
			t.Fatalf("depth %d: Decode = %v, wanted %v", depth, got, v)
		}
		eq(t, got.Storage(), Internal)
	}

	for k := KindInteger; k < KindPointer; k++ {
		v := New(k, 3)
		got := must(Decode(v.AppendBinary(nil), testAssets))
		if !got.Equal(v) {
			t.Fatalf("%v: Decode = %v, wanted %v", k, got, v)
		}
	}
}

func TestWriteReadStream(t *testing.T) {
	v := sampleTable(2)
	var s memStream
	ok(t, v.WriteStream(&s))
	ok(t, Of("tail").WriteStream(&s))
	eq(t, len(s.buf), v.SerializationSize()+Of("tail").SerializationSize())

	var got, tail Value
	got.SetOwner("keep")
	ok(t, got.ReadStream(&s, false, testAssets))
	ok(t, tail.ReadStream(&s, false, nil))
	if !got.Equal(v) {
		t.Fatalf("ReadStream = %v, wanted %v", &got, v)
	}
	eq[any](t, got.Owner(), "keep")
	eq(t, Get[string](&tail, 0), "tail")
}

func TestReadStreamExternal(t *testing.T) {
	var s memStream
	ok(t, Of[float32](1, 2, 3).WriteStream(&s))

	data := make([]float32, 3)
	v := NewExternal(nil, data, nil)
	ok(t, v.ReadStream(&s, true, nil))
	deepEqual(t, data, []float32{1, 2, 3})
	eq(t, v.Storage(), External)

	// mismatched count leaves the borrowed buffer alone
	s = memStream{}
	ok(t, Of[float32](9, 9).WriteStream(&s))
	err := v.ReadStream(&s, true, nil)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("ReadStream(count mismatch) err = %v, wanted ErrMalformed", err)
	}
	deepEqual(t, data, []float32{1, 2, 3})

	expectPanic(t, ErrExternal, func() { Of(1).ReadStream(&s, true, nil) })

	// reading into an internal value replaces the borrowed buffer
	s = memStream{}
	ok(t, Of("x").WriteStream(&s))
	ok(t, v.ReadStream(&s, false, nil))
	eq(t, v.Storage(), Internal)
	eq(t, Get[string](v, 0), "x")
	deepEqual(t, data, []float32{1, 2, 3})
}

func TestDecodeAssets(t *testing.T) {
	data := Of[Asset](testAsset("sword"), nil).AppendBinary(nil)

	v := must(Decode(data, testAssets))
	eq(t, Get[Asset](v, 0), Asset(testAsset("sword")))
	eq(t, Get[Asset](v, 1), nil)

	unresolved := must(Decode(data, nil))
	eq(t, unresolved.Count(), 2)
	eq(t, Get[Asset](unresolved, 0), nil)

	calls := 0
	missing := AssetResolverFunc(func(string) Asset { calls++; return nil })
	must(Decode(data, missing))
	eq(t, calls, 1)
}

func TestDecodePointer(t *testing.T) {
	v := Of[Object](&testObject{"a"}, &testObject{"b"})
	got := must(Decode(v.AppendBinary(nil), nil))
	eq(t, got.Kind(), KindPointer)
	eq(t, got.Count(), 2)
	eq(t, Get[Object](got, 0), nil)
}

func TestDecodeMalformed(t *testing.T) {
	deep := []byte{}
	for range MaxDepth + 1 {
		deep = append(deep, 10, 1, 0, 0, 0, 0, 0)
	}
	deep = append(deep, 12, 0)

	tests := []struct {
		name string
		data []byte
		off  int64
		err  error
	}{
		{"empty", nil, 0, io.ErrUnexpectedEOF},
		{"header", []byte{0}, 0, io.ErrUnexpectedEOF},
		{"kind", []byte{13, 0}, 0, ErrMalformed},
		{"none_count", []byte{12, 1}, 0, ErrMalformed},
		{"truncated", []byte{0, 2, 1, 0, 0, 0, 2}, 6, io.ErrUnexpectedEOF},
		{"bool", []byte{2, 1, 2}, 2, ErrMalformed},
		{"string_len", []byte{3, 1, 0xFF, 0xFF, 0xFF, 0xFF}, 2, ErrMalformed},
		{"string_data", []byte{3, 1, 0, 0, 0, 1}, 6, io.ErrUnexpectedEOF},
		{"key_tag", []byte{10, 1, 2}, 2, ErrMalformed},
		{"key_name", []byte{10, 1, 1, 5, 'a'}, 4, io.ErrUnexpectedEOF},
		{"trailing", []byte{9, 1, 1, 0}, 3, ErrMalformed},
		{"depth", deep, int64(7 * MaxDepth), ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode(tt.data, nil)
			if v != nil {
				t.Fatalf("Decode = %v, wanted nil", v)
			}
			var de *DataError
			if !errors.As(err, &de) {
				t.Fatalf("Decode err = %v, wanted *DataError", err)
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("Decode err = %v, wanted %v", err, tt.err)
			}
			eq(t, de.Off, tt.off)
		})
	}
}

// widestRead is a memStream that records its largest ReadBytes request.
type widestRead struct {
	memStream
	widest int
}

func (s *widestRead) ReadBytes(p []byte) error {
	s.widest = max(s.widest, len(p))
	return s.memStream.ReadBytes(p)
}

func TestDecodeLongStringReadsInChunks(t *testing.T) {
	s := &widestRead{memStream: memStream{buf: []byte{3, 1, 0, 0, 0, 1}}}
	var v Value
	if err := v.ReadStream(s, false, nil); !errors.Is(err, errShortRead) {
		t.Fatalf("ReadStream err = %v, wanted %v", err, errShortRead)
	}
	eq(t, s.widest, bulkChunk)
	eq(t, v.Kind(), KindNone)

	long := string(bytes.Repeat([]byte("ab"), bulkChunk+7))
	data := Of(long).AppendBinary(nil)
	s = &widestRead{memStream: memStream{buf: data}}
	ok(t, v.ReadStream(s, false, nil))
	eq(t, Get[string](&v, 0), long)
	eq(t, s.widest, bulkChunk)
}

func TestReadStreamAllOrNothing(t *testing.T) {
	v := sampleTable(1)
	before := v.Clone()
	data := sampleTable(3).AppendBinary(nil)
	s := memStream{buf: data[:len(data)-1]}
	if err := v.ReadStream(&s, false, testAssets); err == nil {
		t.Fatalf("ReadStream(truncated) succeeded")
	}
	if !v.Equal(before) {
		t.Fatalf("failed ReadStream changed the value to %v", v)
	}
}

func TestMarshalBinary(t *testing.T) {
	v := sampleTable(2)
	data := must(v.MarshalBinary())

	var got Value
	ok(t, got.UnmarshalBinary(data))
	eq(t, got.Find(Name("asset")).Count(), 1)
	eq(t, Get[Asset](got.Field(Name("asset")).Val(), 0), nil)
	eq(t, got.Count(), v.Count())
}
