package datum

import (
	"errors"
	"reflect"
	"testing"
)

type testAsset string

func (a testAsset) RuntimeType() string { return "Texture" }
func (a testAsset) AssetName() string   { return string(a) }

type testObject struct{ name string }

func (o *testObject) RuntimeType() string { return "Node" }

var testAssets = AssetResolverFunc(func(name string) Asset {
	return testAsset(name)
})

// memStream is a Stream over an in-memory buffer.
type memStream struct {
	buf []byte
	off int
}

func (s *memStream) WriteBytes(p []byte) error {
	s.buf = append(s.buf, p...)
	return nil
}

func (s *memStream) ReadBytes(p []byte) error {
	if len(s.buf)-s.off < len(p) {
		s.off = len(s.buf)
		return errShortRead
	}
	s.off += copy(p, s.buf[s.off:])
	return nil
}

func (s *memStream) Pos() int64 { return int64(s.off) }

var errShortRead = errors.New("short read")

func expectPanic(t testing.TB, sentinel error, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		e := recover()
		if e == nil {
			t.Fatalf("expected panic with %v", sentinel)
		}
		err, ok := e.(*UsageError)
		if !ok {
			t.Fatalf("panic = %#v, wanted *UsageError", e)
		}
		if !errors.Is(err, sentinel) {
			t.Fatalf("panic = %v, wanted %v", err, sentinel)
		}
	}()
	f()
}

func eq[T comparable](t testing.TB, a, e T) {
	t.Helper()
	if a != e {
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func deepEqual[T any](t testing.TB, a, e T) {
	t.Helper()
	if !reflect.DeepEqual(a, e) {
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ok(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("** %v", err)
	}
}

// sampleTable builds a table holding every kind except Pointer, nested to
// the given depth.
func sampleTable(depth int) *Value {
	v := &Value{}
	SetField(v, Name("int"), int32(-7))
	SetField(v, Name("float"), float32(1.5))
	SetField(v, Name("bool"), true)
	SetField(v, Name("string"), "héllo")
	SetField(v, Name("vec2"), Vector2{1, 2})
	SetField(v, Name("vec3"), Vector3{1, 2, 3})
	SetField(v, Name("color"), Vector4{1, 0.5, 0, 1})
	SetField[Asset](v, Name("asset"), testAsset("orc.png"))
	SetField[Asset](v, Name("no_asset"), nil)
	SetField(v, Name("enum"), uint32(0xDEADBEEF))
	SetField(v, Name("byte"), uint8(0xFF))
	v.SetFieldValue(ID(-1), Of("a", "", "c"))
	v.SetFieldValue(ID(2), Of[int32]())
	v.SetFieldValue(Name("none"), &Value{})
	v.SetFieldValue(Name("empty_table"), New(KindTable, 0))
	if depth > 1 {
		v.SetFieldValue(Name("child"), sampleTable(depth-1))
	}
	return v
}
