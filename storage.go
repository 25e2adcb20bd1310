package datum

// MaxCount is the largest number of elements a Value can hold. The wire
// header stores the count in a single byte.
const MaxCount = 255

// Storage tells whether a Value owns its backing array or borrows one.
type Storage uint8

const (
	// Internal storage is allocated, grown and released by the Value.
	Internal Storage = iota
	// External storage is a caller-owned slice the Value only borrows. It
	// cannot grow, and writes are visible through the caller's slice.
	External
)

func (s Storage) String() string {
	if s == External {
		return "external"
	}
	return "internal"
}

// elems is a typed backing array. The element type is fixed by the kind,
// so a type assertion on elems doubles as the kind check.
type elems interface {
	kind() Kind
	len() int

	// alloc returns a fresh zeroed array of the same element type.
	alloc(n int) elems

	// moveTo transfers the first n elements into dst without deep copying;
	// the source slots must be cleared afterwards.
	moveTo(dst elems, n int)

	// clear destructs [from, to), resetting the slots to zero values.
	clear(from, to int)

	// copyFrom deep-copies n elements of src starting at si into [di, di+n).
	copyFrom(src elems, di, si, n int)

	equalAt(other elems, i int) bool
	at(i int) any

	wireSizeAt(i int) int
	appendAt(buf []byte, i int) []byte
	decodeAt(d *decoder, i int) error
}

type slab[T any] []T

func (s slab[T]) kind() Kind { return kindOf[T]() }
func (s slab[T]) len() int   { return len(s) }

func (s slab[T]) alloc(n int) elems {
	return make(slab[T], n)
}

func (s slab[T]) moveTo(dst elems, n int) {
	copy(dst.(slab[T])[:n], s[:n])
}

func (s slab[T]) clear(from, to int) {
	clear(s[from:to])
}

func (s slab[T]) copyFrom(src elems, di, si, n int) {
	from := src.(slab[T])
	if s.kind().trivial() {
		copy(s[di:di+n], from[si:si+n])
		return
	}
	for i := range n {
		s[di+i] = cloneElem(from[si+i])
	}
}

func (s slab[T]) equalAt(other elems, i int) bool {
	return elemEqual(s[i], other.(slab[T])[i])
}

func (s slab[T]) at(i int) any {
	return any(s[i])
}

func (s slab[T]) wireSizeAt(i int) int {
	return elemWireSize(&s[i])
}

func (s slab[T]) appendAt(buf []byte, i int) []byte {
	return appendElem(buf, &s[i])
}

func (s slab[T]) decodeAt(d *decoder, i int) error {
	return decodeElem(d, &s[i])
}

// kindOf maps an element type to its kind. It panics for types that are not
// element types; callers go through kindFor for native aliases.
func kindOf[T any]() Kind {
	switch any((*T)(nil)).(type) {
	case *int32:
		return KindInteger
	case *float32:
		return KindFloat
	case *bool:
		return KindBool
	case *string:
		return KindString
	case *Vector2:
		return KindVector2
	case *Vector3:
		return KindVector3
	case *Vector4:
		return KindColor
	case *Asset:
		return KindAsset
	case *uint32:
		return KindEnum
	case *uint8:
		return KindByte
	case *KeyedValue:
		return KindTable
	case *Object:
		return KindPointer
	default:
		var zero T
		panic(usageErrf(ErrKindMismatch, "kindOf", KindNone, -1, "%T is not an element type", zero))
	}
}

func makeElems(kind Kind, n int) elems {
	switch kind {
	case KindInteger:
		return make(slab[int32], n)
	case KindFloat:
		return make(slab[float32], n)
	case KindBool:
		return make(slab[bool], n)
	case KindString:
		return make(slab[string], n)
	case KindVector2:
		return make(slab[Vector2], n)
	case KindVector3:
		return make(slab[Vector3], n)
	case KindColor:
		return make(slab[Vector4], n)
	case KindAsset:
		return make(slab[Asset], n)
	case KindEnum:
		return make(slab[uint32], n)
	case KindByte:
		return make(slab[uint8], n)
	case KindTable:
		return make(slab[KeyedValue], n)
	case KindPointer:
		return make(slab[Object], n)
	default:
		panic(usageErrf(ErrKindMismatch, "alloc", kind, -1, "cannot allocate elements"))
	}
}

func cloneElem[T any](x T) T {
	if kv, ok := any(x).(KeyedValue); ok {
		return any(kv.clone()).(T)
	}
	return x
}

func elemEqual[T any](a, b T) bool {
	switch a := any(a).(type) {
	case KeyedValue:
		b := any(b).(KeyedValue)
		return a.Equal(&b)
	default:
		return any(a) == any(b)
	}
}
