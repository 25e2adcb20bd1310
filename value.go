package datum

// Value is a dynamically typed array of up to MaxCount elements of a single
// Kind. It either owns its backing array (Internal) or borrows a caller's
// slice (External).
//
// The zero Value is an empty Value of KindNone, ready to use. Values are not
// safe for concurrent use, and must not be copied by value once populated;
// use CopyFrom, DeepCopy or Clone instead.
type Value struct {
	tag      uint8 // Kind+1, so that the zero Value is KindNone
	storage  Storage
	count    uint8
	data     elems // len(data) is the capacity when Internal
	owner    any
	onChange ChangeHandler
}

// New returns an internal Value of the given kind holding count default
// elements.
func New(kind Kind, count int) *Value {
	v := &Value{}
	v.SetType(kind)
	v.SetCount(count)
	return v
}

// Of returns an internal Value holding copies of the given elements. The
// native aliases int and float64 produce KindInteger and KindFloat values.
func Of[T any](values ...T) *Value {
	k := kindFor[T]()
	v := New(k, 0)
	v.Reserve(len(values))
	for _, x := range values {
		pushBack(v, x)
	}
	return v
}

// NewExternal returns a Value borrowing data. The caller keeps ownership of
// data and must keep it alive while the Value is in use.
func NewExternal[T any](owner any, data []T, handler ChangeHandler) *Value {
	v := &Value{owner: owner, onChange: handler}
	SetExternal(v, data)
	return v
}

// SetExternal releases any internal storage of v and makes it borrow data.
func SetExternal[T any](v *Value, data []T) {
	k := kindOf[T]()
	if len(data) > MaxCount {
		panic(usageErrf(ErrCapacity, "SetExternal", k, -1, "%d elements, max %d", len(data), MaxCount))
	}
	v.release()
	v.setKind(k)
	v.storage = External
	v.data = slab[T](data)
	v.count = uint8(len(data))
}

func (v *Value) Kind() Kind {
	if v.tag == 0 {
		return KindNone
	}
	return Kind(v.tag - 1)
}

func (v *Value) setKind(k Kind) {
	if k == KindNone {
		v.tag = 0
	} else {
		v.tag = uint8(k) + 1
	}
}

func (v *Value) Count() int       { return int(v.count) }
func (v *Value) Storage() Storage { return v.storage }
func (v *Value) IsExternal() bool { return v.storage == External }

// IsValid reports whether v has been given a kind.
func (v *Value) IsValid() bool { return v.Kind().IsValid() }

// Capacity returns the number of allocated element slots. For external
// values it is the length of the borrowed slice.
func (v *Value) Capacity() int {
	if v.data == nil {
		return 0
	}
	return v.data.len()
}

// Owner returns the opaque handle passed to the change handler. The Value
// never inspects it.
func (v *Value) Owner() any { return v.owner }

func (v *Value) SetOwner(owner any) { v.owner = owner }

func (v *Value) SetChangeHandler(h ChangeHandler) { v.onChange = h }

// SetType switches v to kind k, destroying all elements. Internal storage is
// released; external storage is abandoned without being touched. A retyped
// Value is always internal and empty. No-op when the kind is unchanged.
func (v *Value) SetType(k Kind) {
	if k == v.Kind() {
		return
	}
	if k != KindNone && !k.IsValid() {
		panic(usageErrf(ErrKindMismatch, "SetType", k, -1, "unknown kind"))
	}
	v.release()
	v.setKind(k)
}

// Reserve grows internal capacity to at least n elements. It never shrinks
// and does nothing for external values.
func (v *Value) Reserve(n int) {
	if v.storage == External || n <= v.Capacity() {
		return
	}
	k := v.Kind()
	if n > MaxCount {
		panic(usageErrf(ErrCapacity, "Reserve", k, n, "max %d elements", MaxCount))
	}
	if k == KindNone {
		panic(usageErrf(ErrKindMismatch, "Reserve", k, -1, "value has no kind"))
	}
	fresh := makeElems(k, n)
	if v.data != nil {
		c := int(v.count)
		v.data.moveTo(fresh, c)
		v.data.clear(0, c)
	}
	v.data = fresh
}

func (v *Value) grow(need int) {
	c := v.Capacity()
	if need <= c {
		return
	}
	if c < 4 {
		c = 4
	}
	for c < need {
		c <<= 1
	}
	v.Reserve(min(c, MaxCount))
}

// SetCount resizes v, default-constructing new slots and destructing removed
// ones. External values cannot be resized.
func (v *Value) SetCount(n int) {
	k := v.Kind()
	if n < 0 || n > MaxCount {
		panic(usageErrf(ErrCapacity, "SetCount", k, n, "max %d elements", MaxCount))
	}
	old := int(v.count)
	if n == old {
		return
	}
	if v.storage == External {
		panic(usageErrf(ErrExternal, "SetCount", k, n, "cannot resize borrowed storage of %d elements", old))
	}
	if n > old {
		v.Reserve(n)
		// slots past count are kept cleared, so they are default-constructed
	} else {
		v.data.clear(n, old)
	}
	v.count = uint8(n)
}

// Destroy releases all elements and storage, keeping the kind.
func (v *Value) Destroy() {
	v.release()
}

func (v *Value) release() {
	if v.storage == Internal && v.data != nil {
		v.data.clear(0, int(v.count))
	}
	v.data = nil
	v.count = 0
	v.storage = Internal
}

func (v *Value) checkIndex(op string, i int) {
	if i < 0 || i >= int(v.count) {
		panic(usageErrf(ErrOutOfRange, op, v.Kind(), i, "count is %d", v.count))
	}
}

// Clone returns an independent internal copy of v, without the owner and
// change handler.
func (v *Value) Clone() *Value {
	c := &Value{}
	c.DeepCopy(v, true)
	return c
}

// DeepCopy makes v a copy of src. When src borrows external storage and
// forceInternal is false, v borrows the same storage; otherwise every
// element is copied into fresh internal storage. The change handler is not
// consulted and owner/handler are kept.
func (v *Value) DeepCopy(src *Value, forceInternal bool) {
	if v == src {
		return
	}
	k, n := src.Kind(), int(src.count)
	if src.storage == External && !forceInternal {
		data := src.data
		v.release()
		v.setKind(k)
		v.storage = External
		v.data = data
		v.count = uint8(n)
		return
	}
	// copy before releasing: src may live inside v's own elements
	var fresh elems
	if n > 0 {
		fresh = makeElems(k, n)
		fresh.copyFrom(src.data, 0, 0, n)
	}
	v.release()
	v.setKind(k)
	v.data = fresh
	v.count = uint8(n)
}

func (v *Value) clone() Value {
	var c Value
	c.DeepCopy(v, true)
	c.owner = v.owner
	c.onChange = v.onChange
	return c
}
