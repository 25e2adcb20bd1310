package datum

import "math"

// kindFor is kindOf extended with the native aliases int and float64.
func kindFor[T any]() Kind {
	switch any((*T)(nil)).(type) {
	case *int:
		return KindInteger
	case *float64:
		return KindFloat
	default:
		return kindOf[T]()
	}
}

// elemValue converts x to the element type of its kind.
func elemValue[T any](x T) any {
	switch p := any(&x).(type) {
	case *int:
		if *p < math.MinInt32 || *p > math.MaxInt32 {
			panic(usageErrf(ErrOutOfRange, "convert", KindInteger, -1, "%d does not fit into int32", *p))
		}
		return int32(*p)
	case *float64:
		return float32(*p)
	default:
		return any(x)
	}
}

// store writes x into slot i. The caller has already checked the kind.
func store[T any](v *Value, i int, x T) {
	switch p := any(&x).(type) {
	case *int:
		v.data.(slab[int32])[i] = elemValue(*p).(int32)
	case *float64:
		v.data.(slab[float32])[i] = float32(*p)
	case *KeyedValue:
		v.data.(slab[KeyedValue])[i] = p.clone()
	default:
		v.data.(slab[T])[i] = x
	}
}

// readable reports whether a T can be read from a Value of kind k, either
// directly or through one of the documented coercions.
func readable[T any](k Kind) bool {
	if kindFor[T]() == k {
		return true
	}
	switch any((*T)(nil)).(type) {
	case *float32, *float64, *uint32, *uint8:
		return k == KindInteger
	case *Vector2, *Vector3:
		return k == KindColor
	case *Object:
		return k == KindAsset
	default:
		return false
	}
}

func (v *Value) checkKind(op string, k Kind) {
	if v.Kind() != k {
		panic(usageErrf(ErrKindMismatch, op, v.Kind(), -1, "wanted %v", k))
	}
}

// checkWritable is checkKind that lets KindNone values through. They adopt
// k in pushBack, once the change handler has approved the first element.
func (v *Value) checkWritable(op string, k Kind) {
	if v.Kind() != KindNone {
		v.checkKind(op, k)
	}
}

// Get returns element i as a T. T must match the kind of v, except that
// integers can be read as float32, float64, uint32 and uint8, colors as
// Vector2 and Vector3, and assets as Object. Any other mismatch, and any
// index outside [0, Count), panics.
func Get[T any](v *Value, i int) T {
	if !readable[T](v.Kind()) {
		var zero T
		panic(usageErrf(ErrKindMismatch, "Get", v.Kind(), i, "cannot read as %T", zero))
	}
	v.checkIndex("Get", i)
	if s, ok := v.data.(slab[T]); ok {
		return s[i]
	}
	var out T
	switch p := any(&out).(type) {
	case *int:
		*p = int(v.data.(slab[int32])[i])
	case *float64:
		if v.Kind() == KindFloat {
			*p = float64(v.data.(slab[float32])[i])
		} else {
			*p = float64(v.data.(slab[int32])[i])
		}
	case *float32:
		*p = float32(v.data.(slab[int32])[i])
	case *uint32:
		*p = uint32(v.data.(slab[int32])[i])
	case *uint8:
		*p = uint8(v.data.(slab[int32])[i])
	case *Vector2:
		*p = v.data.(slab[Vector4])[i].XY()
	case *Vector3:
		*p = v.data.(slab[Vector4])[i].XYZ()
	case *Object:
		*p = v.data.(slab[Asset])[i]
	}
	return out
}

// Set overwrites element i with x, after consulting the change handler.
// Setting index Count appends. A KindNone value adopts the kind of T. Set
// returns false if the change handler rejected the write.
func Set[T any](v *Value, i int, x T) bool {
	v.checkWritable("Set", kindFor[T]())
	if i == int(v.count) {
		return pushBack(v, x)
	}
	v.checkIndex("Set", i)
	if !v.approve(OpSet, i, elemValue(x)) {
		return false
	}
	store(v, i, x)
	return true
}

// PushBack appends x, growing internal storage as needed. It panics for
// external values and when the Value already holds MaxCount elements.
func PushBack[T any](v *Value, x T) bool {
	v.checkWritable("PushBack", kindFor[T]())
	return pushBack(v, x)
}

func pushBack[T any](v *Value, x T) bool {
	n := int(v.count)
	if v.storage == External {
		panic(usageErrf(ErrExternal, "PushBack", v.Kind(), n, "cannot grow borrowed storage"))
	}
	if n >= MaxCount {
		panic(usageErrf(ErrCapacity, "PushBack", v.Kind(), n, "max %d elements", MaxCount))
	}
	if !v.approve(OpPush, n, elemValue(x)) {
		return false
	}
	if v.Kind() == KindNone {
		v.SetType(kindFor[T]())
	}
	v.grow(n + 1)
	store(v, n, x)
	v.count++
	return true
}

// Assign makes v hold the single element x. Internal values are retyped and
// resized as needed; external values must already be of the matching kind,
// and only their first element is overwritten.
func Assign[T any](v *Value, x T) bool {
	k := kindFor[T]()
	if v.storage == External {
		v.checkKind("Assign", k)
		v.checkIndex("Assign", 0)
		if !v.approve(OpAssign, 0, elemValue(x)) {
			return false
		}
		store(v, 0, x)
		return true
	}
	if !v.approve(OpAssign, 0, elemValue(x)) {
		return false
	}
	if v.Kind() != k {
		v.SetType(k)
	}
	v.SetCount(1)
	store(v, 0, x)
	return true
}

// CopyFrom assigns src to v. Internal values become a deep copy of src.
// External values keep their borrowed buffer and size: min(Count,
// src.Count) elements are copied into it, which is how a Value writes into
// caller-owned memory. Owner and change handler are kept.
func (v *Value) CopyFrom(src *Value) bool {
	if v == src {
		return true
	}
	if v.storage == External {
		v.checkKind("CopyFrom", src.Kind())
	}
	if !v.approve(OpAssign, -1, src) {
		return false
	}
	if v.storage == External {
		if n := min(int(v.count), int(src.count)); n > 0 {
			v.data.copyFrom(src.data, 0, 0, n)
		}
		return true
	}
	v.DeepCopy(src, true)
	return true
}

// Equal reports whether v and o have the same kind, count and elements.
// Tables compare key by key and value by value, recursively.
func (v *Value) Equal(o *Value) bool {
	if v == o {
		return true
	}
	if v.Kind() != o.Kind() || v.count != o.count {
		return false
	}
	for i := range int(v.count) {
		if !v.data.equalAt(o.data, i) {
			return false
		}
	}
	return true
}

// EqualTo reports whether v holds exactly one element equal to x.
func EqualTo[T any](v *Value, x T) bool {
	if v.Kind() != kindFor[T]() || v.count != 1 {
		return false
	}
	switch p := any(x).(type) {
	case KeyedValue:
		return v.data.(slab[KeyedValue])[0].Equal(&p)
	case int:
		if p < math.MinInt32 || p > math.MaxInt32 {
			return false
		}
	}
	return v.data.at(0) == elemValue(x)
}
