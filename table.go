package datum

import "iter"

// KeyedValue is a Value paired with a Key. It is the element type of
// KindTable values, which makes a table an ordered sequence of key→value
// pairs. Tables must not contain themselves, directly or transitively.
type KeyedValue struct {
	Value
	key Key
}

// NewKeyed returns a KeyedValue holding a deep copy of src.
func NewKeyed(key Key, src *Value) KeyedValue {
	kv := KeyedValue{key: key}
	if src != nil {
		kv.DeepCopy(src, true)
	}
	return kv
}

// Field returns a single-element KeyedValue holding x.
func Field[T any](key Key, x T) KeyedValue {
	kv := KeyedValue{key: key}
	Assign(&kv.Value, x)
	return kv
}

func (kv *KeyedValue) Key() Key       { return kv.key }
func (kv *KeyedValue) SetKey(key Key) { kv.key = key }
func (kv *KeyedValue) Val() *Value    { return &kv.Value }

func (kv *KeyedValue) String() string {
	return kv.key.String() + ": " + kv.Value.String()
}

// Equal compares keys first and values second.
func (kv *KeyedValue) Equal(o *KeyedValue) bool {
	return kv.key == o.key && kv.Value.Equal(&o.Value)
}

func (kv *KeyedValue) clone() KeyedValue {
	return KeyedValue{kv.Value.clone(), kv.key}
}

func (v *Value) tableSlab(op string) slab[KeyedValue] {
	v.checkKind(op, KindTable)
	if v.data == nil {
		return nil
	}
	return v.data.(slab[KeyedValue])[:v.count]
}

// Table returns element i of a table. The pointer is invalidated by any
// operation that grows or shrinks v.
func (v *Value) Table(i int) *KeyedValue {
	s := v.tableSlab("Table")
	v.checkIndex("Table", i)
	return &s[i]
}

// PushTable appends a deep copy of kv to a table and returns the stored
// element, or nil if the change handler rejected it. A KindNone value
// becomes a table.
func (v *Value) PushTable(kv KeyedValue) *KeyedValue {
	if !PushBack(v, kv) {
		return nil
	}
	return v.Table(int(v.count) - 1)
}

// Find returns the first element of a table with the given key, or nil.
// Lookups scan linearly; tables are expected to stay small. A KindNone
// value is an empty table.
func (v *Value) Find(key Key) *KeyedValue {
	if v.Kind() == KindNone {
		return nil
	}
	s := v.tableSlab("Find")
	for i := range s {
		if s[i].key == key {
			return &s[i]
		}
	}
	return nil
}

func (v *Value) HasField(key Key) bool {
	return v.Find(key) != nil
}

// Field returns the element with the given key and panics if it is missing.
func (v *Value) Field(key Key) *KeyedValue {
	kv := v.Find(key)
	if kv == nil {
		panic(usageErrf(ErrOutOfRange, "Field", v.Kind(), -1, "no field %v", key))
	}
	return kv
}

// Fields iterates over the keys and elements of a table in order.
func (v *Value) Fields() iter.Seq2[Key, *KeyedValue] {
	return func(yield func(Key, *KeyedValue) bool) {
		if v.Kind() == KindNone {
			return
		}
		s := v.tableSlab("Fields")
		for i := range s {
			if !yield(s[i].key, &s[i]) {
				return
			}
		}
	}
}

// GetField reads the first element of the field with the given key, with
// the same conversions as Get. Missing fields panic.
func GetField[T any](v *Value, key Key) T {
	return Get[T](&v.Field(key).Value, 0)
}

// SetField assigns x to the field with the given key, appending a new
// single-element field when none exists. A KindNone value becomes a table.
func SetField[T any](v *Value, key Key, x T) bool {
	if kv := v.Find(key); kv != nil {
		return Assign(&kv.Value, x)
	}
	return v.PushTable(Field(key, x)) != nil
}

// SetFieldValue assigns a deep copy of src to the field with the given key,
// appending it when missing.
func (v *Value) SetFieldValue(key Key, src *Value) bool {
	if kv := v.Find(key); kv != nil {
		return kv.CopyFrom(src)
	}
	return v.PushTable(NewKeyed(key, src)) != nil
}
