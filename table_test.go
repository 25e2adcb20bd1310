package datum

import (
	"strings"
	"testing"
)

func TestTableFields(t *testing.T) {
	v := &Value{}
	eq(t, v.Find(Name("health")) == nil, true)

	eq(t, SetField(v, Name("health"), 100), true)
	eq(t, SetField(v, Name("name"), "Hero"), true)
	eq(t, v.Kind(), KindTable)
	eq(t, v.HasField(Name("health")), true)
	eq(t, GetField[int](v, Name("health")), 100)
	eq(t, v.Find(Name("mana")) == nil, true)
	eq(t, v.Count(), 2)

	eq(t, SetField(v, Name("health"), 90), true)
	eq(t, v.Count(), 2)
	eq(t, GetField[int](v, Name("health")), 90)

	expectPanic(t, ErrOutOfRange, func() { v.Field(Name("mana")) })
	expectPanic(t, ErrKindMismatch, func() { GetField[string](v, Name("health")) })
	expectPanic(t, ErrKindMismatch, func() { Of(1).Find(Name("x")) })
}

func TestTableKeys(t *testing.T) {
	v := &Value{}
	SetField(v, Name("1"), "name")
	SetField(v, ID(1), "id")
	eq(t, v.Count(), 2)
	eq(t, GetField[string](v, Name("1")), "name")
	eq(t, GetField[string](v, ID(1)), "id")

	var zero Key
	eq(t, zero, ID(0))
	eq(t, zero.IsName(), false)
	eq(t, Name("").IsName(), true)
	eq(t, Name("hp").String(), `"hp"`)
	eq(t, ID(-4).String(), "#-4")

	expectPanic(t, ErrOutOfRange, func() { Name(strings.Repeat("x", MaxKeyLen+1)) })
}

func TestTableIteration(t *testing.T) {
	v := &Value{}
	for i := range 5 {
		SetField(v, ID(int32(i)), i*i)
	}
	var keys []int32
	for key, kv := range v.Fields() {
		keys = append(keys, key.IDKey())
		if key.IDKey() == 2 {
			break
		}
		eq(t, kv.Key(), key)
	}
	deepEqual(t, keys, []int32{0, 1, 2})
	eq(t, v.Table(3).Key(), ID(3))
	eq(t, Get[int](v.Table(4).Val(), 0), 16)

	for range (&Value{}).Fields() {
		t.Fatalf("empty value has fields")
	}
}

func TestPushTable(t *testing.T) {
	v := New(KindTable, 0)
	src := Of(1, 2)
	kv := v.PushTable(NewKeyed(Name("list"), src))
	eq(t, kv.Count(), 2)
	Set(src, 0, 100)
	eq(t, Get[int](kv.Val(), 0), 1)

	kv.SetKey(Name("renamed"))
	eq(t, v.HasField(Name("renamed")), true)

	v.SetChangeHandler(func(*Change) bool { return false })
	eq(t, v.PushTable(Field(Name("x"), 1)) == nil, true)
	eq(t, SetField(v, Name("y"), 1), false)
	eq(t, v.Count(), 1)
}

func TestSetFieldValue(t *testing.T) {
	v := &Value{}
	eq(t, v.SetFieldValue(Name("pos"), Of(Vector3{1, 2, 3})), true)
	eq(t, v.SetFieldValue(Name("pos"), Of(Vector3{4, 5, 6}, Vector3{})), true)
	eq(t, v.Count(), 1)
	eq(t, v.Field(Name("pos")).Count(), 2)
	eq(t, Get[Vector3](v.Field(Name("pos")).Val(), 0), Vector3{4, 5, 6})
}

func TestKeyedValueEqual(t *testing.T) {
	a := Field(Name("x"), 1)
	b := Field(Name("x"), 1)
	c := Field(ID(0), 1)
	d := Field(Name("x"), 2)
	eq(t, a.Equal(&b), true)
	eq(t, a.Equal(&c), false)
	eq(t, a.Equal(&d), false)
	eq(t, a.String(), `"x": 1`)
}
