package datum

import (
	"math"
	"testing"
)

func TestGetCoercions(t *testing.T) {
	i := Of[int32](-3, 200)
	eq(t, Get[int](i, 0), -3)
	eq(t, Get[float32](i, 0), float32(-3))
	eq(t, Get[float64](i, 1), float64(200))
	eq(t, Get[uint32](i, 1), uint32(200))
	eq(t, Get[uint8](i, 1), uint8(200))

	c := Of(Vector4{1, 0.5, 0, 1})
	eq(t, Get[Vector3](c, 0), Vector3{1, 0.5, 0})
	eq(t, Get[Vector2](c, 0), Vector2{1, 0.5})
	eq(t, Get[Vector4](c, 0), Vector4{1, 0.5, 0, 1})

	a := Of[Asset](testAsset("x"))
	eq(t, Get[Object](a, 0), Object(testAsset("x")))

	f := Of(0.25)
	eq(t, f.Kind(), KindFloat)
	eq(t, Get[float64](f, 0), 0.25)

	expectPanic(t, ErrKindMismatch, func() { Get[string](i, 0) })
	expectPanic(t, ErrKindMismatch, func() { Get[int32](f, 0) })
	expectPanic(t, ErrKindMismatch, func() { Get[Vector4](Of(Vector3{}), 0) })
	expectPanic(t, ErrKindMismatch, func() { Get[Asset](Of[Object](&testObject{}), 0) })
	expectPanic(t, ErrOutOfRange, func() { Get[int32](i, 2) })
	expectPanic(t, ErrOutOfRange, func() { Get[int32](i, -1) })
}

func TestSet(t *testing.T) {
	var v Value
	eq(t, Set(&v, 0, "a"), true)
	eq(t, v.Kind(), KindString)
	eq(t, Set(&v, 1, "b"), true)
	eq(t, Set(&v, 0, "c"), true)
	eq(t, v.Count(), 2)
	eq(t, Get[string](&v, 0), "c")

	expectPanic(t, ErrOutOfRange, func() { Set(&v, 3, "x") })
	expectPanic(t, ErrKindMismatch, func() { Set(&v, 0, 1) })
	expectPanic(t, ErrOutOfRange, func() { Set(Of(1), 0, math.MaxInt32+1) })
}

func TestRejectedWriteKeepsNoneKind(t *testing.T) {
	var calls int
	reject := func(chg *Change) bool {
		calls++
		eq(t, chg.Op(), OpPush)
		eq(t, chg.Index(), 0)
		return false
	}

	v := &Value{}
	v.SetChangeHandler(reject)
	eq(t, Set(v, 0, int32(5)), false)
	eq(t, v.Kind(), KindNone)
	eq(t, PushBack(v, "a"), false)
	eq(t, v.Kind(), KindNone)
	eq(t, SetField(v, Name("hp"), 1), false)
	eq(t, v.Kind(), KindNone)
	eq(t, v.PushTable(Field(ID(1), 2.5)), (*KeyedValue)(nil))
	eq(t, v.Kind(), KindNone)
	eq(t, v.Count(), 0)
	eq(t, calls, 4)

	v.SetChangeHandler(nil)
	eq(t, Set(v, 0, int32(5)), true)
	eq(t, v.Kind(), KindInteger)
	eq(t, Get[int32](v, 0), 5)
}

func TestAssign(t *testing.T) {
	v := Of("a", "b", "c")
	eq(t, Assign(v, Vector2{1, 2}), true)
	eq(t, v.Kind(), KindVector2)
	eq(t, v.Count(), 1)
	eq(t, EqualTo(v, Vector2{1, 2}), true)

	eq(t, Assign(v, Vector2{3, 4}), true)
	eq(t, v.Count(), 1)
	eq(t, Get[Vector2](v, 0), Vector2{3, 4})
}

func TestEqual(t *testing.T) {
	eq(t, Of(1, 2).Equal(Of[int32](1, 2)), true)
	eq(t, Of(1, 2).Equal(Of(1, 3)), false)
	eq(t, Of(1, 2).Equal(Of(1)), false)
	eq(t, Of[int32](1).Equal(Of[uint32](1)), false)
	eq(t, (&Value{}).Equal(&Value{}), true)
	eq(t, New(KindString, 0).Equal(&Value{}), false)

	o := &testObject{}
	eq(t, Of[Object](o).Equal(Of[Object](o)), true)
	eq(t, Of[Object](o).Equal(Of[Object](&testObject{})), false)

	eq(t, EqualTo(Of(5), 5), true)
	eq(t, EqualTo(Of(5), int32(5)), true)
	eq(t, EqualTo(Of(5), 6), false)
	eq(t, EqualTo(Of(1), math.MaxInt32+1), false)
	eq(t, EqualTo(Of(-1), math.MinInt32-1), false)
	eq(t, EqualTo(Of(5, 5), 5), false)
	eq(t, EqualTo(Of(5), float32(5)), false)
	eq(t, EqualTo(Of(0.5), 0.5), true)
	eq(t, EqualTo(Of("x"), "x"), true)
}

func TestKindInfo(t *testing.T) {
	eq(t, KindInteger.String(), "integer")
	eq(t, KindNone.String(), "none")
	eq(t, Kind(99).String(), "kind(99)")
	eq(t, KindPointer.IsValid(), true)
	eq(t, KindNone.IsValid(), false)

	eq(t, KindInteger.Size(), 4)
	eq(t, KindColor.Size(), 16)
	eq(t, KindNone.Size(), 0)

	eq(t, KindBool.WireSize(), 1)
	eq(t, KindVector3.WireSize(), 12)
	eq(t, KindPointer.WireSize(), 4)
	eq(t, KindString.WireSize(), 0)
	eq(t, KindTable.WireSize(), 0)
}
