// Package bridge converts Values to and from the loosely typed trees a
// scripting runtime works with, and encodes those trees as msgpack (for
// script interop) or JSON (for diagnostics).
//
// The script form of a Value is:
//
//   - nil for a Value without a kind;
//   - a *Table for tables, preserving field order;
//   - the bare element for single-element values;
//   - a []any of elements otherwise.
//
// Elements are int32, float32, bool, string, datum.Vector2, datum.Vector3,
// datum.Vector4, AssetName, uint32 (enums), uint8 (bytes) and datum.Object.
// Empty non-table values come back as values without a kind.
package bridge

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/andreyvit/datum"
)

var ErrUnsupported = errors.New("unsupported script value")

// AssetName is the script form of an asset reference.
type AssetName string

// Table is the script form of a table value: an ordered list of fields.
type Table struct {
	Keys   []datum.Key
	Values []any
}

func (t *Table) Len() int { return len(t.Keys) }

// Get returns the first field with the given key.
func (t *Table) Get(key datum.Key) (any, bool) {
	if i := slices.Index(t.Keys, key); i >= 0 {
		return t.Values[i], true
	}
	return nil, false
}

// Set replaces the first field with the given key, or appends one.
func (t *Table) Set(key datum.Key, x any) {
	if i := slices.Index(t.Keys, key); i >= 0 {
		t.Values[i] = x
		return
	}
	t.Keys = append(t.Keys, key)
	t.Values = append(t.Values, x)
}

// ToScript returns the script form of v. The result shares nothing with v.
func ToScript(v *datum.Value) any {
	n := v.Count()
	switch {
	case v.Kind() == datum.KindNone:
		return nil
	case v.Kind() == datum.KindTable:
		t := &Table{
			Keys:   make([]datum.Key, 0, n),
			Values: make([]any, 0, n),
		}
		for key, kv := range v.Fields() {
			t.Keys = append(t.Keys, key)
			t.Values = append(t.Values, ToScript(kv.Val()))
		}
		return t
	case n == 1:
		return scriptElem(v, 0)
	default:
		out := make([]any, n)
		for i := range out {
			out[i] = scriptElem(v, i)
		}
		return out
	}
}

func scriptElem(v *datum.Value, i int) any {
	switch v.Kind() {
	case datum.KindInteger:
		return datum.Get[int32](v, i)
	case datum.KindFloat:
		return datum.Get[float32](v, i)
	case datum.KindBool:
		return datum.Get[bool](v, i)
	case datum.KindString:
		return datum.Get[string](v, i)
	case datum.KindVector2:
		return datum.Get[datum.Vector2](v, i)
	case datum.KindVector3:
		return datum.Get[datum.Vector3](v, i)
	case datum.KindColor:
		return datum.Get[datum.Vector4](v, i)
	case datum.KindAsset:
		if a := datum.Get[datum.Asset](v, i); a != nil {
			return AssetName(a.AssetName())
		}
		return AssetName("")
	case datum.KindEnum:
		return datum.Get[uint32](v, i)
	case datum.KindByte:
		return datum.Get[uint8](v, i)
	case datum.KindPointer:
		return datum.Get[datum.Object](v, i)
	default:
		panic("unreachable")
	}
}

// FromScript builds a Value from its script form. Besides the element types
// ToScript produces, it accepts int, int64 and float64 (as integers and
// floats), datum.Asset handles and map[string]any (as a table with sorted
// keys). Asset names are resolved through assets, which may be nil.
func FromScript(x any, assets datum.AssetResolver) (*datum.Value, error) {
	return fromScript(x, assets, 0)
}

func fromScript(x any, assets datum.AssetResolver, depth int) (*datum.Value, error) {
	v := &datum.Value{}
	switch x := x.(type) {
	case nil:
		return v, nil
	case *Table:
		if depth >= datum.MaxDepth {
			return nil, fmt.Errorf("%w: tables nested deeper than %d", ErrUnsupported, datum.MaxDepth)
		}
		if len(x.Keys) != len(x.Values) {
			return nil, fmt.Errorf("%w: table has %d keys and %d values", ErrUnsupported, len(x.Keys), len(x.Values))
		}
		if len(x.Keys) > datum.MaxCount {
			return nil, fmt.Errorf("%w: table has %d fields, max %d", ErrUnsupported, len(x.Keys), datum.MaxCount)
		}
		v.SetType(datum.KindTable)
		v.Reserve(len(x.Keys))
		for i, key := range x.Keys {
			sub, err := fromScript(x.Values[i], assets, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", key, err)
			}
			v.PushTable(datum.NewKeyed(key, sub))
		}
		return v, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		t := &Table{}
		for _, k := range keys {
			if len(k) > datum.MaxKeyLen {
				return nil, fmt.Errorf("%w: key %q longer than %d bytes", ErrUnsupported, k, datum.MaxKeyLen)
			}
			t.Set(datum.Name(k), x[k])
		}
		return fromScript(t, assets, depth)
	case []any:
		if len(x) > datum.MaxCount {
			return nil, fmt.Errorf("%w: %d elements, max %d", ErrUnsupported, len(x), datum.MaxCount)
		}
		for i, e := range x {
			if err := pushScript(v, e, assets); err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return v, nil
	default:
		if err := pushScript(v, x, assets); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func scriptKind(x any) (datum.Kind, bool) {
	switch x.(type) {
	case int32, int, int64:
		return datum.KindInteger, true
	case float32, float64:
		return datum.KindFloat, true
	case bool:
		return datum.KindBool, true
	case string:
		return datum.KindString, true
	case datum.Vector2:
		return datum.KindVector2, true
	case datum.Vector3:
		return datum.KindVector3, true
	case datum.Vector4:
		return datum.KindColor, true
	case AssetName, datum.Asset:
		return datum.KindAsset, true
	case uint32:
		return datum.KindEnum, true
	case uint8:
		return datum.KindByte, true
	case datum.Object:
		return datum.KindPointer, true
	default:
		return datum.KindNone, false
	}
}

func pushScript(v *datum.Value, x any, assets datum.AssetResolver) error {
	k, ok := scriptKind(x)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupported, x)
	}
	if v.Kind() != datum.KindNone && v.Kind() != k {
		return fmt.Errorf("%w: %v element in a %v array", ErrUnsupported, k, v.Kind())
	}
	switch x := x.(type) {
	case int32:
		datum.PushBack(v, x)
	case int:
		return pushInt(v, int64(x))
	case int64:
		return pushInt(v, x)
	case float32:
		datum.PushBack(v, x)
	case float64:
		datum.PushBack(v, float32(x))
	case bool:
		datum.PushBack(v, x)
	case string:
		datum.PushBack(v, x)
	case datum.Vector2:
		datum.PushBack(v, x)
	case datum.Vector3:
		datum.PushBack(v, x)
	case datum.Vector4:
		datum.PushBack(v, x)
	case AssetName:
		var a datum.Asset
		if x != "" && assets != nil {
			a = assets.LookupAsset(string(x))
		}
		datum.PushBack(v, a)
	case datum.Asset:
		datum.PushBack(v, x)
	case uint32:
		datum.PushBack(v, x)
	case uint8:
		datum.PushBack(v, x)
	case datum.Object:
		datum.PushBack(v, x)
	}
	return nil
}

func pushInt(v *datum.Value, n int64) error {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return fmt.Errorf("%w: integer %d does not fit into int32", ErrUnsupported, n)
	}
	datum.PushBack(v, int32(n))
	return nil
}
