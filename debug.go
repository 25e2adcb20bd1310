package datum

import (
	"strconv"
	"strings"
)

// String renders v in a compact JSON-like form, e.g. {"hp": 100, "pos": (1, 2)}.
// Single-element values render as the bare element, others as [a, b, ...].
func (v *Value) String() string {
	var buf strings.Builder
	dump(&buf, v)
	return buf.String()
}

func dump(buf *strings.Builder, v *Value) {
	k := v.Kind()
	if k == KindNone {
		buf.WriteString("<none>")
		return
	}
	if k == KindTable {
		buf.WriteByte('{')
		for i := range int(v.count) {
			if i > 0 {
				buf.WriteString(", ")
			}
			kv := v.Table(i)
			buf.WriteString(kv.key.String())
			buf.WriteString(": ")
			dump(buf, &kv.Value)
		}
		buf.WriteByte('}')
		return
	}
	if v.count == 1 {
		dumpElem(buf, v.data.at(0))
		return
	}
	buf.WriteByte('[')
	for i := range int(v.count) {
		if i > 0 {
			buf.WriteString(", ")
		}
		dumpElem(buf, v.data.at(i))
	}
	buf.WriteByte(']')
}

func dumpElem(buf *strings.Builder, e any) {
	switch e := e.(type) {
	case int32:
		buf.WriteString(strconv.FormatInt(int64(e), 10))
	case float32:
		writeFloat(buf, e)
	case bool:
		buf.WriteString(strconv.FormatBool(e))
	case string:
		buf.WriteString(strconv.Quote(e))
	case Vector2:
		writeFloats(buf, e.X, e.Y)
	case Vector3:
		writeFloats(buf, e.X, e.Y, e.Z)
	case Vector4:
		writeFloats(buf, e.X, e.Y, e.Z, e.W)
	case uint32:
		buf.WriteString("enum(")
		buf.WriteString(strconv.FormatUint(uint64(e), 10))
		buf.WriteByte(')')
	case uint8:
		buf.WriteString("0x")
		buf.WriteString(strconv.FormatUint(uint64(e), 16))
	case Asset:
		buf.WriteString("asset(")
		buf.WriteString(strconv.Quote(e.AssetName()))
		buf.WriteByte(')')
	case Object:
		buf.WriteString("ptr(")
		buf.WriteString(e.RuntimeType())
		buf.WriteByte(')')
	case nil:
		buf.WriteString("nil")
	default:
		panic("unreachable")
	}
}

func writeFloat(buf *strings.Builder, f float32) {
	buf.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
}

func writeFloats(buf *strings.Builder, fs ...float32) {
	buf.WriteByte('(')
	for i, f := range fs {
		if i > 0 {
			buf.WriteString(", ")
		}
		writeFloat(buf, f)
	}
	buf.WriteByte(')')
}
