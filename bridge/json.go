package bridge

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/andreyvit/datum"
)

// MarshalJSON renders v as JSON for diagnostics. Tables become objects in
// field order (id keys are written as "#id"), vectors become arrays, assets
// become {"asset": name} and runtime objects {"object": type}. The output is
// not meant to be decoded back.
func MarshalJSON(v *datum.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, ToScript(v)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, x any) error {
	switch x := x.(type) {
	case *Table:
		buf.WriteByte('{')
		for i, key := range x.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			name := key.NameKey()
			if !key.IsName() {
				name = "#" + strconv.Itoa(int(key.IDKey()))
			}
			if err := writeJSON(buf, name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, x.Values[i]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case datum.Vector2:
		return writeJSON(buf, []any{x.X, x.Y})
	case datum.Vector3:
		return writeJSON(buf, []any{x.X, x.Y, x.Z})
	case datum.Vector4:
		return writeJSON(buf, []any{x.X, x.Y, x.Z, x.W})
	case AssetName:
		return writeRawJSON(buf, map[string]string{"asset": string(x)})
	case datum.Object:
		return writeRawJSON(buf, map[string]string{"object": x.RuntimeType()})
	default:
		return writeRawJSON(buf, x)
	}
}

func writeRawJSON(buf *bytes.Buffer, x any) error {
	raw, err := json.Marshal(x)
	if err != nil {
		return err
	}
	buf.Write(raw)
	return nil
}
