package datum

import (
	"fmt"
	"unsafe"
)

// Kind identifies the element type stored by a Value. The set is closed; the
// numeric values double as wire tags and must never be renumbered.
type Kind uint8

const (
	KindInteger Kind = iota
	KindFloat
	KindBool
	KindString
	KindVector2
	KindVector3
	KindColor
	KindAsset
	KindEnum
	KindByte
	KindTable
	KindPointer

	// KindNone is the kind of the zero Value. It never holds elements.
	KindNone
)

const kindCount = int(KindNone)

var kindNames = [...]string{
	KindInteger: "integer",
	KindFloat:   "float",
	KindBool:    "bool",
	KindString:  "string",
	KindVector2: "vector2",
	KindVector3: "vector3",
	KindColor:   "color",
	KindAsset:   "asset",
	KindEnum:    "enum",
	KindByte:    "byte",
	KindTable:   "table",
	KindPointer: "pointer",
	KindNone:    "none",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsValid reports whether k is one of the element-carrying kinds.
func (k Kind) IsValid() bool {
	return int(k) < kindCount
}

// Size returns the in-memory size of one element of this kind.
func (k Kind) Size() int {
	switch k {
	case KindInteger:
		return 4
	case KindFloat:
		return 4
	case KindBool:
		return 1
	case KindString:
		return int(unsafe.Sizeof(""))
	case KindVector2:
		return int(unsafe.Sizeof(Vector2{}))
	case KindVector3:
		return int(unsafe.Sizeof(Vector3{}))
	case KindColor:
		return int(unsafe.Sizeof(Vector4{}))
	case KindAsset:
		return int(unsafe.Sizeof(Asset(nil)))
	case KindEnum:
		return 4
	case KindByte:
		return 1
	case KindTable:
		return int(unsafe.Sizeof(KeyedValue{}))
	case KindPointer:
		return int(unsafe.Sizeof(Object(nil)))
	default:
		return 0
	}
}

// WireSize returns the encoded size of one element of this kind, or 0 for
// kinds whose elements are variable-width (KindString, KindAsset, KindTable).
func (k Kind) WireSize() int {
	switch k {
	case KindInteger, KindFloat, KindEnum:
		return 4
	case KindBool, KindByte:
		return 1
	case KindVector2:
		return 8
	case KindVector3:
		return 12
	case KindColor:
		return 16
	case KindPointer:
		return pointerWireSize
	default:
		return 0
	}
}

func (k Kind) trivial() bool {
	return k != KindString && k != KindTable
}
