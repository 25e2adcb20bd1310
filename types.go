package datum

import (
	"fmt"
	"strconv"
)

type Vector2 struct {
	X, Y float32
}

type Vector3 struct {
	X, Y, Z float32
}

// Vector4 is the element type of KindColor values (R, G, B, A in X..W).
type Vector4 struct {
	X, Y, Z, W float32
}

func (v Vector4) XY() Vector2  { return Vector2{v.X, v.Y} }
func (v Vector4) XYZ() Vector3 { return Vector3{v.X, v.Y, v.Z} }

// Object is a runtime-typed engine object referenced by KindPointer values.
// Values never own or release objects. Implementations must be comparable
// (in practice, pointer types) because equality compares references.
type Object interface {
	RuntimeType() string
}

// Asset is a handle to a loaded asset. KindAsset elements are persisted by
// name and resolved back through an AssetResolver on decode.
type Asset interface {
	Object
	AssetName() string
}

// AssetResolver maps persisted asset names back to handles. LookupAsset
// returns nil for unknown names.
type AssetResolver interface {
	LookupAsset(name string) Asset
}

type AssetResolverFunc func(name string) Asset

func (f AssetResolverFunc) LookupAsset(name string) Asset {
	return f(name)
}

func assetName(a Asset) string {
	if a == nil {
		return ""
	}
	return a.AssetName()
}

// MaxKeyLen is the longest name a Key may carry.
const MaxKeyLen = 255

// Key identifies a KeyedValue within a table: either a name or an integer
// id. Names and ids are separate key spaces. The zero Key is ID(0).
type Key struct {
	name  string
	id    int32
	named bool
}

func Name(name string) Key {
	if len(name) > MaxKeyLen {
		panic(usageErrf(ErrOutOfRange, "key", KindTable, -1, "name key is %d bytes, max %d", len(name), MaxKeyLen))
	}
	return Key{name: name, named: true}
}

func ID(id int32) Key {
	return Key{id: id}
}

func (k Key) IsName() bool    { return k.named }
func (k Key) NameKey() string { return k.name }
func (k Key) IDKey() int32    { return k.id }

func (k Key) String() string {
	if k.named {
		return strconv.Quote(k.name)
	}
	return fmt.Sprintf("#%d", k.id)
}
