/*
Package datum implements Value (a “datum”), the dynamically typed value
container the engine uses for object properties, scripting interop and
persisted asset data.

A Value is an array of up to 255 elements of a single Kind:

1. Scalars: integers, floats, bools, enums and bytes.

2. Strings, 2D/3D vectors and colors.

3. References: assets (persisted by name) and runtime objects (never
persisted).

4. Tables, whose elements are KeyedValues (nested Values paired with a name
or integer key), turning a Value into a JSON-like tree.

# Storage

**Internal** values own their backing array and grow it on demand (PushBack,
SetCount, Set at index Count).

**External** values borrow a slice supplied by the caller (NewExternal,
SetExternal). They never grow or shrink, and every write lands in the
caller's slice. The caller must keep the slice alive.

Programming errors (wrong kind, index out of range, growing past 255 elements
or growing borrowed storage) panic with a *UsageError. A change handler can
veto writes; vetoed writes report false and leave the Value untouched.

# Binary encoding

	value -> kind:8 count:8 element*

Integers, floats, enums and vector components are little-endian and
fixed-width; bools and bytes take one byte; strings and asset names are
prefixed with a u32 length; pointers are written as four zero bytes and
decode to nil. Table elements are encoded as

	element -> key value
	key     -> 0:8 id:32 | 1:8 len:8 name

SerializationSize always equals the number of bytes WriteStream produces.
Decoding either fully succeeds or leaves the destination untouched.
*/
package datum
