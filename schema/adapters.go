// Package schema implements the schema-driven generator described in
// spec.md §4.4: given a static Go type, EncodeType/DecodeType derive bytes
// that byte-match what dagcbor/dagjson would produce for the corresponding
// datamodel.Value, without requiring callers to build that Value by hand.
//
// Grounded on go-ipld-prime's bindnode package (vendored in the teacher
// pack), which performs the analogous static-type-to-Node projection via
// reflection over Go structs annotated with a schema.Type. This package
// narrows that idea to spec.md's own type-to-kind table and adapter
// vocabulary rather than importing bindnode's schema DSL.
package schema

// Enum is implemented by Go types that represent an IPLD enumeration.
// IPLDKind reports the wire representation: "integer" (default if the type
// does not implement Enum at all) or "string".
type Enum interface {
	IPLDKind() string
}

// IntEnum is an Enum whose wire representation is the tag value of its
// underlying integer.
type IntEnum interface {
	Enum
	EnumInt() int64
	SetEnumInt(int64) error
}

// StringEnum is an Enum whose wire representation is its variant name.
type StringEnum interface {
	Enum
	EnumString() string
	SetEnumString(string) error
}

// enumIntGetter and enumStringGetter split the getter half off IntEnum and
// StringEnum for the encode path. SetEnumInt/SetEnumString are necessarily
// pointer-receiver methods (they mutate the enum in place), so a plain,
// non-addressable Go value — e.g. a struct field read via reflection off a
// reflect.Value obtained from a by-value argument — satisfies the getter
// alone, not the full IntEnum/StringEnum interface. toValue dispatches
// against these instead, since encoding never needs to mutate anything.
type enumIntGetter interface {
	EnumInt() int64
}

type enumStringGetter interface {
	EnumString() string
}

// IntEncoder is a custom adapter per spec.md §4.4 "encode_integer(self) ->
// i64".
type IntEncoder interface {
	EncodeIPLDInt() int64
}

// IntDecoder is the decode half of IntEncoder ("decode_integer(i64) ->
// Self").
type IntDecoder interface {
	DecodeIPLDInt(int64) error
}

// StringEncoder is a custom adapter per spec.md §4.4 "write_string(self,
// writer)".
type StringEncoder interface {
	EncodeIPLDString() (string, error)
}

// StringDecoder is the decode half of StringEncoder ("parse_string(alloc,
// &str) -> Self").
type StringDecoder interface {
	DecodeIPLDString(string) error
}

// BytesEncoder is a custom adapter per spec.md §4.4 "write_bytes(self,
// writer)".
type BytesEncoder interface {
	EncodeIPLDBytes() ([]byte, error)
}

// BytesDecoder is the decode half of BytesEncoder ("parse_bytes(alloc,
// &[u8]) -> Self").
type BytesDecoder interface {
	DecodeIPLDBytes([]byte) error
}
