package datamodel

// Kind is the nine-variant tag of the IPLD value union (spec.md §3).
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindList
	KindMap
	KindLink
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindNull:    "null",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindString:  "string",
	KindBytes:   "bytes",
	KindList:    "list",
	KindMap:     "map",
	KindLink:    "link",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// heap reports whether this kind carries a reference-counted heap payload.
func (k Kind) heap() bool {
	switch k {
	case KindString, KindBytes, KindList, KindMap, KindLink:
		return true
	default:
		return false
	}
}
