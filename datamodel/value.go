// Package datamodel implements the IPLD value model described in spec.md §3:
// a tagged union over nine kinds, with reference-counted heap payloads for
// the container and shared-bytes kinds, deep structural equality, and a
// debug renderer.
//
// This mirrors the role go-ipld-prime's datamodel.Node interface plays in
// the teacher pack, but is a concrete tagged-union struct rather than an
// interface hierarchy: spec.md asks for explicit ref()/unref() ownership
// transfer semantics, which are easiest to express directly on a value type.
package datamodel

import (
	"fmt"

	"github.com/ipfs/go-cid"
)

// Value is a single IPLD value. It is a small, copyable struct; for the heap
// kinds (string, bytes, list, map, link) the copy shares the same underlying
// node, and callers must go through Ref/Unref to manage its lifetime per
// spec.md §3 "Lifecycle".
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	heap *node
}

// node is the shared, reference-counted payload behind a heap-kind Value.
type node struct {
	refcount int32
	bytes    []byte // string or bytes payload
	list     []Value
	mp       *orderedMap
	link     cid.Cid
}

// Null is the single null Value. It carries no heap payload.
var Null = Value{kind: KindNull}

// NewBool constructs a boolean Value.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewInt constructs an integer Value. Per spec.md §3, callers are
// responsible for keeping values within [-2^63, 2^63-1]; since the payload is
// a native int64, this is automatic in Go.
func NewInt(i int64) Value { return Value{kind: KindInt, i: i} }

// NewFloat constructs a float Value. The constructor does not itself reject
// NaN/Inf (a caller could feed one through from an external computation);
// the invariant that Float kind "never holds NaN or ±∞" is enforced at
// encode time by the dag-cbor/dag-json encoders, which return
// iplderr.UnsupportedValue on such input (spec.md §4.2, §4.3).
func NewFloat(f float64) Value { return Value{kind: KindFloat, f: f} }

// NewString constructs a string Value, copying s's bytes.
func NewString(s string) Value {
	buf := make([]byte, len(s))
	copy(buf, s)
	return Value{kind: KindString, heap: &node{refcount: 1, bytes: buf}}
}

// NewBytes constructs a bytes Value, copying b.
func NewBytes(b []byte) Value {
	buf := make([]byte, len(b))
	copy(buf, b)
	return Value{kind: KindBytes, heap: &node{refcount: 1, bytes: buf}}
}

// NewLink constructs a link Value wrapping an external CID.
func NewLink(c cid.Cid) Value {
	return Value{kind: KindLink, heap: &node{refcount: 1, link: c}}
}

// NewList constructs a list Value from zero or more initial elements. This is
// the "initial values" bulk constructor from spec.md §3 "Lifecycle": it
// consumes its arguments without incrementing their refcounts, permitting
// deeply nested one-expression construction with clear ownership transfer
// (the caller is giving up its handle to each element by passing it here).
func NewList(items ...Value) Value {
	buf := make([]Value, len(items))
	copy(buf, items)
	return Value{kind: KindList, heap: &node{refcount: 1, list: buf}}
}

// NewMap constructs an empty, growable map Value.
func NewMap() Value {
	return Value{kind: KindMap, heap: &node{refcount: 1, mp: newOrderedMap()}}
}

// NewMapFromEntries is the "initial values" bulk constructor for maps: it
// consumes the supplied values without incrementing their refcounts, mirroring
// NewList.
func NewMapFromEntries(keys []string, values []Value) Value {
	if len(keys) != len(values) {
		panic("datamodel: NewMapFromEntries: keys/values length mismatch")
	}
	m := newOrderedMap()
	for i, k := range keys {
		if j, ok := m.idx[k]; ok {
			m.vals[j].Unref()
			m.vals[j] = values[i]
			continue
		}
		m.idx[k] = len(m.keys)
		m.keys = append(m.keys, k)
		m.vals = append(m.vals, values[i])
	}
	return Value{kind: KindMap, heap: &node{refcount: 1, mp: m}}
}

// Kind returns the value's kind tag.
func (v Value) Kind() Kind { return v.kind }

// Ref increments the shared refcount of a heap-kind Value. It is a no-op for
// primitive kinds, which are owned by value.
func (v Value) Ref() {
	if v.heap != nil {
		v.heap.refcount++
	}
}

// Unref decrements the shared refcount of a heap-kind Value, releasing the
// payload (and, for containers, unref'ing children) when it drops to zero.
// Calling Unref on a Value whose count is already zero is a programming
// error, per spec.md §3.
func (v Value) Unref() {
	if v.heap == nil {
		return
	}
	if v.heap.refcount <= 0 {
		panic("datamodel: Unref of a Value with zero refcount")
	}
	v.heap.refcount--
	if v.heap.refcount == 0 {
		switch v.kind {
		case KindList:
			for _, e := range v.heap.list {
				e.Unref()
			}
		case KindMap:
			v.heap.mp.each(func(_ string, e Value) { e.Unref() })
		}
		v.heap.bytes = nil
		v.heap.list = nil
		v.heap.mp = nil
	}
}

// refcount returns the current shared count; used by tests.
func (v Value) refcount() int32 {
	if v.heap == nil {
		return 1
	}
	return v.heap.refcount
}

// AsBool returns the boolean payload, or an error if v is not a bool.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, fmt.Errorf("datamodel: AsBool called on %s value", v.kind)
	}
	return v.b, nil
}

// AsInt returns the integer payload, or an error if v is not an int.
func (v Value) AsInt() (int64, error) {
	if v.kind != KindInt {
		return 0, fmt.Errorf("datamodel: AsInt called on %s value", v.kind)
	}
	return v.i, nil
}

// AsFloat returns the float payload, or an error if v is not a float.
func (v Value) AsFloat() (float64, error) {
	if v.kind != KindFloat {
		return 0, fmt.Errorf("datamodel: AsFloat called on %s value", v.kind)
	}
	return v.f, nil
}

// AsString returns the string payload, or an error if v is not a string.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", fmt.Errorf("datamodel: AsString called on %s value", v.kind)
	}
	return string(v.heap.bytes), nil
}

// AsBytes returns the bytes payload, or an error if v is not bytes.
func (v Value) AsBytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, fmt.Errorf("datamodel: AsBytes called on %s value", v.kind)
	}
	return v.heap.bytes, nil
}

// AsLink returns the wrapped CID, or an error if v is not a link.
func (v Value) AsLink() (cid.Cid, error) {
	if v.kind != KindLink {
		return cid.Undef, fmt.Errorf("datamodel: AsLink called on %s value", v.kind)
	}
	return v.heap.link, nil
}
