package datamodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarEquality(t *testing.T) {
	require.True(t, NewInt(42).Eq(NewInt(42)))
	require.False(t, NewInt(42).Eq(NewInt(43)))
	require.True(t, Null.Eq(Null))
	require.False(t, NewBool(true).Eq(NewBool(false)))
	require.False(t, NewInt(1).Eq(NewFloat(1)))
}

func TestStringBytesEquality(t *testing.T) {
	require.True(t, NewString("abc").Eq(NewString("abc")))
	require.False(t, NewString("abc").Eq(NewString("abd")))
	require.True(t, NewBytes([]byte{1, 2, 3}).Eq(NewBytes([]byte{1, 2, 3})))
	require.False(t, NewBytes([]byte{1, 2, 3}).Eq(NewString("\x01\x02\x03")))
}

func TestListMutationAndRefcount(t *testing.T) {
	inner := NewString("x")
	require.EqualValues(t, 1, inner.refcount())

	l := NewList()
	require.NoError(t, l.Append(inner))
	require.EqualValues(t, 2, inner.refcount(), "Append should take a ref")

	n, err := l.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := l.Remove(0)
	require.NoError(t, err)
	require.True(t, got.Eq(inner))
	require.EqualValues(t, 1, inner.refcount(), "Remove should drop the ref")
}

func TestListInitialValuesDoesNotDoubleRef(t *testing.T) {
	a := NewString("a")
	b := NewString("b")
	l := NewList(a, b)
	require.EqualValues(t, 1, a.refcount(), "bulk constructor must not increment")
	require.EqualValues(t, 1, b.refcount())

	n, err := l.Len()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestMapSetOverwriteUnrefsOld(t *testing.T) {
	m := NewMap()
	old := NewString("old")
	require.NoError(t, m.MapSet("k", old))
	require.EqualValues(t, 2, old.refcount())

	require.NoError(t, m.MapSet("k", NewString("new")))
	require.EqualValues(t, 1, old.refcount(), "overwrite must unref the prior value")

	v, ok, err := m.MapGet("k")
	require.NoError(t, err)
	require.True(t, ok)
	s, err := v.AsString()
	require.NoError(t, err)
	require.Equal(t, "new", s)
}

func TestMapEqualityIsOrderIndependent(t *testing.T) {
	a := NewMap()
	require.NoError(t, a.MapSet("x", NewInt(1)))
	require.NoError(t, a.MapSet("y", NewInt(2)))

	b := NewMap()
	require.NoError(t, b.MapSet("y", NewInt(2)))
	require.NoError(t, b.MapSet("x", NewInt(1)))

	require.True(t, a.Eq(b))
}

func TestMapSort(t *testing.T) {
	m := NewMap()
	require.NoError(t, m.MapSet("bb", NewInt(1)))
	require.NoError(t, m.MapSet("a", NewInt(2)))
	require.NoError(t, m.MapSet("ccc", NewInt(3)))

	require.NoError(t, m.MapSort(func(a, b string) bool {
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	}))

	keys, err := m.MapKeys()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "bb", "ccc"}, keys)
}

func TestExpectEq(t *testing.T) {
	require.NoError(t, NewInt(1).ExpectEq(NewInt(1)))
	require.Error(t, NewInt(1).ExpectEq(NewInt(2)))
}

func TestDebugRendering(t *testing.T) {
	l := NewList(NewNullForTest(), NewInt(42), NewBool(true))
	require.Equal(t, "[null,42,true]", l.String())
}

// NewNullForTest exists only so the debug-rendering test above reads
// symmetrically; Null is already exported as a value.
func NewNullForTest() Value { return Null }
