package dagcbor

import (
	"bytes"
	"encoding/hex"
	"io"
	"math"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"

	"github.com/distribution/dagcodec/datamodel"
)

func bytesReader(b []byte) io.Reader { return bytes.NewReader(b) }

// S1 from spec.md §8: [[], [null, 42, true]] <-> 82 80 83 F6 18 2A F5
func TestScenarioS1(t *testing.T) {
	v := datamodel.NewList(
		datamodel.NewList(),
		datamodel.NewList(datamodel.Null, datamodel.NewInt(42), datamodel.NewBool(true)),
	)

	got, err := EncodeValue(v)
	require.NoError(t, err)
	want, err := hex.DecodeString("828083F6182AF5")
	require.NoError(t, err)
	require.Equal(t, want, got)

	decoded, err := DecodeValueBytes(want)
	require.NoError(t, err)
	require.True(t, decoded.Eq(v))
}

// S4 from spec.md §8: i64::MIN and i64::MAX both carry the 8-byte argument
// 0x7FFFFFFFFFFFFFFF, but on different major types (RFC 8949 negative-int
// framing: -1-N on major 1). spec.md's own text lists "1B ..." for both and
// only distinguishes MAX "with major 0"; read literally that would give MIN
// and MAX identical bytes, which can't round-trip two different values. We
// follow RFC 8949's actual major-1 framing for negative integers here (see
// DESIGN.md) rather than the apparent copy/paste in the spec prose.
func TestScenarioS4IntegerBoundaries(t *testing.T) {
	min := datamodel.NewInt(math.MinInt64)
	got, err := EncodeValue(min)
	require.NoError(t, err)
	want, err := hex.DecodeString("3b7fffffffffffffff")
	require.NoError(t, err)
	require.Equal(t, want, got)

	decoded, err := DecodeValueBytes(want)
	require.NoError(t, err)
	require.True(t, decoded.Eq(min))

	max := datamodel.NewInt(math.MaxInt64)
	got, err = EncodeValue(max)
	require.NoError(t, err)
	want, err = hex.DecodeString("1b7fffffffffffffff")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestRoundTripScalarsAndContainers(t *testing.T) {
	cases := []datamodel.Value{
		datamodel.Null,
		datamodel.NewBool(true),
		datamodel.NewBool(false),
		datamodel.NewInt(0),
		datamodel.NewInt(-1),
		datamodel.NewInt(23),
		datamodel.NewInt(24),
		datamodel.NewInt(255),
		datamodel.NewInt(256),
		datamodel.NewInt(65535),
		datamodel.NewInt(65536),
		datamodel.NewFloat(3.141592653589793),
		datamodel.NewFloat(0),
		datamodel.NewFloat(math.Copysign(0, -1)),
		datamodel.NewString("hello"),
		datamodel.NewString(""),
		datamodel.NewBytes([]byte{1, 2, 3, 4, 5}),
	}
	for _, v := range cases {
		b, err := EncodeValue(v)
		require.NoError(t, err)
		got, err := DecodeValueBytes(b)
		require.NoError(t, err)
		require.True(t, got.Eq(v), "round trip mismatch for %s", v.String())

		// Idempotence of re-encoding canonical bytes (spec.md §8 property 6).
		b2, err := EncodeValue(got)
		require.NoError(t, err)
		require.Equal(t, b, b2)
	}
}

func TestMapCanonicalKeyOrder(t *testing.T) {
	m := datamodel.NewMap()
	require.NoError(t, m.MapSet("bb", datamodel.NewInt(1)))
	require.NoError(t, m.MapSet("a", datamodel.NewInt(2)))
	require.NoError(t, m.MapSet("c", datamodel.NewInt(3)))

	b, err := EncodeValue(m)
	require.NoError(t, err)

	// "a","c" (len 1, lex a<c) then "bb" (len 2) -> a, c, bb
	dec, err := DecodeValueBytes(b)
	require.NoError(t, err)
	keys, err := dec.MapKeys()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c", "bb"}, keys)
}

func TestStrictRejectsNonMinimalArgument(t *testing.T) {
	// 0x18 0x05 encodes the integer 5 using the 1-byte follow-up form,
	// which is non-minimal (5 < 24 should use the direct form 0x05).
	b, err := hex.DecodeString("1805")
	require.NoError(t, err)

	_, err = DecodeValueBytes(b)
	require.Error(t, err)

	lenient := DecodeOptions{Strict: false}
	v, err := lenient.Decode(bytesReader(b))
	require.NoError(t, err)
	i, err := v.AsInt()
	require.NoError(t, err)
	require.EqualValues(t, 5, i)
}

func TestStrictRejectsNonCanonicalMapOrder(t *testing.T) {
	// Hand-construct out-of-order bytes: map(2){"c":1,"a":2}
	b := []byte{0xa2, 0x61, 'c', 0x01, 0x61, 'a', 0x02}
	_, err := DecodeValueBytes(b)
	require.Error(t, err)

	lenient := DecodeOptions{Strict: false}
	v, err := lenient.Decode(bytesReader(b))
	require.NoError(t, err)
	require.True(t, v.Kind() == datamodel.KindMap)
}

func TestExtraneousDataIsRejected(t *testing.T) {
	b, err := EncodeValue(datamodel.NewInt(1))
	require.NoError(t, err)
	b = append(b, 0x00)
	_, err = DecodeValueBytes(b)
	require.Error(t, err)
}

func TestUndefinedIsAlwaysAnError(t *testing.T) {
	// major 7, additional-info 23 (simple value `undefined`).
	b := []byte{0xf7}
	_, err := DecodeValueBytes(b)
	require.Error(t, err)

	lenient := DecodeOptions{Strict: false}
	_, err = lenient.Decode(bytesReader(b))
	require.Error(t, err, "spec.md decision: undefined is always an error, even leniently")
}

func TestEncodeRejectsNaNAndInfinity(t *testing.T) {
	_, err := EncodeValue(datamodel.NewFloat(math.NaN()))
	require.Error(t, err)
	_, err = EncodeValue(datamodel.NewFloat(math.Inf(1)))
	require.Error(t, err)
}

func TestLinkRoundTrip(t *testing.T) {
	mh, err := multihash.Sum([]byte("hello world"), multihash.SHA2_256, -1)
	require.NoError(t, err)
	c := cid.NewCidV1(cid.DagCBOR, mh)

	v := datamodel.NewLink(c)
	b, err := EncodeValue(v)
	require.NoError(t, err)

	dec, err := DecodeValueBytes(b)
	require.NoError(t, err)
	got, err := dec.AsLink()
	require.NoError(t, err)
	require.True(t, got.Equals(c))
}

func TestOverflowOnDecode(t *testing.T) {
	// major 0 (unsigned), 8-byte form, value 2^64-1: out of i64 range.
	b := []byte{0x1b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	_, err := DecodeValueBytes(b)
	require.Error(t, err)
}
