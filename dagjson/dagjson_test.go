package dagjson

import (
	"math"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"

	"github.com/distribution/dagcodec/datamodel"
)

// S2 from spec.md §8: [[],[null,42,true]] carries the same logical Value as
// dagcbor's S1.
func TestScenarioS2(t *testing.T) {
	v := datamodel.NewList(
		datamodel.NewList(),
		datamodel.NewList(datamodel.Null, datamodel.NewInt(42), datamodel.NewBool(true)),
	)
	b, err := EncodeValue(v)
	require.NoError(t, err)
	require.Equal(t, `[[],[null,42,true]]`, string(b))

	decoded, err := DecodeValueBytes(b)
	require.NoError(t, err)
	require.True(t, decoded.Eq(v))
}

// S3 from spec.md §8: a record encodes with lexicographic key order.
func TestScenarioS3RecordKeyOrder(t *testing.T) {
	rec := datamodel.NewMap()
	require.NoError(t, rec.MapSet("id", datamodel.NewInt(10)))
	require.NoError(t, rec.MapSet("email", datamodel.NewString("johndoe@example.com")))

	b, err := EncodeValue(rec)
	require.NoError(t, err)
	require.Equal(t, `{"email":"johndoe@example.com","id":10}`, string(b))

	decoded, err := DecodeValueBytes(b)
	require.NoError(t, err)
	require.True(t, decoded.Eq(rec))
}

// S5 from spec.md §8.
func TestScenarioS5Link(t *testing.T) {
	const s = "bafybeiczsscdsbs7ffqz55asqdf3smv6klcw3gofszvwlyarci47bgf354"
	c, err := cid.Decode(s)
	require.NoError(t, err)

	v := datamodel.NewLink(c)
	b, err := EncodeValue(v)
	require.NoError(t, err)
	require.Equal(t, `{"/":"`+s+`"}`, string(b))

	decoded, err := DecodeValueBytes(b)
	require.NoError(t, err)
	got, err := decoded.AsLink()
	require.NoError(t, err)
	require.True(t, got.Equals(c))
}

// S6 from spec.md §8.
func TestScenarioS6Bytes(t *testing.T) {
	v := datamodel.NewBytes([]byte{1, 2, 3, 4, 5})
	b, err := EncodeValue(v)
	require.NoError(t, err)
	require.Equal(t, `{"/":{"bytes":"AQIDBAU"}}`, string(b))

	decoded, err := DecodeValueBytes(b)
	require.NoError(t, err)
	require.True(t, decoded.Eq(v))
}

// S7 from spec.md §8: FloatDecimalInRange{-1,1}.
func TestScenarioS7FloatFormat(t *testing.T) {
	min, max := -1, 1
	ff := FloatDecimalInRange(&min, &max)

	s, err := ff.Render(100.111)
	require.NoError(t, err)
	require.Equal(t, "1.00111e2", s)

	s, err = ff.Render(10)
	require.NoError(t, err)
	require.Equal(t, "10.0", s)

	s, err = ff.Render(99.99)
	require.NoError(t, err)
	require.Equal(t, "99.99", s)
}

func TestNegativeZeroFloat(t *testing.T) {
	negZero := math.Copysign(0, -1)
	for _, ff := range []FloatFormat{FloatScientific, FloatDecimal} {
		s, err := ff.Render(negZero)
		require.NoError(t, err)
		require.Equal(t, "-0.", s)
	}
}

// S8 from spec.md §8: an out-of-i64-range integer is Overflow.
func TestScenarioS8Overflow(t *testing.T) {
	_, err := DecodeValueBytes([]byte(`[{"foo":"bar"},18446744073709551615]`))
	require.Error(t, err)
}

func TestReservedSlashKeyRejectedInRegularMap(t *testing.T) {
	_, err := DecodeValueBytes([]byte(`{"a":1,"/":2}`))
	require.Error(t, err)

	m := datamodel.NewMap()
	require.NoError(t, m.MapSet("/", datamodel.NewInt(1)))
	_, err = EncodeValue(m)
	require.Error(t, err)
}

func TestExtraneousDataRejected(t *testing.T) {
	_, err := DecodeValueBytes([]byte(`1 2`))
	require.Error(t, err)
}

func TestRoundTripEscapedStrings(t *testing.T) {
	v := datamodel.NewString("line1\nline2\t\"quoted\"\\backslash")
	b, err := EncodeValue(v)
	require.NoError(t, err)
	decoded, err := DecodeValueBytes(b)
	require.NoError(t, err)
	require.True(t, decoded.Eq(v))
}

func TestUnicodeEscapeOption(t *testing.T) {
	v := datamodel.NewString("café")
	opts := EncodeOptions{FloatFormat: FloatDecimal, EscapeUnicode: true}
	b, err := opts.Encode(v)
	require.NoError(t, err)
	require.Equal(t, `"caf\u00e9"`, string(b))

	decoded, err := DecodeValueBytes(b)
	require.NoError(t, err)
	require.True(t, decoded.Eq(v))
}
