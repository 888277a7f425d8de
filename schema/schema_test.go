package schema

import (
	"fmt"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

type Person struct {
	ID    int64  `ipld:"id"`
	Email string `ipld:"email"`
}

// TestRecordCanonicalFieldOrder matches spec.md §8 S3: a record with fields
// declared id-then-email emits with email first, since "email" < "id"
// lexicographically.
func TestRecordCanonicalFieldOrder(t *testing.T) {
	p := Person{ID: 10, Email: "johndoe@example.com"}

	b, err := EncodeType(FormatDagJSON, p, DefaultOptions)
	require.NoError(t, err)
	require.Equal(t, `{"email":"johndoe@example.com","id":10}`, string(b))

	res, err := DecodeType[Person](FormatDagJSON, b, DefaultOptions)
	require.NoError(t, err)
	defer res.Release()
	require.Equal(t, p, res.Value)
}

func TestRecordRejectsOutOfOrderFieldsInStrictMode(t *testing.T) {
	_, err := DecodeType[Person](FormatDagJSON, []byte(`{"id":10,"email":"a@b.com"}`), DefaultOptions)
	require.Error(t, err)
}

func TestRecordAcceptsAnyPermutationInLenientMode(t *testing.T) {
	opts := Options{Strict: false, MaxDepth: 10000}
	res, err := DecodeType[Person](FormatDagJSON, []byte(`{"id":10,"email":"a@b.com"}`), opts)
	require.NoError(t, err)
	defer res.Release()
	require.Equal(t, Person{ID: 10, Email: "a@b.com"}, res.Value)
}

func TestRecordRejectsMissingField(t *testing.T) {
	_, err := DecodeType[Person](FormatDagJSON, []byte(`{"id":10}`), Options{Strict: false, MaxDepth: 10000})
	require.Error(t, err)
}

type Document struct {
	Title    string   `ipld:"title"`
	Tags     []string `ipld:"tags"`
	Parent   *Document
	Checksum Hash `ipld:"checksum"`
	Root     cid.Cid
}

// Hash is a custom type dispatched through the bytes adapter interfaces
// (spec.md §4.4 "custom type with declared adapters").
type Hash struct {
	data []byte
}

func (h Hash) EncodeIPLDBytes() ([]byte, error) { return h.data, nil }

func (h *Hash) DecodeIPLDBytes(b []byte) error {
	h.data = append([]byte(nil), b...)
	return nil
}

func testCID(t *testing.T) cid.Cid {
	t.Helper()
	mh, err := multihash.Sum([]byte("hello world"), multihash.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(cid.DagCBOR, mh)
}

func TestNestedStructWithOptionalSliceBytesAndLink(t *testing.T) {
	c := testCID(t)
	doc := Document{
		Title:    "root",
		Tags:     []string{"a", "b", "c"},
		Parent:   nil,
		Checksum: Hash{data: []byte{0xde, 0xad, 0xbe, 0xef}},
		Root:     c,
	}

	for _, format := range []Format{FormatDagCBOR, FormatDagJSON} {
		b, err := EncodeType(format, doc, DefaultOptions)
		require.NoError(t, err, "format %d", format)

		res, err := DecodeType[Document](format, b, DefaultOptions)
		require.NoError(t, err, "format %d", format)
		defer res.Release()

		require.Equal(t, doc.Title, res.Value.Title)
		require.Equal(t, doc.Tags, res.Value.Tags)
		require.Nil(t, res.Value.Parent)
		require.Equal(t, doc.Checksum.data, res.Value.Checksum.data)
		require.True(t, res.Value.Root.Equals(c))
	}
}

func TestOptionalPointerPopulated(t *testing.T) {
	parent := &Document{Title: "parent", Tags: nil, Checksum: Hash{}, Root: testCID(t)}
	doc := Document{Title: "child", Tags: []string{}, Parent: parent, Checksum: Hash{}, Root: testCID(t)}

	b, err := EncodeType(FormatDagCBOR, doc, DefaultOptions)
	require.NoError(t, err)

	res, err := DecodeType[Document](FormatDagCBOR, b, DefaultOptions)
	require.NoError(t, err)
	defer res.Release()

	require.NotNil(t, res.Value.Parent)
	require.Equal(t, "parent", res.Value.Parent.Title)
}

// Severity is an enumeration with a string IPLD representation (spec.md
// §4.4 "Enumeration representation").
type Severity int

const (
	SeverityLow Severity = iota
	SeverityHigh
)

func (s Severity) IPLDKind() string { return "string" }

func (s Severity) EnumString() string {
	if s == SeverityHigh {
		return "high"
	}
	return "low"
}

func (s *Severity) SetEnumString(v string) error {
	switch v {
	case "high":
		*s = SeverityHigh
	case "low":
		*s = SeverityLow
	default:
		return fmt.Errorf("schema: unknown severity %q", v)
	}
	return nil
}

type Alert struct {
	Level Severity `ipld:"level"`
}

func TestEnumStringRepresentation(t *testing.T) {
	a := Alert{Level: SeverityHigh}
	b, err := EncodeType(FormatDagJSON, a, DefaultOptions)
	require.NoError(t, err)
	require.Equal(t, `{"level":"high"}`, string(b))

	res, err := DecodeType[Alert](FormatDagJSON, b, DefaultOptions)
	require.NoError(t, err)
	defer res.Release()
	require.Equal(t, SeverityHigh, res.Value.Level)
}

func TestEnumUnknownValueIsInvalid(t *testing.T) {
	_, err := DecodeType[Alert](FormatDagJSON, []byte(`{"level":"catastrophic"}`), DefaultOptions)
	require.Error(t, err)
}

// TestArenaReleaseOnDecodeFailure exercises the "allocate then fail
// partway" path from spec.md §4.4: a malformed trailing field still leaves
// behind a Result-less error, with no leaked owned Values to reclaim by
// hand.
func TestArenaReleaseOnDecodeFailure(t *testing.T) {
	_, err := DecodeType[Person](FormatDagJSON, []byte(`{"email":"a@b.com","id":"not an int"}`), DefaultOptions)
	require.Error(t, err)
}
