// Package cidlink adapts the external CID collaborator (github.com/ipfs/go-cid)
// to the two wire conventions dag-cbor and dag-json use for links, per
// spec.md §4.2 ("tag 42 ... 0x00-prefixed byte string") and §4.3
// ("a link is encoded as an object with a single member \"/\" whose value is
// the CID's canonical string form").
//
// CID parsing/encoding, multibase, multihash and the multicodec table are
// explicitly out of scope for this module (spec.md §1); this package is the
// thin seam where that external surface meets the codecs.
package cidlink

import (
	"io"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"

	"github.com/distribution/dagcodec/internal/iplderr"
)

// EncodeCBORLinkBody returns the byte-string payload of a dag-cbor tag-42
// link: the identity-multibase-encoded CID binary form. multibase.Encode
// with the Identity base prepends exactly the one marker byte and passes
// the payload through unchanged, matching spec.md §4.2's "0x00-prefixed
// byte string".
func EncodeCBORLinkBody(c cid.Cid) []byte {
	s, err := multibase.Encode(multibase.Identity, c.Bytes())
	if err != nil {
		// multibase.Identity never rejects input; this would indicate a
		// go-multibase internal error, not a caller mistake.
		panic("cidlink: identity multibase encode failed: " + err.Error())
	}
	return []byte(s)
}

// DecodeCBORLinkBody parses the byte-string payload of a dag-cbor tag-42
// link, requiring the leading identity multibase marker and delegating the
// stripping/validation to multibase.Decode.
func DecodeCBORLinkBody(body []byte) (cid.Cid, error) {
	enc, raw, err := multibase.Decode(string(body))
	if err != nil {
		return cid.Undef, iplderr.InvalidType("malformed multibase-prefixed dag-cbor link body: %v", err)
	}
	if enc != multibase.Identity {
		return cid.Undef, iplderr.InvalidType("dag-cbor link byte string must start with the identity multibase prefix 0x00")
	}
	c, err := cid.Cast(raw)
	if err != nil {
		return cid.Undef, iplderr.InvalidType("malformed CID in dag-cbor link: %v", err)
	}
	return c, nil
}

// EncodeJSONLinkString returns the CID's canonical string form, as used for
// the dag-json `{"/": "..."}` link convention.
func EncodeJSONLinkString(c cid.Cid) string {
	return c.String()
}

// DecodeJSONLinkString parses a dag-json link's string form back to a CID.
func DecodeJSONLinkString(s string) (cid.Cid, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, iplderr.InvalidType("malformed CID string in dag-json link: %v", err)
	}
	return c, nil
}

// WriteTo writes a CID's raw binary form to w, for codecs that stream
// directly rather than building an intermediate byte slice.
func WriteTo(c cid.Cid, w io.Writer) (int, error) {
	return c.WriteBytes(w)
}
