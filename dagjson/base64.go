package dagjson

import "encoding/base64"

// bytesEncoding is base64url with no padding, per spec.md §4.3 "A byte
// string is encoded as ... base64url-nopad". Grounded directly on
// go-ipld-prime's codec/dagjson/marshal.go, which imports stdlib
// encoding/base64 for this exact purpose (see DESIGN.md).
var bytesEncoding = base64.RawURLEncoding

func encodeBase64URLNoPad(b []byte) string {
	return bytesEncoding.EncodeToString(b)
}

func decodeBase64URLNoPad(s string) ([]byte, error) {
	return bytesEncoding.DecodeString(s)
}
