// Package multicodec is the small multicodec-code dispatch table from
// SPEC_FULL.md §6, supplementing spec.md §2's shared utilities; it holds no
// kind-representation lookup. It is grounded on
// go-ipld-prime's codec/dagcbor/multicodec.go and codec/dagjson/multicodec.go
// init()-time registration pattern (both vendored in the teacher pack).
//
// The codes themselves come from github.com/multiformats/go-multicodec's
// generated table (a real, already-pinned dependency of the teacher's module
// graph) rather than being hand-rolled, so this package's Code type is a
// direct alias of that package's.
package multicodec

import (
	"fmt"
	"io"
	"sync"

	gomulticodec "github.com/multiformats/go-multicodec"

	"github.com/distribution/dagcodec/datamodel"
)

// Code is a multicodec content-type code, as would appear in a CIDv1. It is
// an alias of go-multicodec's own Code type so values of either are directly
// interchangeable.
type Code = gomulticodec.Code

const (
	// CodeDagCBOR is the multicodec code for dag-cbor.
	CodeDagCBOR = gomulticodec.DagCbor
	// CodeDagJSON is the multicodec code for dag-json.
	CodeDagJSON = gomulticodec.DagJson
)

// Encoder matches the signature shared by dagcbor.EncodeValueTo and
// dagjson.EncodeValueTo.
type Encoder func(v datamodel.Value, w io.Writer) error

// Decoder matches the signature shared by dagcbor.DecodeValue and
// dagjson.DecodeValue (both take only a reader and use package defaults).
type Decoder func(r io.Reader) (datamodel.Value, error)

var (
	mu       sync.RWMutex
	encoders = map[Code]Encoder{}
	decoders = map[Code]Decoder{}
)

// RegisterEncoder registers fn as the encoder for code. Codec packages call
// this from an init() function, mirroring go-ipld-prime's own
// multicodec.RegisterEncoder convention.
func RegisterEncoder(code Code, fn Encoder) {
	mu.Lock()
	defer mu.Unlock()
	encoders[code] = fn
}

// RegisterDecoder registers fn as the decoder for code.
func RegisterDecoder(code Code, fn Decoder) {
	mu.Lock()
	defer mu.Unlock()
	decoders[code] = fn
}

// LookupEncoder returns the registered encoder for code, if any.
func LookupEncoder(code Code) (Encoder, error) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := encoders[code]
	if !ok {
		return nil, fmt.Errorf("multicodec: no encoder registered for code 0x%x", uint64(code))
	}
	return fn, nil
}

// LookupDecoder returns the registered decoder for code, if any.
func LookupDecoder(code Code) (Decoder, error) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := decoders[code]
	if !ok {
		return nil, fmt.Errorf("multicodec: no decoder registered for code 0x%x", uint64(code))
	}
	return fn, nil
}
