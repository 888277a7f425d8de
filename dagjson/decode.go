// Package dagjson implements the dag-json codec described in spec.md §4.3:
// a restricted JSON profile with `{"/":...}` reserved-key conventions for
// links and byte strings, lexicographically sorted map keys, and a
// configurable float rendering policy.
//
// Grounded on github.com/ipld/go-ipld-prime/codec/dagjson (vendored in the
// teacher pack) for the overall shape (EncodeOptions/DecodeOptions structs,
// the "peek the first object key for '/'" dispatch) and on polydawn/refmt's
// token-kind vocabulary for the tokenizer's design (see tokenizer.go), but
// implemented against spec.md's own primitives rather than imported.
package dagjson

import (
	"bufio"
	"bytes"
	"io"

	"github.com/distribution/dagcodec/datamodel"
	"github.com/distribution/dagcodec/internal/cidlink"
	"github.com/distribution/dagcodec/internal/iplderr"
)

// DecodeOptions customizes Decode. Strict governs canonical field ordering
// for schema-driven static decode (spec.md §6); it has no effect on dynamic
// decode, since an arbitrary dag-json map carries no declared field order to
// validate against.
type DecodeOptions struct {
	Strict bool

	// MaxDepth bounds container nesting (see SPEC_FULL.md §6). Zero means
	// unlimited.
	MaxDepth int
}

// DefaultDecodeOptions is strict, matching spec.md §6's stated default.
var DefaultDecodeOptions = DecodeOptions{Strict: true, MaxDepth: 10000}

// DecodeValue decodes a single dag-json value from r using
// DefaultDecodeOptions.
func DecodeValue(r io.Reader) (datamodel.Value, error) {
	return DefaultDecodeOptions.Decode(r)
}

// DecodeValueBytes decodes a single dag-json value from a complete byte
// slice using DefaultDecodeOptions.
func DecodeValueBytes(b []byte) (datamodel.Value, error) {
	return DefaultDecodeOptions.Decode(bytes.NewReader(b))
}

// Decode deserializes one dag-json value from r. The EOF token must be
// reached after the value; trailing non-whitespace data is ExtraneousData
// (spec.md §4.3 "Decoder").
func (opts DecodeOptions) Decode(r io.Reader) (datamodel.Value, error) {
	br := bufio.NewReader(r)
	tz := newTokenizer(br)
	d := &jsonDecoder{tz: tz, opts: opts}
	v, err := d.value(0)
	if err != nil {
		return datamodel.Value{}, err
	}
	if err := tz.skipWS(); err != nil && err != io.EOF {
		return datamodel.Value{}, err
	}
	if _, err := br.ReadByte(); err != io.EOF {
		if err == nil {
			return datamodel.Value{}, iplderr.ExtraneousData("trailing content after top-level dag-json value")
		}
		return datamodel.Value{}, err
	}
	return v, nil
}

type jsonDecoder struct {
	tz   *tokenizer
	opts DecodeOptions
}

func (d *jsonDecoder) value(depth int) (datamodel.Value, error) {
	if d.opts.MaxDepth > 0 && depth > d.opts.MaxDepth {
		return datamodel.Value{}, iplderr.InvalidValue("dag-json nesting exceeds max depth %d", d.opts.MaxDepth)
	}
	tok, err := d.tz.next()
	if err != nil {
		return datamodel.Value{}, wrapEOF(err)
	}
	switch tok.kind {
	case tokNull:
		return datamodel.Null, nil
	case tokBool:
		return datamodel.NewBool(tok.b), nil
	case tokInt:
		return datamodel.NewInt(tok.i), nil
	case tokFloat:
		return datamodel.NewFloat(tok.f), nil
	case tokString:
		return datamodel.NewString(tok.str), nil
	case tokArrOpen:
		return d.array(depth)
	case tokMapOpen:
		return d.object(depth)
	default:
		return datamodel.Value{}, iplderr.InvalidType("unexpected token in dag-json value position")
	}
}

func wrapEOF(err error) error {
	if err == io.EOF {
		return iplderr.ExpectedEOD("unexpected end of input while parsing a dag-json value")
	}
	return err
}

func (d *jsonDecoder) expectByte(c byte) error {
	got, err := d.tz.peek()
	if err != nil {
		return wrapEOF(err)
	}
	if got != c {
		return iplderr.InvalidType("expected %q, got %q", c, got)
	}
	_, _ = d.tz.r.Discard(1)
	return nil
}

func (d *jsonDecoder) array(depth int) (datamodel.Value, error) {
	b, err := d.tz.peek()
	if err != nil {
		return datamodel.Value{}, wrapEOF(err)
	}
	if b == ']' {
		_, _ = d.tz.r.Discard(1)
		return datamodel.NewList(), nil
	}
	var items []datamodel.Value
	for {
		elem, err := d.value(depth + 1)
		if err != nil {
			return datamodel.Value{}, err
		}
		items = append(items, elem)
		b, err := d.tz.peek()
		if err != nil {
			return datamodel.Value{}, wrapEOF(err)
		}
		switch b {
		case ',':
			_, _ = d.tz.r.Discard(1)
			continue
		case ']':
			_, _ = d.tz.r.Discard(1)
			return datamodel.NewList(items...), nil
		default:
			return datamodel.Value{}, iplderr.InvalidType("expected ',' or ']' in dag-json array, got %q", b)
		}
	}
}

func (d *jsonDecoder) object(depth int) (datamodel.Value, error) {
	b, err := d.tz.peek()
	if err != nil {
		return datamodel.Value{}, wrapEOF(err)
	}
	if b == '}' {
		_, _ = d.tz.r.Discard(1)
		return datamodel.NewMap(), nil
	}

	firstKeyTok, err := d.tz.next()
	if err != nil {
		return datamodel.Value{}, wrapEOF(err)
	}
	if firstKeyTok.kind != tokString {
		return datamodel.Value{}, iplderr.InvalidType("dag-json object keys must be strings")
	}
	if err := d.expectByte(':'); err != nil {
		return datamodel.Value{}, err
	}

	if firstKeyTok.str == "/" {
		return d.linkOrBytes(depth)
	}

	keys := []string{firstKeyTok.str}
	seen := map[string]struct{}{firstKeyTok.str: {}}
	firstVal, err := d.value(depth + 1)
	if err != nil {
		return datamodel.Value{}, err
	}
	vals := []datamodel.Value{firstVal}

	for {
		b, err := d.tz.peek()
		if err != nil {
			return datamodel.Value{}, wrapEOF(err)
		}
		switch b {
		case '}':
			_, _ = d.tz.r.Discard(1)
			return datamodel.NewMapFromEntries(keys, vals), nil
		case ',':
			_, _ = d.tz.r.Discard(1)
		default:
			return datamodel.Value{}, iplderr.InvalidType("expected ',' or '}' in dag-json object, got %q", b)
		}

		keyTok, err := d.tz.next()
		if err != nil {
			return datamodel.Value{}, wrapEOF(err)
		}
		if keyTok.kind != tokString {
			return datamodel.Value{}, iplderr.InvalidType("dag-json object keys must be strings")
		}
		if keyTok.str == "/" {
			return datamodel.Value{}, iplderr.InvalidValue("reserved key \"/\" may not appear in a regular map")
		}
		if _, dup := seen[keyTok.str]; dup {
			return datamodel.Value{}, iplderr.InvalidValue("duplicate map key %q", keyTok.str)
		}
		seen[keyTok.str] = struct{}{}
		if err := d.expectByte(':'); err != nil {
			return datamodel.Value{}, err
		}
		val, err := d.value(depth + 1)
		if err != nil {
			return datamodel.Value{}, err
		}
		keys = append(keys, keyTok.str)
		vals = append(vals, val)
	}
}

// linkOrBytes parses the value following a leading `"/"` key: either a
// string (link) or a nested `{"bytes": "..."}` object (byte string). In
// both cases the enclosing object must have exactly this one member
// (spec.md §4.3).
func (d *jsonDecoder) linkOrBytes(depth int) (datamodel.Value, error) {
	b, err := d.tz.peek()
	if err != nil {
		return datamodel.Value{}, wrapEOF(err)
	}
	switch b {
	case '"':
		tok, err := d.tz.next()
		if err != nil {
			return datamodel.Value{}, wrapEOF(err)
		}
		if err := d.expectByte('}'); err != nil {
			return datamodel.Value{}, iplderr.InvalidValue("link object must have exactly one member \"/\"")
		}
		c, err := cidlink.DecodeJSONLinkString(tok.str)
		if err != nil {
			return datamodel.Value{}, err
		}
		return datamodel.NewLink(c), nil
	case '{':
		_, _ = d.tz.r.Discard(1)
		raw, err := d.bytesObjectBody(depth)
		if err != nil {
			return datamodel.Value{}, err
		}
		if err := d.expectByte('}'); err != nil {
			return datamodel.Value{}, iplderr.InvalidValue("bytes object must have exactly one member \"/\"")
		}
		return datamodel.NewBytes(raw), nil
	default:
		return datamodel.Value{}, iplderr.InvalidValue("malformed link or bytes object")
	}
}

func (d *jsonDecoder) bytesObjectBody(depth int) ([]byte, error) {
	keyTok, err := d.tz.next()
	if err != nil {
		return nil, wrapEOF(err)
	}
	if keyTok.kind != tokString || keyTok.str != "bytes" {
		return nil, iplderr.InvalidValue("bytes object's inner key must be exactly \"bytes\"")
	}
	if err := d.expectByte(':'); err != nil {
		return nil, err
	}
	valTok, err := d.tz.next()
	if err != nil {
		return nil, wrapEOF(err)
	}
	if valTok.kind != tokString {
		return nil, iplderr.InvalidValue("bytes object's \"bytes\" member must be a string")
	}
	raw, err := decodeBase64URLNoPad(valTok.str)
	if err != nil {
		return nil, iplderr.InvalidValue("malformed base64url bytes payload: %v", err)
	}
	b, err := d.tz.peek()
	if err != nil {
		return nil, wrapEOF(err)
	}
	if b != '}' {
		return nil, iplderr.InvalidValue("bytes object's inner map must have exactly one member \"bytes\"")
	}
	_, _ = d.tz.r.Discard(1)
	return raw, nil
}
