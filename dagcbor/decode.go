// Package dagcbor implements the dag-cbor codec described in spec.md §4.2:
// a restricted, canonical CBOR profile over the IPLD data model, with
// minimal-size integer arguments, 8-byte-only floats, length-then-lex
// sorted map keys, and tag-42 links.
//
// Grounded on github.com/ipld/go-ipld-prime/codec/dagcbor (vendored in the
// teacher and sealerio-sealer repos) for API shape (DecodeOptions/
// EncodeOptions structs, a package-level Decode/Encode pair using sane
// defaults) and error taxonomy, but the token-level parsing here is
// hand-written against spec.md §4.5's header/argument primitives rather
// than delegated to polydawn/refmt, since spec.md treats those primitives as
// first-class, in-house parts of this component (see DESIGN.md).
package dagcbor

import (
	"bufio"
	"bytes"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/distribution/dagcodec/datamodel"
	"github.com/distribution/dagcodec/internal/cidlink"
	"github.com/distribution/dagcodec/internal/iplderr"
)

// DecodeOptions customizes Decode's behavior. The zero value is NOT the
// default configuration (Strict defaults true): use DefaultDecodeOptions or
// the package-level DecodeValue/DecodeValueBytes functions for the default
// behavior, and override individual fields from a copy of
// DefaultDecodeOptions otherwise. This mirrors
// go-ipld-prime/codec/dagcbor.DecodeOptions, whose package-level Decode
// function likewise constructs explicit non-zero defaults rather than
// relying on the zero value.
type DecodeOptions struct {
	// Strict enforces minimal argument encoding, 8-byte floats only, and
	// sorted map keys (spec.md §6). Duplicate map keys and `undefined` are
	// rejected in both modes.
	Strict bool

	// MaxDepth bounds container nesting to guard against pathologically
	// deep or adversarial input overflowing the Go call stack (spec.md §9;
	// see SPEC_FULL.md §6). Zero means unlimited.
	MaxDepth int
}

// DefaultDecodeOptions is strict, matching spec.md §6's stated default.
var DefaultDecodeOptions = DecodeOptions{Strict: true, MaxDepth: 10000}

// DecodeValue decodes a single dag-cbor value from r using
// DefaultDecodeOptions. All of r must be consumed; trailing bytes are
// ExtraneousData.
func DecodeValue(r io.Reader) (datamodel.Value, error) {
	return DefaultDecodeOptions.Decode(r)
}

// DecodeValueBytes decodes a single dag-cbor value from a complete byte
// slice using DefaultDecodeOptions.
func DecodeValueBytes(b []byte) (datamodel.Value, error) {
	return DefaultDecodeOptions.Decode(bytes.NewReader(b))
}

// Decode deserializes one dag-cbor value from r. r must be fully consumed;
// a non-empty remainder yields ExtraneousData (spec.md §4.2 "Decoder
// contract").
func (opts DecodeOptions) Decode(r io.Reader) (datamodel.Value, error) {
	br := bufio.NewReader(r)
	d := &decoder{br: br, opts: opts}
	v, err := d.value(0)
	if err != nil {
		return datamodel.Value{}, err
	}
	if _, err := br.ReadByte(); err != io.EOF {
		if err == nil {
			return datamodel.Value{}, iplderr.ExtraneousData("trailing bytes after top-level dag-cbor value")
		}
		return datamodel.Value{}, err
	}
	return v, nil
}

type decoder struct {
	br   *bufio.Reader
	opts DecodeOptions
}

func (d *decoder) value(depth int) (datamodel.Value, error) {
	if d.opts.MaxDepth > 0 && depth > d.opts.MaxDepth {
		return datamodel.Value{}, iplderr.InvalidValue("dag-cbor nesting exceeds max depth %d", d.opts.MaxDepth)
	}
	h, err := readHeader(d.br)
	if err != nil {
		return datamodel.Value{}, err
	}
	switch h.m {
	case majorUnsigned:
		if err := checkMinimal(h, d.opts.Strict); err != nil {
			return datamodel.Value{}, err
		}
		if h.arg > math.MaxInt64 {
			return datamodel.Value{}, iplderr.Overflow("unsigned integer %d exceeds i64 range", h.arg)
		}
		return datamodel.NewInt(int64(h.arg)), nil

	case majorNegative:
		if err := checkMinimal(h, d.opts.Strict); err != nil {
			return datamodel.Value{}, err
		}
		if h.arg > math.MaxInt64 {
			return datamodel.Value{}, iplderr.Overflow("negative integer -1-%d exceeds i64 range", h.arg)
		}
		return datamodel.NewInt(-1 - int64(h.arg)), nil

	case majorBytes:
		if err := checkMinimal(h, d.opts.Strict); err != nil {
			return datamodel.Value{}, err
		}
		body, err := readRawBytes(d.br, h.arg)
		if err != nil {
			return datamodel.Value{}, err
		}
		return datamodel.NewBytes(body), nil

	case majorText:
		if err := checkMinimal(h, d.opts.Strict); err != nil {
			return datamodel.Value{}, err
		}
		body, err := readRawBytes(d.br, h.arg)
		if err != nil {
			return datamodel.Value{}, err
		}
		return datamodel.NewString(string(body)), nil

	case majorArray:
		if err := checkMinimal(h, d.opts.Strict); err != nil {
			return datamodel.Value{}, err
		}
		items := make([]datamodel.Value, 0, clampPrealloc(h.arg))
		for i := uint64(0); i < h.arg; i++ {
			elem, err := d.value(depth + 1)
			if err != nil {
				return datamodel.Value{}, err
			}
			items = append(items, elem)
		}
		return datamodel.NewList(items...), nil

	case majorMap:
		return d.decodeMap(h, depth)

	case majorTag:
		if err := checkMinimal(h, d.opts.Strict); err != nil {
			return datamodel.Value{}, err
		}
		return d.decodeTagged(h, depth)

	case majorSimple:
		return d.decodeSimple(h)

	default:
		return datamodel.Value{}, iplderr.InvalidType("unsupported CBOR major type %d", h.m)
	}
}

func clampPrealloc(n uint64) int {
	const cap = 1 << 16
	if n > cap {
		return cap
	}
	return int(n)
}

func (d *decoder) decodeMap(h header, depth int) (datamodel.Value, error) {
	if err := checkMinimal(h, d.opts.Strict); err != nil {
		return datamodel.Value{}, err
	}
	n := h.arg
	keys := make([]string, 0, clampPrealloc(n))
	vals := make([]datamodel.Value, 0, clampPrealloc(n))
	seen := make(map[string]struct{}, clampPrealloc(n))
	for i := uint64(0); i < n; i++ {
		kv, err := d.value(depth + 1)
		if err != nil {
			return datamodel.Value{}, err
		}
		key, err := kv.AsString()
		if err != nil {
			return datamodel.Value{}, iplderr.InvalidType("dag-cbor map keys must be text strings")
		}
		if _, dup := seen[key]; dup {
			return datamodel.Value{}, iplderr.InvalidValue("duplicate map key %q", key)
		}
		seen[key] = struct{}{}
		val, err := d.value(depth + 1)
		if err != nil {
			return datamodel.Value{}, err
		}
		keys = append(keys, key)
		vals = append(vals, val)
	}
	if d.opts.Strict && !sortedByRFC7049(keys) {
		return datamodel.Value{}, iplderr.Strict("map keys are not in length-then-lexicographic order")
	}
	return datamodel.NewMapFromEntries(keys, vals), nil
}

func (d *decoder) decodeTagged(h header, depth int) (datamodel.Value, error) {
	if h.arg != 42 {
		return datamodel.Value{}, iplderr.InvalidType("dag-cbor only supports tag 42 (link); got tag %d", h.arg)
	}
	bh, err := readHeader(d.br)
	if err != nil {
		return datamodel.Value{}, err
	}
	if bh.m != majorBytes {
		return datamodel.Value{}, iplderr.InvalidType("tag 42 must be followed by a byte string")
	}
	if err := checkMinimal(bh, d.opts.Strict); err != nil {
		return datamodel.Value{}, err
	}
	body, err := readRawBytes(d.br, bh.arg)
	if err != nil {
		return datamodel.Value{}, err
	}
	c, err := cidlink.DecodeCBORLinkBody(body)
	if err != nil {
		return datamodel.Value{}, err
	}
	return datamodel.NewLink(c), nil
}

func (d *decoder) decodeSimple(h header) (datamodel.Value, error) {
	if h.ai < 24 {
		switch h.arg {
		case simpleFalse:
			return datamodel.NewBool(false), nil
		case simpleTrue:
			return datamodel.NewBool(true), nil
		case simpleNull:
			return datamodel.Null, nil
		case simpleUndef:
			// Open question recorded in spec.md §9 / SPEC_FULL.md §8: decided
			// as an error, matching the stated source behavior exactly.
			logrus.WithField("codec", "dagcbor").Debug("rejecting CBOR simple value 23 (undefined)")
			return datamodel.Value{}, iplderr.InvalidType("CBOR simple value `undefined` is not part of the dag-cbor profile")
		default:
			return datamodel.Value{}, iplderr.InvalidType("unrecognized CBOR simple value %d", h.arg)
		}
	}
	switch h.ai {
	case 25, 26, 27:
		f, err := readFloat(h, d.opts.Strict)
		if err != nil {
			return datamodel.Value{}, err
		}
		return datamodel.NewFloat(f), nil
	default:
		return datamodel.Value{}, iplderr.InvalidType("unsupported major-7 additional-info %d", h.ai)
	}
}

// sortedByRFC7049 reports whether keys are already in dag-cbor's canonical
// length-then-lexicographic order (spec.md §4.2), used by strict-mode
// decode to validate map key ordering. Callers have already rejected
// duplicates, so a strict less-than between every consecutive pair suffices.
func sortedByRFC7049(keys []string) bool {
	for i := 1; i < len(keys); i++ {
		if !keyLess(keys[i-1], keys[i]) {
			return false
		}
	}
	return true
}

func keyLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
