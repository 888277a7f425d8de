package dagcbor

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/distribution/dagcodec/datamodel"
	"github.com/distribution/dagcodec/internal/cidlink"
	"github.com/distribution/dagcodec/internal/iplderr"
)

// EncodeOptions customizes Encode. Unlike the decoder, the dag-cbor encoder
// has no configuration knobs beyond what's already canonical (spec.md §6:
// "dag-cbor Encoder — always canonical"); the struct exists for API
// symmetry with DecodeOptions and room for future options, matching
// go-ipld-prime/codec/dagcbor.EncodeOptions.
type EncodeOptions struct{}

// DefaultEncodeOptions is the only meaningful configuration today.
var DefaultEncodeOptions = EncodeOptions{}

// EncodeValue serializes v to canonical dag-cbor bytes.
func EncodeValue(v datamodel.Value) ([]byte, error) {
	return DefaultEncodeOptions.Encode(v)
}

// EncodeValueTo serializes v to canonical dag-cbor and writes it to w.
func EncodeValueTo(v datamodel.Value, w io.Writer) error {
	b, err := DefaultEncodeOptions.Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Encode serializes v to canonical dag-cbor bytes. Per spec.md §4.2, the
// exact output length is computed first so the final buffer is allocated
// once and never reallocated while writing.
func (opts EncodeOptions) Encode(v datamodel.Value) ([]byte, error) {
	n, err := encodedLen(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, n)
	buf, err = appendValue(buf, v)
	if err != nil {
		return nil, err
	}
	if len(buf) != n {
		// Indicates a bug in encodedLen/appendValue's mirrored recursion,
		// not a user-facing condition; fail loudly rather than silently
		// return a mis-sized buffer.
		return nil, fmt.Errorf("dagcbor: internal error: computed length %d, wrote %d", n, len(buf))
	}
	return buf, nil
}

func encodedLen(v datamodel.Value) (int, error) {
	switch v.Kind() {
	case datamodel.KindNull, datamodel.KindBool:
		return 1, nil
	case datamodel.KindInt:
		i, _ := v.AsInt()
		return headerLen(intArg(i)), nil
	case datamodel.KindFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, iplderr.UnsupportedValue("dag-cbor cannot encode NaN or infinite floats")
		}
		return 9, nil
	case datamodel.KindString:
		s, _ := v.AsString()
		return headerLen(uint64(len(s))) + len(s), nil
	case datamodel.KindBytes:
		b, _ := v.AsBytes()
		return headerLen(uint64(len(b))) + len(b), nil
	case datamodel.KindList:
		n, _ := v.Len()
		total := headerLen(uint64(n))
		for i := 0; i < n; i++ {
			elem, _ := v.Get(i)
			sz, err := encodedLen(elem)
			if err != nil {
				return 0, err
			}
			total += sz
		}
		return total, nil
	case datamodel.KindMap:
		n, _ := v.MapLen()
		total := headerLen(uint64(n))
		var err error
		err2 := v.MapIterator(func(key string, val datamodel.Value) bool {
			total += headerLen(uint64(len(key))) + len(key)
			sz, e := encodedLen(val)
			if e != nil {
				err = e
				return false
			}
			total += sz
			return true
		})
		if err2 != nil {
			return 0, err2
		}
		if err != nil {
			return 0, err
		}
		return total, nil
	case datamodel.KindLink:
		c, _ := v.AsLink()
		body := cidlink.EncodeCBORLinkBody(c)
		return headerLen(42) + headerLen(uint64(len(body))) + len(body), nil
	default:
		return 0, iplderr.InvalidType("cannot encode value of kind %s", v.Kind())
	}
}

func intArg(i int64) uint64 {
	if i >= 0 {
		return uint64(i)
	}
	return uint64(-(i + 1))
}

func appendValue(buf []byte, v datamodel.Value) ([]byte, error) {
	switch v.Kind() {
	case datamodel.KindNull:
		return append(buf, byte(majorSimple)<<5|byte(simpleNull)), nil
	case datamodel.KindBool:
		b, _ := v.AsBool()
		if b {
			return append(buf, byte(majorSimple)<<5|byte(simpleTrue)), nil
		}
		return append(buf, byte(majorSimple)<<5|byte(simpleFalse)), nil
	case datamodel.KindInt:
		i, _ := v.AsInt()
		if i >= 0 {
			return appendHeader(buf, majorUnsigned, uint64(i)), nil
		}
		return appendHeader(buf, majorNegative, intArg(i)), nil
	case datamodel.KindFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, iplderr.UnsupportedValue("dag-cbor cannot encode NaN or infinite floats")
		}
		return appendFloat(buf, f), nil
	case datamodel.KindString:
		s, _ := v.AsString()
		buf = appendHeader(buf, majorText, uint64(len(s)))
		return append(buf, s...), nil
	case datamodel.KindBytes:
		b, _ := v.AsBytes()
		buf = appendHeader(buf, majorBytes, uint64(len(b)))
		return append(buf, b...), nil
	case datamodel.KindList:
		n, _ := v.Len()
		buf = appendHeader(buf, majorArray, uint64(n))
		for i := 0; i < n; i++ {
			elem, _ := v.Get(i)
			var err error
			buf, err = appendValue(buf, elem)
			if err != nil {
				return nil, err
			}
		}
		return buf, nil
	case datamodel.KindMap:
		return appendMap(buf, v)
	case datamodel.KindLink:
		c, _ := v.AsLink()
		body := cidlink.EncodeCBORLinkBody(c)
		buf = appendHeader(buf, majorTag, 42)
		buf = appendHeader(buf, majorBytes, uint64(len(body)))
		return append(buf, body...), nil
	default:
		return nil, iplderr.InvalidType("cannot encode value of kind %s", v.Kind())
	}
}

// appendMap emits a map's entries sorted into dag-cbor's canonical
// length-then-lexicographic order. Per spec.md §5, this computes a sorted
// key projection rather than mutating the source map, so encoding a Value
// never has an observable side effect on it.
func appendMap(buf []byte, v datamodel.Value) ([]byte, error) {
	keys, err := v.MapKeys()
	if err != nil {
		return nil, err
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	n := len(keys)
	buf = appendHeader(buf, majorMap, uint64(n))
	for _, k := range keys {
		buf = appendHeader(buf, majorText, uint64(len(k)))
		buf = append(buf, k...)
		val, ok, err := v.MapGet(k)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("dagcbor: internal error: key %q vanished during encode", k)
		}
		buf, err = appendValue(buf, val)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}
