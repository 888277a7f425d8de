package schema

import (
	"bytes"
	"io"
	"reflect"

	"github.com/distribution/dagcodec/dagcbor"
	"github.com/distribution/dagcodec/dagjson"
	"github.com/distribution/dagcodec/datamodel"
	"github.com/distribution/dagcodec/internal/arena"
)

// Options customizes static encode/decode. Strict governs canonical field
// ordering (spec.md §4.4); FloatFormat is consulted only by dag-json encode.
type Options struct {
	Strict      bool
	FloatFormat dagjson.FloatFormat
	MaxDepth    int
}

// DefaultOptions matches the underlying codecs' own strict-by-default
// posture.
var DefaultOptions = Options{Strict: true, FloatFormat: dagjson.FloatDecimal, MaxDepth: 10000}

// Result pairs a statically decoded value with the arena that owns every
// intermediate allocation the decode produced, per spec.md §4.4 "Result
// container for static decode". Release must be called exactly once, even
// on a value the caller is discarding after inspecting a partial error.
type Result[T any] struct {
	Value T
	arena *arena.Arena
}

// Release frees every allocation the decode made, including ones owned by
// nested fields of Value.
func (r Result[T]) Release() {
	if r.arena != nil {
		r.arena.Release()
	}
}

// EncodeType projects v into a datamodel.Value per spec.md §4.4's
// type-to-kind table and serializes it with the chosen format, producing
// bytes that byte-match dagcbor.EncodeValue/dagjson.EncodeValue applied to
// the same logical value.
func EncodeType[T any](format Format, v T, opts Options) ([]byte, error) {
	val, err := toValue(reflect.ValueOf(v), format)
	if err != nil {
		return nil, err
	}
	defer val.Unref()

	switch format {
	case FormatDagCBOR:
		return dagcbor.EncodeValue(val)
	case FormatDagJSON:
		jsonOpts := dagjson.EncodeOptions{FloatFormat: opts.FloatFormat}
		return jsonOpts.Encode(val)
	default:
		panic("schema: unknown Format")
	}
}

// DecodeType deserializes one value of type T from b using the chosen
// format, returning a Result the caller must Release.
func DecodeType[T any](format Format, b []byte, opts Options) (Result[T], error) {
	val, err := decodeDynamic(format, b, opts)
	if err != nil {
		return Result[T]{}, err
	}
	a := arena.New()
	a.Track(val)

	var out T
	rv := reflect.ValueOf(&out).Elem()
	if err := fromValue(val, rv, opts.Strict, format); err != nil {
		a.Release()
		return Result[T]{}, err
	}
	return Result[T]{Value: out, arena: a}, nil
}

func decodeDynamic(format Format, b []byte, opts Options) (datamodel.Value, error) {
	switch format {
	case FormatDagCBOR:
		cborOpts := dagcbor.DecodeOptions{Strict: opts.Strict, MaxDepth: opts.MaxDepth}
		return cborOpts.Decode(bytes.NewReader(b))
	case FormatDagJSON:
		jsonOpts := dagjson.DecodeOptions{Strict: opts.Strict, MaxDepth: opts.MaxDepth}
		return jsonOpts.Decode(bytes.NewReader(b))
	default:
		panic("schema: unknown Format")
	}
}

// EncodeTypeTo is a streaming-writer convenience wrapper around EncodeType.
func EncodeTypeTo[T any](format Format, v T, opts Options, w io.Writer) error {
	b, err := EncodeType(format, v, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
