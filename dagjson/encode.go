package dagjson

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/distribution/dagcodec/datamodel"
	"github.com/distribution/dagcodec/internal/cidlink"
	"github.com/distribution/dagcodec/internal/iplderr"
)

// EncodeOptions customizes Encode. FloatFormat defaults to FloatDecimal,
// matching spec.md §6's stated default for the dag-json encoder.
type EncodeOptions struct {
	FloatFormat FloatFormat

	// EscapeUnicode, if true, escapes all non-ASCII runes as \uXXXX. Default
	// off, matching spec.md §4.3 "optionally Unicode escaping, default off".
	EscapeUnicode bool
}

// DefaultEncodeOptions matches spec.md §6's stated defaults.
var DefaultEncodeOptions = EncodeOptions{FloatFormat: FloatDecimal}

// EncodeValue serializes v to canonical dag-json bytes using
// DefaultEncodeOptions.
func EncodeValue(v datamodel.Value) ([]byte, error) {
	return DefaultEncodeOptions.Encode(v)
}

// EncodeValueTo serializes v to canonical dag-json and writes it to w.
func EncodeValueTo(v datamodel.Value, w io.Writer) error {
	b, err := DefaultEncodeOptions.Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Encode serializes v to dag-json bytes: minimal separators, lexicographic
// map key order, and this option set's float rendering policy.
func (opts EncodeOptions) Encode(v datamodel.Value) ([]byte, error) {
	var sb strings.Builder
	if err := opts.appendValue(&sb, v); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func (opts EncodeOptions) appendValue(sb *strings.Builder, v datamodel.Value) error {
	switch v.Kind() {
	case datamodel.KindNull:
		sb.WriteString("null")
		return nil
	case datamodel.KindBool:
		b, _ := v.AsBool()
		sb.WriteString(strconv.FormatBool(b))
		return nil
	case datamodel.KindInt:
		i, _ := v.AsInt()
		sb.WriteString(strconv.FormatInt(i, 10))
		return nil
	case datamodel.KindFloat:
		f, _ := v.AsFloat()
		s, err := opts.FloatFormat.Render(f)
		if err != nil {
			return iplderr.UnsupportedValue("%v", err)
		}
		sb.WriteString(s)
		return nil
	case datamodel.KindString:
		s, _ := v.AsString()
		return opts.appendQuotedString(sb, s)
	case datamodel.KindBytes:
		b, _ := v.AsBytes()
		sb.WriteString(`{"/":{"bytes":"`)
		sb.WriteString(encodeBase64URLNoPad(b))
		sb.WriteString(`"}}`)
		return nil
	case datamodel.KindList:
		return opts.appendList(sb, v)
	case datamodel.KindMap:
		return opts.appendMap(sb, v)
	case datamodel.KindLink:
		c, _ := v.AsLink()
		sb.WriteString(`{"/":"`)
		sb.WriteString(cidlink.EncodeJSONLinkString(c))
		sb.WriteString(`"}`)
		return nil
	default:
		return iplderr.InvalidType("cannot encode value of kind %s", v.Kind())
	}
}

func (opts EncodeOptions) appendList(sb *strings.Builder, v datamodel.Value) error {
	n, _ := v.Len()
	sb.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		elem, err := v.Get(i)
		if err != nil {
			return err
		}
		if err := opts.appendValue(sb, elem); err != nil {
			return err
		}
	}
	sb.WriteByte(']')
	return nil
}

// appendMap emits a map's entries sorted into dag-json's canonical
// byte-wise lexicographic order, computing a sorted key projection rather
// than mutating the source map (spec.md §5).
func (opts EncodeOptions) appendMap(sb *strings.Builder, v datamodel.Value) error {
	keys, err := v.MapKeys()
	if err != nil {
		return err
	}
	sort.Strings(keys)

	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		if k == "/" {
			return iplderr.InvalidValue("reserved key \"/\" may not appear in a regular map")
		}
		if err := opts.appendQuotedString(sb, k); err != nil {
			return err
		}
		sb.WriteByte(':')
		val, ok, err := v.MapGet(k)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("dagjson: internal error: key %q vanished during encode", k)
		}
		if err := opts.appendValue(sb, val); err != nil {
			return err
		}
	}
	sb.WriteByte('}')
	return nil
}

const hexDigits = "0123456789abcdef"

func (opts EncodeOptions) appendQuotedString(sb *strings.Builder, s string) error {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			switch {
			case r < 0x20:
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigits[(r>>4)&0xf])
				sb.WriteByte(hexDigits[r&0xf])
			case r < 0x80:
				sb.WriteByte(byte(r))
			case opts.EscapeUnicode:
				appendUnicodeEscape(sb, r)
			default:
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return nil
}

func appendUnicodeEscape(sb *strings.Builder, r rune) {
	if r > 0xffff {
		r -= 0x10000
		hi := 0xd800 + (r >> 10)
		lo := 0xdc00 + (r & 0x3ff)
		writeUEscape(sb, uint16(hi))
		writeUEscape(sb, uint16(lo))
		return
	}
	writeUEscape(sb, uint16(r))
}

func writeUEscape(sb *strings.Builder, v uint16) {
	sb.WriteString(`\u`)
	sb.WriteByte(hexDigits[(v>>12)&0xf])
	sb.WriteByte(hexDigits[(v>>8)&0xf])
	sb.WriteByte(hexDigits[(v>>4)&0xf])
	sb.WriteByte(hexDigits[v&0xf])
}
