package schema

import (
	"math"
	"reflect"

	"github.com/ipfs/go-cid"

	"github.com/distribution/dagcodec/datamodel"
	"github.com/distribution/dagcodec/internal/iplderr"
)

var cidType = reflect.TypeOf(cid.Cid{})

// toValue projects a Go value into a datamodel.Value tree per spec.md §4.4's
// type-to-kind table, returning a Value the caller owns (refcount 1 at every
// heap node along the path it allocated).
func toValue(rv reflect.Value, format Format) (datamodel.Value, error) {
	if rv.IsValid() && rv.CanInterface() {
		if enc, ok := rv.Interface().(IntEncoder); ok {
			return datamodel.NewInt(enc.EncodeIPLDInt()), nil
		}
		if enc, ok := rv.Interface().(StringEncoder); ok {
			s, err := enc.EncodeIPLDString()
			if err != nil {
				return datamodel.Value{}, err
			}
			return datamodel.NewString(s), nil
		}
		if enc, ok := rv.Interface().(BytesEncoder); ok {
			b, err := enc.EncodeIPLDBytes()
			if err != nil {
				return datamodel.Value{}, err
			}
			return datamodel.NewBytes(b), nil
		}
		if en, ok := rv.Interface().(Enum); ok {
			switch en.IPLDKind() {
			case "string":
				return datamodel.NewString(en.(enumStringGetter).EnumString()), nil
			default:
				return datamodel.NewInt(en.(enumIntGetter).EnumInt()), nil
			}
		}
	}

	if rv.Type() == cidType {
		return datamodel.NewLink(rv.Interface().(cid.Cid)), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return datamodel.NewBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return datamodel.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return datamodel.Value{}, iplderr.Overflow("unsigned value %d exceeds i64 range", u)
		}
		return datamodel.NewInt(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return datamodel.NewFloat(rv.Float()), nil
	case reflect.String:
		return datamodel.NewString(rv.String()), nil
	case reflect.Ptr:
		if rv.IsNil() {
			return datamodel.Null, nil
		}
		return toValue(rv.Elem(), format)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return datamodel.NewBytes(rv.Bytes()), nil
		}
		return toValueList(rv, format)
	case reflect.Array:
		return toValueList(rv, format)
	case reflect.Struct:
		return toValueStruct(rv, format)
	default:
		return datamodel.Value{}, iplderr.InvalidType("schema: cannot project Go kind %s to an IPLD value", rv.Kind())
	}
}

func toValueList(rv reflect.Value, format Format) (datamodel.Value, error) {
	n := rv.Len()
	items := make([]datamodel.Value, n)
	for i := 0; i < n; i++ {
		elem, err := toValue(rv.Index(i), format)
		if err != nil {
			for _, done := range items[:i] {
				done.Unref()
			}
			return datamodel.Value{}, err
		}
		items[i] = elem
	}
	return datamodel.NewList(items...), nil
}

func toValueStruct(rv reflect.Value, format Format) (datamodel.Value, error) {
	fields := canonicalFields(rv.Type(), format)
	keys := make([]string, len(fields))
	vals := make([]datamodel.Value, len(fields))
	for i, f := range fields {
		val, err := toValue(rv.Field(f.index), format)
		if err != nil {
			for _, done := range vals[:i] {
				done.Unref()
			}
			return datamodel.Value{}, err
		}
		keys[i] = f.name
		vals[i] = val
	}
	return datamodel.NewMapFromEntries(keys, vals), nil
}

// fromValue populates rv (addressable, of the static target type) from val.
// strict governs whether record fields must appear in canonical order.
func fromValue(val datamodel.Value, rv reflect.Value, strict bool, format Format) error {
	if rv.CanAddr() {
		addr := rv.Addr()
		if addr.CanInterface() {
			if dec, ok := addr.Interface().(IntDecoder); ok {
				i, err := val.AsInt()
				if err != nil {
					return err
				}
				return dec.DecodeIPLDInt(i)
			}
			if dec, ok := addr.Interface().(StringDecoder); ok {
				s, err := val.AsString()
				if err != nil {
					return err
				}
				return dec.DecodeIPLDString(s)
			}
			if dec, ok := addr.Interface().(BytesDecoder); ok {
				b, err := val.AsBytes()
				if err != nil {
					return err
				}
				return dec.DecodeIPLDBytes(b)
			}
			if en, ok := addr.Interface().(Enum); ok {
				switch en.IPLDKind() {
				case "string":
					s, err := val.AsString()
					if err != nil {
						return err
					}
					return addr.Interface().(StringEnum).SetEnumString(s)
				default:
					i, err := val.AsInt()
					if err != nil {
						return err
					}
					return addr.Interface().(IntEnum).SetEnumInt(i)
				}
			}
		}
	}

	if rv.Type() == cidType {
		c, err := val.AsLink()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(c))
		return nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		b, err := val.AsBool()
		if err != nil {
			return err
		}
		rv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := val.AsInt()
		if err != nil {
			return err
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := val.AsInt()
		if err != nil {
			return err
		}
		if i < 0 {
			return iplderr.Overflow("negative integer %d cannot populate an unsigned field", i)
		}
		rv.SetUint(uint64(i))
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := val.AsFloat()
		if err != nil {
			return err
		}
		rv.SetFloat(f)
		return nil
	case reflect.String:
		s, err := val.AsString()
		if err != nil {
			return err
		}
		rv.SetString(s)
		return nil
	case reflect.Ptr:
		if val.Kind() == datamodel.KindNull {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		elem := reflect.New(rv.Type().Elem())
		if err := fromValue(val, elem.Elem(), strict, format); err != nil {
			return err
		}
		rv.Set(elem)
		return nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b, err := val.AsBytes()
			if err != nil {
				return err
			}
			buf := make([]byte, len(b))
			copy(buf, b)
			rv.SetBytes(buf)
			return nil
		}
		return fromValueList(val, rv, strict, format)
	case reflect.Array:
		return fromValueArray(val, rv, strict, format)
	case reflect.Struct:
		return fromValueStruct(val, rv, strict, format)
	default:
		return iplderr.InvalidType("schema: cannot populate Go kind %s from an IPLD value", rv.Kind())
	}
}

func fromValueList(val datamodel.Value, rv reflect.Value, strict bool, format Format) error {
	n, err := val.Len()
	if err != nil {
		return err
	}
	out := reflect.MakeSlice(rv.Type(), n, n)
	if err := val.ListIterator(func(i int, elem datamodel.Value) bool {
		err = fromValue(elem, out.Index(i), strict, format)
		return err == nil
	}); err != nil {
		return err
	}
	if err != nil {
		return err
	}
	rv.Set(out)
	return nil
}

func fromValueArray(val datamodel.Value, rv reflect.Value, strict bool, format Format) error {
	n, err := val.Len()
	if err != nil {
		return err
	}
	if n != rv.Len() {
		return iplderr.InvalidValue("expected a fixed-length array of %d, got %d", rv.Len(), n)
	}
	if err := val.ListIterator(func(i int, elem datamodel.Value) bool {
		err = fromValue(elem, rv.Index(i), strict, format)
		return err == nil
	}); err != nil {
		return err
	}
	return err
}

func fromValueStruct(val datamodel.Value, rv reflect.Value, strict bool, format Format) error {
	fields := canonicalFields(rv.Type(), format)
	keys, err := val.MapKeys()
	if err != nil {
		return err
	}
	if err := checkFieldPresence(keys, fields, strict, format); err != nil {
		return err
	}
	for _, f := range fields {
		mv, ok, err := val.MapGet(f.name)
		if err != nil {
			return err
		}
		if !ok {
			return iplderr.InvalidValue("missing declared field %q", f.name)
		}
		if err := fromValue(mv, rv.Field(f.index), strict, format); err != nil {
			return err
		}
	}
	return nil
}

// checkFieldPresence validates that the decoded map's keys are exactly the
// declared fields, each appearing once, per spec.md §4.4: "in strict decode
// mode, the codec enforces that record fields appear in that same canonical
// order; in lenient mode it accepts any permutation but requires all
// declared fields to be present exactly once."
func checkFieldPresence(keys []string, fields []fieldInfo, strict bool, format Format) error {
	if len(keys) != len(fields) {
		return iplderr.InvalidValue("expected %d record fields, got %d", len(fields), len(keys))
	}
	want := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		want[f.name] = struct{}{}
	}
	for _, k := range keys {
		if _, ok := want[k]; !ok {
			return iplderr.InvalidValue("unexpected field %q", k)
		}
	}
	if strict {
		for i, f := range fields {
			if keys[i] != f.name {
				return iplderr.Strict("field %q is out of canonical order", keys[i])
			}
		}
	}
	return nil
}
