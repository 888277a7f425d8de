package schema

import (
	"reflect"
	"sort"
	"sync"
)

// Format selects which codec's canonical key ordering a record's fields are
// cached and emitted in.
type Format int

const (
	FormatDagCBOR Format = iota
	FormatDagJSON
)

type fieldInfo struct {
	name  string
	index int
}

type fieldCacheKey struct {
	t      reflect.Type
	format Format
}

// fieldCache memoizes each struct type's canonical field ordering per
// format, computed once per type per spec.md §4.4 "canonical field ordering
// computed once per type".
var fieldCache sync.Map // fieldCacheKey -> []fieldInfo

func canonicalFields(t reflect.Type, format Format) []fieldInfo {
	key := fieldCacheKey{t: t, format: format}
	if cached, ok := fieldCache.Load(key); ok {
		return cached.([]fieldInfo)
	}
	var fields []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		tag := f.Tag.Get("ipld")
		if tag == "-" {
			continue
		}
		name := f.Name
		if tag != "" {
			name = tag
		}
		fields = append(fields, fieldInfo{name: name, index: i})
	}
	less := jsonKeyLess
	if format == FormatDagCBOR {
		less = cborKeyLess
	}
	sort.Slice(fields, func(i, j int) bool { return less(fields[i].name, fields[j].name) })
	fieldCache.Store(key, fields)
	return fields
}

// cborKeyLess mirrors dagcbor's length-then-lexicographic canonical map key
// order (RFC 8949 §4.2.1), duplicated here rather than exported from
// package dagcbor since it is purely a byte-ordering helper with no other
// dependency on that package's internals.
func cborKeyLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// jsonKeyLess mirrors dagjson's plain byte-wise lexicographic map key order.
func jsonKeyLess(a, b string) bool {
	return a < b
}
