package datamodel

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders v in a compact, stable textual form suitable for test
// failure messages and logs, per spec.md §4.1's "formatted debug rendering".
// It is not a wire format and carries no round-trip guarantee.
func (v Value) String() string {
	var sb strings.Builder
	v.render(&sb)
	return sb.String()
}

func (v Value) render(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(string(v.heap.bytes)))
	case KindBytes:
		fmt.Fprintf(sb, "bytes(%x)", v.heap.bytes)
	case KindList:
		sb.WriteByte('[')
		for i, e := range v.heap.list {
			if i > 0 {
				sb.WriteByte(',')
			}
			e.render(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteString("map{")
		for i, k := range v.heap.mp.keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			v.heap.mp.vals[i].render(sb)
		}
		sb.WriteByte('}')
	case KindLink:
		fmt.Fprintf(sb, "link(%s)", v.heap.link.String())
	default:
		sb.WriteString("<invalid>")
	}
}
