package dagcbor

// major is the 3-bit CBOR major type occupying the top bits of a header byte
// (spec.md §4.2 "Header").
type major byte

const (
	majorUnsigned major = 0
	majorNegative major = 1
	majorBytes    major = 2
	majorText     major = 3
	majorArray    major = 4
	majorMap      major = 5
	majorTag      major = 6
	majorSimple   major = 7
)

// Additional-info codes selecting the follow-up byte width for an argument
// (spec.md §4.5 "ArgumentInt read/write").
const (
	aiOneByte   = 24
	aiTwoByte   = 25
	aiFourByte  = 26
	aiEightByte = 27
)

const (
	simpleFalse uint64 = 20
	simpleTrue  uint64 = 21
	simpleNull  uint64 = 22
	simpleUndef uint64 = 23
)

// headerLen returns the number of bytes appendHeader will write for the
// given argument: 1 if it fits in the header nibble, else 2/3/5/9 for the
// 1/2/4/8-byte follow-up forms.
func headerLen(arg uint64) int {
	switch {
	case arg < 24:
		return 1
	case arg <= 0xff:
		return 2
	case arg <= 0xffff:
		return 3
	case arg <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// appendHeader appends the minimal-size header encoding of (m, arg) to buf.
// Callers are responsible for pre-sizing buf's capacity via headerLen so
// this never reallocates (spec.md §4.2 "Encoder contract").
func appendHeader(buf []byte, m major, arg uint64) []byte {
	mb := byte(m) << 5
	switch {
	case arg < 24:
		return append(buf, mb|byte(arg))
	case arg <= 0xff:
		return append(buf, mb|aiOneByte, byte(arg))
	case arg <= 0xffff:
		return append(buf, mb|aiTwoByte, byte(arg>>8), byte(arg))
	case arg <= 0xffffffff:
		return append(buf, mb|aiFourByte,
			byte(arg>>24), byte(arg>>16), byte(arg>>8), byte(arg))
	default:
		return append(buf, mb|aiEightByte,
			byte(arg>>56), byte(arg>>48), byte(arg>>40), byte(arg>>32),
			byte(arg>>24), byte(arg>>16), byte(arg>>8), byte(arg))
	}
}

// header is a decoded header: its major type, the additional-info nibble as
// read (0..31), and the resolved argument value.
type header struct {
	m    major
	ai   byte
	arg  uint64
	wide int // number of follow-up bytes consumed (0, 1, 2, 4, or 8)
}

// minimal reports whether this header used the shortest encoding for its
// argument value (spec.md "strict decoders reject non-minimal arguments").
func (h header) minimal() bool {
	switch h.ai {
	case aiOneByte:
		return h.arg >= 24
	case aiTwoByte:
		return h.arg > 0xff
	case aiFourByte:
		return h.arg > 0xffff
	case aiEightByte:
		return h.arg > 0xffffffff
	default:
		return true // direct (ai < 24) or a simple-value/indefinite code: not a sized argument
	}
}
