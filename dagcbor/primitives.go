package dagcbor

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/distribution/dagcodec/internal/iplderr"
)

// readHeader reads one CBOR header (spec.md §4.5) from r.
func readHeader(r *bufio.Reader) (header, error) {
	b, err := r.ReadByte()
	if err != nil {
		return header{}, err
	}
	m := major(b >> 5)
	ai := b & 0x1f
	switch {
	case ai < 24:
		return header{m: m, ai: ai, arg: uint64(ai)}, nil
	case ai == aiOneByte:
		var buf [1]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return header{}, unexpectedEOF(err)
		}
		return header{m: m, ai: ai, arg: uint64(buf[0]), wide: 1}, nil
	case ai == aiTwoByte:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return header{}, unexpectedEOF(err)
		}
		return header{m: m, ai: ai, arg: uint64(binary.BigEndian.Uint16(buf[:])), wide: 2}, nil
	case ai == aiFourByte:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return header{}, unexpectedEOF(err)
		}
		return header{m: m, ai: ai, arg: uint64(binary.BigEndian.Uint32(buf[:])), wide: 4}, nil
	case ai == aiEightByte:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return header{}, unexpectedEOF(err)
		}
		return header{m: m, ai: ai, arg: binary.BigEndian.Uint64(buf[:]), wide: 8}, nil
	default:
		// ai in {28,29,30}: reserved; ai==31: indefinite-length marker.
		return header{m: m, ai: ai}, iplderr.InvalidType("reserved or indefinite-length additional-info %d is not part of the dag-cbor profile", ai)
	}
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// checkMinimal enforces strict-mode minimal argument encoding.
func checkMinimal(h header, strict bool) error {
	if strict && !h.minimal() {
		return iplderr.Strict("non-minimal argument encoding for major type %d", h.m)
	}
	return nil
}

// readRawBytes reads exactly n bytes from r into a freshly allocated slice.
func readRawBytes(r *bufio.Reader, n uint64) ([]byte, error) {
	const maxReasonable = 1 << 34 // declared lengths above 16 GiB are rejected before allocating; no smaller cap is applied
	if n > maxReasonable {
		return nil, iplderr.Overflow("declared length %d is not representable", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, unexpectedEOF(err)
	}
	return buf, nil
}

// readFloat reinterprets the follow-up bytes readHeader already consumed
// into h.arg for a major-7 header with additional-info 25/26/27 (2/4/8-byte
// float forms). Per spec.md §4.5, strict mode only accepts the 8-byte form.
//
// readHeader's io.ReadFull already pulled these bytes off the wire as part
// of decoding the header's argument, so this must not read the stream
// again; doing so previously consumed a float's mantissa bytes twice.
func readFloat(h header, strict bool) (float64, error) {
	switch h.ai {
	case 25:
		if strict {
			return 0, iplderr.Strict("2-byte float form is not canonical dag-cbor")
		}
		return float64(math.Float32frombits(halfToFloat32Bits(uint16(h.arg)))), nil
	case 26:
		if strict {
			return 0, iplderr.Strict("4-byte float form is not canonical dag-cbor")
		}
		return float64(math.Float32frombits(uint32(h.arg))), nil
	case 27:
		return math.Float64frombits(h.arg), nil
	default:
		return 0, iplderr.InvalidType("additional-info %d is not a recognized float width", h.ai)
	}
}

// appendFloat appends the 8-byte canonical dag-cbor encoding of f
// (spec.md §4.2 "Floats are always encoded in 8-byte form").
func appendFloat(buf []byte, f float64) []byte {
	bits := math.Float64bits(f)
	return append(buf,
		byte(majorSimple)<<5|aiEightByte,
		byte(bits>>56), byte(bits>>48), byte(bits>>40), byte(bits>>32),
		byte(bits>>24), byte(bits>>16), byte(bits>>8), byte(bits))
}

// halfToFloat32Bits widens an IEEE-754 binary16 value to binary32 bits.
// dag-cbor never emits this form; it exists only so a lenient decoder can
// tolerate a 2-byte float it encounters in non-canonical input.
func halfToFloat32Bits(h uint16) uint32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h&0x7c00) >> 10
	frac := uint32(h & 0x03ff)
	switch exp {
	case 0:
		if frac == 0 {
			return sign
		}
		// subnormal half -> normalize into float32
		for frac&0x400 == 0 {
			frac <<= 1
			exp--
		}
		exp++
		frac &= 0x3ff
		return sign | ((exp + (127 - 15)) << 23) | (frac << 13)
	case 0x1f:
		return sign | 0x7f800000 | (frac << 13)
	default:
		return sign | ((exp + (127 - 15)) << 23) | (frac << 13)
	}
}
