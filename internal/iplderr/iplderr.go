// Package iplderr defines the typed error vocabulary shared by the dagcbor,
// dagjson and schema packages.
package iplderr

import "fmt"

// Kind identifies the category of failure raised by a codec operation. The
// numeric values are not part of the wire format and may be renumbered.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidType
	KindInvalidValue
	KindOverflow
	KindStrict
	KindExtraneousData
	KindExpectedEOD
	KindUnsupportedValue
)

var kindStrings = map[Kind]string{
	KindUnknown:          "UNKNOWN",
	KindInvalidType:      "INVALID_TYPE",
	KindInvalidValue:     "INVALID_VALUE",
	KindOverflow:         "OVERFLOW",
	KindStrict:           "STRICT",
	KindExtraneousData:   "EXTRANEOUS_DATA",
	KindExpectedEOD:      "EXPECTED_EOD",
	KindUnsupportedValue: "UNSUPPORTED_VALUE",
}

// String returns the canonical identifier for this error kind.
func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return kindStrings[KindUnknown]
}

// Error is the concrete error type returned by every exported operation in
// this module that can fail for a reason other than allocation failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, iplderr.New(iplderr.KindOverflow, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs an *Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func InvalidType(format string, args ...any) *Error {
	return New(KindInvalidType, format, args...)
}

func InvalidValue(format string, args ...any) *Error {
	return New(KindInvalidValue, format, args...)
}

func Overflow(format string, args ...any) *Error {
	return New(KindOverflow, format, args...)
}

func Strict(format string, args ...any) *Error {
	return New(KindStrict, format, args...)
}

func ExtraneousData(format string, args ...any) *Error {
	return New(KindExtraneousData, format, args...)
}

func ExpectedEOD(format string, args ...any) *Error {
	return New(KindExpectedEOD, format, args...)
}

func UnsupportedValue(format string, args ...any) *Error {
	return New(KindUnsupportedValue, format, args...)
}
