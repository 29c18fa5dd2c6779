package mesh

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures. The set is closed: consumers
// switch on it exhaustively rather than probing error strings.
type ErrorKind int

const (
	KindLoad                ErrorKind = iota // file could not be read or parsed
	KindInvalidFormat                        // structurally valid input, unsupported/malformed for the operation
	KindUnsupportedDataType                  // recognized but unimplemented case
	KindMissingData                          // required section absent
	KindIndexOutOfBounds                     // index buffer inconsistency
	KindAttributeMismatch                    // attribute length does not match element count
	KindConversion                           // numeric conversion failed
	KindIO                                   // underlying I/O failure
)

func (k ErrorKind) String() string {
	switch k {
	case KindLoad:
		return "load error"
	case KindInvalidFormat:
		return "invalid format"
	case KindUnsupportedDataType:
		return "unsupported data type"
	case KindMissingData:
		return "missing data"
	case KindIndexOutOfBounds:
		return "index out of bounds"
	case KindAttributeMismatch:
		return "attribute mismatch"
	case KindConversion:
		return "conversion error"
	case KindIO:
		return "io error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the error type returned by every failing pipeline operation.
// No operation ever returns an empty Geometry as a disguised failure.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is (or wraps) a mesh.Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var me *Error
	return errors.As(err, &me) && me.Kind == kind
}

// ErrLoad reports a failure to read or parse the underlying file.
func ErrLoad(detail string, err error) *Error {
	return &Error{Kind: KindLoad, Detail: detail, Err: err}
}

// ErrInvalidFormat reports input that is semantically unsupported or
// malformed for the requested operation.
func ErrInvalidFormat(detail string) *Error {
	return &Error{Kind: KindInvalidFormat, Detail: detail}
}

// ErrUnsupported reports a recognized-but-unimplemented case.
func ErrUnsupported(detail string) *Error {
	return &Error{Kind: KindUnsupportedDataType, Detail: detail}
}

// ErrMissingData reports a required section that is absent from the input.
func ErrMissingData(what string) *Error {
	return &Error{Kind: KindMissingData, Detail: what}
}

// ErrIndexOutOfBounds reports an index referencing past the end of a buffer.
func ErrIndexOutOfBounds(index, max int) *Error {
	return &Error{Kind: KindIndexOutOfBounds, Detail: fmt.Sprintf("index %d (max %d)", index, max)}
}

// ErrAttributeMismatch reports an attribute array whose length does not
// match the element count it is attached to.
func ErrAttributeMismatch(size, expected int) *Error {
	return &Error{Kind: KindAttributeMismatch, Detail: fmt.Sprintf("attribute size %d, expected %d", size, expected)}
}

// ErrConversion reports a failed numeric conversion. This indicates corrupt
// or mistyped input and is never silently defaulted.
func ErrConversion(detail string, err error) *Error {
	return &Error{Kind: KindConversion, Detail: detail, Err: err}
}

// ErrIO wraps an underlying I/O failure.
func ErrIO(err error) *Error {
	return &Error{Kind: KindIO, Err: err}
}
