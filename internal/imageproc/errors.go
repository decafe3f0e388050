package imageproc

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures by who caused them.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnsupportedFormat
	KindDecode
	KindIO
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindDecode:
		return "decode"
	case KindIO:
		return "io"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// GenericMessage is shown to end users for failures whose detail may leak
// filesystem layout.
const GenericMessage = "processing failed"

// Error is returned by every pipeline stage. Msg is safe to show to the
// uploader for validation and format failures; Err carries the cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// ValidationError reports a client-caused, actionable upload problem.
func ValidationError(op, msg string) error { return newError(KindValidation, op, msg, nil) }

// UnsupportedFormatError reports a sniffed type outside the allow-list.
func UnsupportedFormatError(op, msg string) error {
	return newError(KindUnsupportedFormat, op, msg, nil)
}

// DecodeError reports bytes that claim an allowed format but fail to decode.
func DecodeError(op string, err error) error { return newError(KindDecode, op, "", err) }

// IOError reports an environment-caused filesystem failure.
func IOError(op string, err error) error { return newError(KindIO, op, "", err) }

// NotFoundError reports a missing subject or staged file.
func NotFoundError(op, msg string) error { return newError(KindNotFound, op, msg, nil) }

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// OpOf returns the operation that produced err, or "".
func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return err != nil && KindOf(err) == kind }

// PublicMessage returns the text that may be displayed to the uploader.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return GenericMessage
	}
	switch e.Kind {
	case KindValidation, KindUnsupportedFormat:
		return e.Msg
	case KindNotFound:
		return "image not found"
	default:
		return GenericMessage
	}
}
