// Package cmperr defines the error taxonomy the compare engine returns to
// its callers: a small set of named kinds callers can switch on with
// errors.Is, independent of the wrapped detail message.
package cmperr

import (
	"errors"
	"fmt"
)

// Kind classifies a compare-engine failure. The HTTP handler maps
// ConfigurationError to 400 and every other kind to 422.
type Kind int

const (
	// MalformedPackage means the input bytes are not a readable OOXML
	// package: a broken ZIP, a missing [Content_Types].xml, or a
	// document.xml without a <w:body>.
	MalformedPackage Kind = iota
	// UnsupportedContent means the package parses but contains a
	// construct this engine does not handle (e.g. a run holding a drawing
	// or field character that an edit boundary would have to split).
	UnsupportedContent
	// ConfigurationError means the caller's options are invalid, e.g. a
	// jaccard threshold outside [0,1] or a negative shingle size.
	ConfigurationError
	// SerializationError means the engine produced a result it could not
	// write back out as a package.
	SerializationError
)

func (k Kind) String() string {
	switch k {
	case MalformedPackage:
		return "malformed_package"
	case UnsupportedContent:
		return "unsupported_content"
	case ConfigurationError:
		return "configuration_error"
	case SerializationError:
		return "serialization_error"
	default:
		return "unknown"
	}
}

// Error wraps a Kind with the detail message describing the specific
// failure. Callers distinguish kinds with errors.Is against the sentinel
// values below, and read Unwrap() for the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is the sentinel for e's Kind, so callers can
// write errors.Is(err, cmperr.ErrMalformedPackage).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is comparisons; each carries only a Kind, no message.
var (
	ErrMalformedPackage   = &Error{Kind: MalformedPackage}
	ErrUnsupportedContent = &Error{Kind: UnsupportedContent}
	ErrConfigurationError = &Error{Kind: ConfigurationError}
	ErrSerializationError = &Error{Kind: SerializationError}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Malformed builds a MalformedPackage error.
func Malformed(format string, args ...any) error { return newf(MalformedPackage, format, args...) }

// Unsupported builds an UnsupportedContent error.
func Unsupported(format string, args ...any) error { return newf(UnsupportedContent, format, args...) }

// Configuration builds a ConfigurationError error.
func Configuration(format string, args ...any) error { return newf(ConfigurationError, format, args...) }

// Serialization builds a SerializationError error.
func Serialization(format string, args ...any) error { return newf(SerializationError, format, args...) }

// KindOf reports the Kind of err if it (or something it wraps) is a
// *Error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
