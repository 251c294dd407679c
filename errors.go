package fetchcore

import (
	"errors"
	"strings"
)

// Error is the fetchcore error domain type.
//
// Errors coming from fetchcore components should be able to be inspected as
// ([errors.As]) an *Error at some point in the error chain.
//
// Implementers of fetchcore components should create an Error at the system
// boundary (e.g. when talking to a remote source) and intermediate layers
// should not wrap in another Error except to add additional [ErrorKind]
// information. That is to say, use [fmt.Errorf] with a "%w" verb in preference
// to creating a containing Error.
type Error struct {
	Inner   error
	Kind    ErrorKind
	Message string
	Op      string
}

// Assert this implements all the cool features.
var (
	_ error                       = (*Error)(nil)
	_ interface{ Is(error) bool } = (*Error)(nil)
	_ interface{ Unwrap() error } = (*Error)(nil)
)

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	b.WriteString("[")
	switch e.Kind {
	case ErrCapability,
		ErrEmpty,
		ErrInvalid,
		ErrNotFound,
		ErrTransport:
		b.WriteString(string(e.Kind))
	default:
		b.WriteString("???")
	}
	b.WriteString("]: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	}
	if e.Message != "" && e.Inner != nil {
		b.WriteString(": ")
	}
	if e.Op == "" && e.Message == "" {
		b.Reset()
	}
	if e.Inner != nil {
		b.WriteString(e.Inner.Error())
	}
	return b.String()
}

// Is enables [errors.Is].
//
// It compares the error kind. Callers should compare against a declared
// [ErrorKind] over a specific error.
func (e *Error) Is(kind error) bool {
	return errors.Is(e.Kind, kind)
}

// Unwrap enables [errors.Unwrap].
func (e *Error) Unwrap() error {
	return e.Inner
}

// ErrorKind represents classes of errors to be checked against.
type ErrorKind string

// Defined error kinds.
//
// The caller-visible outcome of a failed fetch is always ErrNotFound or the
// caller's own context cancellation; the other kinds describe why individual
// sources were eliminated and are retained in logs and wrapped errors for
// diagnostics.
var (
	ErrCapability = ErrorKind("capability unavailable") // source cannot retrieve artifacts at all
	ErrEmpty      = ErrorKind("empty result")           // source ran without fault but produced nothing
	ErrInvalid    = ErrorKind("invalid")                // invalid request
	ErrNotFound   = ErrorKind("not found")              // every source was tried, none supplied the artifact
	ErrTransport  = ErrorKind("transport")              // retrieval failed in flight
)

// Error implements error.
func (e ErrorKind) Error() string {
	return string(e)
}
