// Package simerr centralizes the discriminated error kinds shared across
// the core's packages: UnknownBody, OutOfRange, NumericalFailure,
// Unsupported, and IoError. Callers that need to branch on kind use
// simerr.Is or KindOf, or errors.As to recover the *Error and inspect its
// Body/Detail fields.
package simerr

import (
	"errors"
	"fmt"
)

// Kind discriminates the five error categories.
type Kind int

const (
	// UnknownBody: requested BodyId not in the registry or provider.
	UnknownBody Kind = iota
	// OutOfRange: requested instant outside the provider's validity window.
	OutOfRange
	// NumericalFailure: a solver did not converge, or a state vector
	// contains a non-finite component.
	NumericalFailure
	// Unsupported: a provider-specific operation is not implemented by
	// this source.
	Unsupported
	// IoError: opening or reading a precomputed kernel failed.
	IoError
)

func (k Kind) String() string {
	switch k {
	case UnknownBody:
		return "unknown body"
	case OutOfRange:
		return "out of range"
	case NumericalFailure:
		return "numerical failure"
	case Unsupported:
		return "unsupported"
	case IoError:
		return "io error"
	default:
		return "unknown error kind"
	}
}

// Error is the concrete error type returned across package boundaries.
// Body and Instant are optional context fields, populated when available;
// zero values mean "not applicable".
type Error struct {
	Kind    Kind
	Body    string  // BodyId involved, if any
	Instant float64 // seconds past J2000, if any
	Detail  string
	Wrapped error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Body != "" {
		msg += fmt.Sprintf(" (body %q)", e.Body)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is reports whether target is an *Error of the same Kind, so errors.Is
// with such a target matches a wrapped *Error by kind alone.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// NewUnknownBody builds an UnknownBody error for the given BodyId.
func NewUnknownBody(body string) *Error {
	return &Error{Kind: UnknownBody, Body: body}
}

// NewOutOfRange builds an OutOfRange error for a query at instant seconds
// past J2000 against the given body.
func NewOutOfRange(body string, instant float64, detail string) *Error {
	return &Error{Kind: OutOfRange, Body: body, Instant: instant, Detail: detail}
}

// NewNumericalFailure builds a NumericalFailure error, optionally wrapping
// an underlying cause (e.g. a non-convergent solver iteration count).
func NewNumericalFailure(detail string, wrapped error) *Error {
	return &Error{Kind: NumericalFailure, Detail: detail, Wrapped: wrapped}
}

// NewUnsupported builds an Unsupported error describing the operation that
// the provider does not implement.
func NewUnsupported(detail string) *Error {
	return &Error{Kind: Unsupported, Detail: detail}
}

// NewIoError builds an IoError wrapping the underlying file/parse failure.
func NewIoError(detail string, wrapped error) *Error {
	return &Error{Kind: IoError, Detail: detail, Wrapped: wrapped}
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error, along
// with ok=true; otherwise returns (0, false).
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err is (or wraps) a *Error of the given kind.
func Is(err error, k Kind) bool {
	kind, ok := KindOf(err)
	return ok && kind == k
}
