// Package apperr defines the error taxonomy shared by the backend client,
// the dispatcher and the protocol adapters.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindPolicy      Kind = "policy"
	KindUnknownTool Kind = "unknown_tool"
	KindBackend     Kind = "backend"
	KindAuth        Kind = "auth"
	KindResolution  Kind = "resolution"
	KindProtocol    Kind = "protocol"
)

// Error is the single error type returned across package boundaries.
// Code is optional; zero means the failure carries no numeric code.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports a missing or invalid parameter.
func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }

// Policy reports a tool refused by the read-only gate.
func Policy(format string, args ...any) *Error { return newf(KindPolicy, format, args...) }

// UnknownTool reports a tool name that resolves to nothing.
func UnknownTool(name string) *Error { return newf(KindUnknownTool, "unknown tool: %s", name) }

// Auth reports a login exchange that produced no usable credential.
func Auth(format string, args ...any) *Error { return newf(KindAuth, format, args...) }

// Resolution reports derived data that could not be assembled.
func Resolution(format string, args ...any) *Error { return newf(KindResolution, format, args...) }

// Protocol reports a malformed envelope or unsupported method.
func Protocol(format string, args ...any) *Error { return newf(KindProtocol, format, args...) }

// Backend reports a non-success or unusable response from the document API.
func Backend(status int, format string, args ...any) *Error {
	e := newf(KindBackend, format, args...)
	e.Code = status
	return e
}

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	e := newf(kind, format, args...)
	e.Err = err
	return e
}

// WithCode returns a copy of e carrying code.
func (e *Error) WithCode(code int) *Error {
	c := *e
	c.Code = code
	return &c
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the numeric code of err, or zero.
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }
