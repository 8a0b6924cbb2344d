// Package domainerrors defines the typed error outcomes returned by services.
//
// Every failure a caller can observe carries a Code. Transport layers map codes
// to status codes; services never signal authorization failures through empty
// results.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	CodeNotFound                  Code = "not_found"
	CodeAlreadyRegistered         Code = "already_registered"
	CodeIdentityMismatch          Code = "identity_mismatch"
	CodeIdentityConflict          Code = "identity_conflict"
	CodeUnauthorized              Code = "unauthorized"
	CodeForbidden                 Code = "forbidden"
	CodeExternalDependencyFailure Code = "external_dependency_failure"
	CodeBadRequest                Code = "bad_request"
	CodeInvalidInput              Code = "invalid_input"
	CodeTimeout                   Code = "timeout"
	CodeInternal                  Code = "internal_error"
)

// Error is the concrete domain error. Err holds the wrapped cause, if any.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether err (or anything it wraps) is a domain error with code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost domain code, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost domain message, or "" for foreign errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
