// Package apperrors defines the error taxonomy shared by the persistence layer,
// the authentication gateway and the HTTP handlers. Every error carries a
// message that is safe to show to the user; driver errors stay wrapped inside.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindConstraint     Kind = "constraint"
	KindAuthentication Kind = "authentication"
)

// Error is the canonical application error.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a ValidationError for bad or missing input.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NotFound returns a NotFoundError for a referenced id that does not exist.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// MissingReference returns a NotFoundError for a form field whose id names no row.
func MissingReference(field, message string) *Error {
	return &Error{Kind: KindNotFound, Field: field, Message: message}
}

// Constraint returns a ConstraintError for a uniqueness violation.
func Constraint(field, message string, err error) *Error {
	return &Error{Kind: KindConstraint, Field: field, Message: message, Err: err}
}

// Authentication returns the generic bad-credentials error.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// KindOf reports the kind of err, or "" when err is not an application error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func IsValidation(err error) bool     { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool       { return KindOf(err) == KindNotFound }
func IsConstraint(err error) bool     { return KindOf(err) == KindConstraint }
func IsAuthentication(err error) bool { return KindOf(err) == KindAuthentication }

// FieldOf returns the form field err is attached to, if any.
func FieldOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// Message returns the user-facing message of err. Errors outside the taxonomy
// collapse to fallback so driver details never reach a page.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}
