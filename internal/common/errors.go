// Package common defines sentinel errors shared by the storage, service and
// transport layers. Callers match them with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Validation errors: missing or malformed request fields.
	ErrValidation = errors.New("validation error")

	// Credential errors.
	ErrDuplicateIdentity  = errors.New("email or username already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Resource errors.
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// Token errors. All of them surface as a single unauthorized outcome
	// at the HTTP boundary.
	ErrTokenMissing      = errors.New("token missing")
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenBadSignature = errors.New("token signature invalid")

	ErrInternal = errors.New("internal error")
)

// Validation returns an error wrapping ErrValidation with a message fit for
// display to the caller.
func Validation(msg string) error {
	return &validationError{msg: msg}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

// ValidationMessage extracts the caller-facing message of a validation
// error, falling back to the sentinel text.
func ValidationMessage(err error) string {
	var v *validationError
	if errors.As(err, &v) {
		return v.msg
	}
	return ErrValidation.Error()
}

// IsTokenError reports whether err is one of the token verification failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenMissing) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenBadSignature)
}

// Wrapf annotates err with a formatted prefix, keeping it matchable.
func Wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
