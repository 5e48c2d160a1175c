// Package errors defines the error taxonomy shared by the generation and
// delivery gateways. The wire contract collapses every failure into a
// single {error: message} envelope with status 500, but handlers and tests
// still need to distinguish why a request failed.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure.
type Kind string

const (
	// KindConfiguration indicates a required credential or setting is missing.
	KindConfiguration Kind = "configuration"

	// KindValidation indicates a required request field is missing.
	KindValidation Kind = "validation"

	// KindGeneration indicates the backend answered but did not satisfy the
	// capability's output contract (no matching tool call, no image, ...).
	KindGeneration Kind = "generation"

	// KindBackend indicates the AI backend or the email provider itself
	// failed (network error, non-2xx status, malformed payload).
	KindBackend Kind = "backend"
)

// Error is a classified gateway error. Message is what the caller sees in
// the {error} envelope; Err, when set, is the underlying cause.
type Error struct {
	Kind    Kind
	Message string
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

// Configuration creates a configuration error.
func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Generation creates a generation-contract error.
func Generation(message string) *Error {
	return &Error{Kind: KindGeneration, Message: message}
}

// Backend wraps an upstream failure, keeping the cause attached so the
// envelope can carry the full detail.
func Backend(message string, err error) *Error {
	return &Error{Kind: KindBackend, Message: message, Err: err}
}

// KindOf reports the Kind of err, or empty when err is not a gateway error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the envelope message for err. Errors carrying an
// upstream cause include it, matching the passthrough contract for backend
// failures; unclassified errors fall back to their plain Error() text so
// the caller never sees an empty body.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Err != nil {
			return e.Error()
		}
		return e.Message
	}
	return err.Error()
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
