// Package apperr defines the error taxonomy shared by the intake operations.
//
// Each operation (login, recording, submission) converts its failures into an
// *Error carrying a Kind at its own boundary. Callers never inspect transport
// errors directly; they switch on KindOf and turn the result into a notice.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the normalized failure category.
type Kind string

const (
	// KindValidation means a mandatory field was missing. No I/O was attempted.
	KindValidation Kind = "validation"

	// KindAuth means the login endpoint answered with a non-success status.
	KindAuth Kind = "auth"

	// KindProtocol means the login endpoint answered with an unreadable body.
	KindProtocol Kind = "protocol"

	// KindConnectivity means the request never completed (DNS, refused, timeout).
	KindConnectivity Kind = "connectivity"

	// KindPermission means the microphone could not be opened or used.
	KindPermission Kind = "permission"

	// KindSubmission covers any other failure while submitting a report.
	KindSubmission Kind = "submission"

	// KindInternal is returned by KindOf for errors outside this taxonomy.
	KindInternal Kind = "internal"
)

// Error wraps an operation failure with its category.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Status  int      // HTTP status for KindAuth
	Fields  []string // missing fields for KindValidation
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if len(e.Fields) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Fields, ", "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap supports errors.Is and errors.As on the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports missing mandatory fields.
func Validation(op string, fields ...string) *Error {
	return &Error{
		Kind:    KindValidation,
		Op:      op,
		Message: "missing required fields",
		Fields:  append([]string(nil), fields...),
	}
}

// Auth reports a non-success login status.
func Auth(op string, status int, message string) *Error {
	return &Error{Kind: KindAuth, Op: op, Status: status, Message: message}
}

// Protocol reports an unparseable response.
func Protocol(op string, err error) *Error {
	return &Error{Kind: KindProtocol, Op: op, Message: "unreadable response", Err: err}
}

// Connectivity reports a network-level failure.
func Connectivity(op string, err error) *Error {
	return &Error{Kind: KindConnectivity, Op: op, Message: "request failed", Err: err}
}

// Permission reports a microphone access failure.
func Permission(op string, err error) *Error {
	return &Error{Kind: KindPermission, Op: op, Message: "microphone unavailable", Err: err}
}

// Submission reports any other failure while sending a report.
func Submission(op string, err error) *Error {
	return &Error{Kind: KindSubmission, Op: op, Message: "report not sent", Err: err}
}

// KindOf extracts the category from err. Nil yields the empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MissingFields returns the fields listed by a validation error.
func MissingFields(err error) []string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindValidation {
		return append([]string(nil), e.Fields...)
	}
	return nil
}

// StatusCode returns the HTTP status attached to an auth error, or zero.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
