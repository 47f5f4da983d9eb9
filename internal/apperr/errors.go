package apperr

import "fmt"

// Kind classifies an application error so the HTTP layer can pick a status
// code without inspecting error strings.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is the discriminated failure returned by every service operation.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a missing or malformed required field.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Unauthorized reports a missing or invalid principal.
func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// Forbidden reports a principal whose role is not permitted for the operation.
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// NotFound reports an absent entity on a singular lookup.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Conflict reports a uniqueness violation.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// Internal wraps an unexpected store or IO failure. The wrapped error is kept
// for server-side logs; callers only see msg.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindInternal for errors
// that did not originate in a service.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindInternal
}

// Message returns the caller-safe message for err. Internal errors are
// surfaced opaquely.
func Message(err error) string {
	if e, ok := err.(*Error); ok && e.Kind != KindInternal {
		return e.Msg
	}
	return "internal server error"
}
