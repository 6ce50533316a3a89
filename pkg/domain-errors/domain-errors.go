package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeInternal           Code = "internal_error"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"
	CodeLimitExceeded      Code = "limit_exceeded"
	CodeUpstream           Code = "upstream_error"

	// Step-up MFA error codes. These drive the client back into the
	// verification flow, so they must stay distinct from generic
	// authorization failures.
	CodeMFARequired     Code = "mfa_required"      // No token held for the requested action
	CodeMFATokenExpired Code = "mfa_token_expired" // Token existed but its validity window passed
	CodeOTPInvalid      Code = "otp_invalid"       // Wrong or malformed one-time passcode
	CodeSessionConflict Code = "session_conflict"  // An MFA session for this action is already in flight
	CodeResendCooldown  Code = "resend_cooldown"   // Resend requested before the cooldown elapsed
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		// Preserve the original domain code, update message
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsMFARejection reports whether an error indicates the held MFA token
// was missing, invalid, or expired. Callers must react by clearing the
// token and forcing a fresh verification cycle, never by retrying.
func IsMFARejection(err error) bool {
	return HasCode(err, CodeMFARequired) || HasCode(err, CodeMFATokenExpired)
}
