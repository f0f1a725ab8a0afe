package otp

import "errors"

var (
	// ErrInvalidRequest is returned when a request carries neither a usable
	// email nor a usable phone number.
	ErrInvalidRequest = errors.New("an email address or phone number is required")
	// ErrAccountNotFound is returned when login/recovery is attempted for a
	// target with no account.
	ErrAccountNotFound = errors.New("no account exists for this email or phone")
	// ErrAccountExists is returned when signup is attempted for a target
	// that already has an account.
	ErrAccountExists = errors.New("an account already exists for this email or phone")
	// ErrInvalidOrExpiredCode is returned when no pending code matches the
	// verification request.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	// ErrPasswordRequired is returned when a signup verification is missing
	// the password needed to create the account.
	ErrPasswordRequired = errors.New("a password is required to complete signup")
)

// Stable error codes surfaced to clients. Clients branch on these, never
// on message text.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeUserExists       = "USER_EXISTS"
	CodeInvalidOrExpired = "INVALID_OR_EXPIRED_CODE"
	CodePasswordRequired = "PASSWORD_REQUIRED"
)

// ErrorCode maps a service error onto its wire code. Unknown errors map to
// the empty string so callers can tell client faults from server faults.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrAccountNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrAccountExists):
		return CodeUserExists
	case errors.Is(err, ErrInvalidOrExpiredCode):
		return CodeInvalidOrExpired
	case errors.Is(err, ErrPasswordRequired):
		return CodePasswordRequired
	}
	return ""
}
