package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeUnauthorizedRole   = "UNAUTHORIZED_ROLE"
	TextCodeRefreshRejected    = "REFRESH_REJECTED"
	TextCodeTransitionInFlight = "TRANSITION_IN_FLIGHT"
	TextCodeInvalidTransition  = "INVALID_SESSION_TRANSITION"
	TextCodeNotAuthenticated   = "NOT_AUTHENTICATED"
)

// ErrTokenMalformed is returned when a bearer token cannot be decoded.
// Malformed tokens are treated as expired everywhere expiry is checked.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a bearer token is past its expiry claim.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials is returned when the remote auth API rejects a login
// or registration. The session stays anonymous.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthorizedRole is returned when an admin login succeeds at the API but
// the resolved role is below admin. The acquired token is discarded.
var ErrUnauthorizedRole = errors.New("account role is not authorized for admin access", errors.CategoryAuthz).
	WithTextCode(TextCodeUnauthorizedRole).
	WithCode(errors.CodeForbidden)

// ErrRefreshRejected is returned when the refresh token is invalid or
// expired. The machine recovers by tearing the session down, never by
// retrying.
var ErrRefreshRejected = errors.New("refresh token rejected", errors.CategoryAuth).
	WithTextCode(TextCodeRefreshRejected).
	WithCode(errors.CodeUnauthorized)

// ErrTransitionInFlight is returned when a transition is requested while
// another is still resolving. Requests are rejected, not queued.
var ErrTransitionInFlight = errors.New("session transition already in flight", errors.CategoryConflict).
	WithTextCode(TextCodeTransitionInFlight).
	WithCode(errors.CodeConflict)

// ErrInvalidTransition is returned when a requested status change is not
// allowed from the current session status.
var ErrInvalidTransition = errors.New("invalid session transition", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidTransition).
	WithCode(errors.CodeBadRequest)

// ErrNotAuthenticated is returned by transitions that require an active
// session (refresh, validate) when there is none.
var ErrNotAuthenticated = errors.New("no authenticated session", errors.CategoryAuth).
	WithTextCode(TextCodeNotAuthenticated).
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed")
}

// sentinelWithCause wraps cause so that both the sentinel and the original
// error survive errors.Is checks on the returned chain.
func sentinelWithCause(sentinel *errors.Error, cause error) *errors.Error {
	return errors.Wrap(errors.Join(sentinel, cause), sentinel.Category, sentinel.Message).
		WithTextCode(sentinel.TextCode).
		WithCode(sentinel.Code)
}

// wrapNetworkError normalizes transport failures surfaced by the AuthAPI
// collaborator so callers can branch on category rather than message.
func wrapNetworkError(err error, msg string) error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}
	return errors.Wrap(err, errors.CategoryOperation, msg)
}
