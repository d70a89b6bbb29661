package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenPair is the credential material returned by the remote auth API on
// login, registration, and refresh. RefreshToken may be empty when the
// backend does not rotate it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// RawProfile is the untrusted payload shape the remote auth API uses for the
// current user. Nothing in it is assumed canonical: Role carries whatever
// spelling the backend produced and must pass through the RoleResolver before
// it participates in any access decision.
type RawProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"user_type"`
	DisplayName   string `json:"nombre,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	PhoneVerified bool   `json:"phone_verified"`
	IsActive      bool   `json:"is_active"`
}

// AuthAPI is the remote auth collaborator consumed by the SessionMachine.
// Token-carrying calls take the token explicitly so only the machine ever
// owns credentials. Transport concerns (retries, interceptors, timeouts)
// belong to the implementation, not to this contract.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (TokenPair, error)
	AdminLogin(ctx context.Context, email, password string) (TokenPair, error)
	Register(ctx context.Context, payload RegisterPayload) (TokenPair, error)
	GetCurrentUser(ctx context.Context, accessToken string) (RawProfile, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	ValidateToken(ctx context.Context, accessToken string) (bool, error)
}

// KeyValueStore is the synchronous persistence collaborator the
// CredentialStore wraps. Get reports presence explicitly so an empty value
// and an absent key are distinguishable.
type KeyValueStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Config holds the options the session core reads from its host application.
type Config interface {
	GetAccessTokenKey() string
	GetRefreshTokenKey() string
	GetUserProfileKey() string
	GetLoginPath() string
	GetRedirectCookieKey() string
	GetExpiryLeewaySeconds() int
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
