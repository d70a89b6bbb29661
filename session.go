package auth

import (
	"fmt"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle status of the client session.
type SessionStatus string

const (
	StatusAnonymous      SessionStatus = "anonymous"
	StatusAuthenticating SessionStatus = "authenticating"
	StatusAuthenticated  SessionStatus = "authenticated"
	StatusRefreshing     SessionStatus = "refreshing"
	StatusError          SessionStatus = "error"
)

// User is the canonical identity resolved from the remote profile. It is
// replaced wholesale on every successful login or profile refresh, never
// partially mutated.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	DisplayName   string    `json:"display_name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	IsActive      bool      `json:"is_active"`
}

// Session is a read-only snapshot of the client-held identity. Exactly one
// live session exists per running client, owned by the SessionMachine;
// snapshots handed to callers are copies.
type Session struct {
	User         *User
	AccessToken  string
	RefreshToken string
	Status       SessionStatus
	LastError    string
}

// IsAuthenticated reports whether the snapshot carries an active session.
func (s Session) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// CurrentRole returns the session's role, empty when anonymous.
func (s Session) CurrentRole() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

func (s Session) String() string {
	user := "<nil>"
	if s.User != nil {
		user = s.User.ID.String()
	}
	return fmt.Sprintf("status=%s user=%s role=%s", s.Status, user, s.CurrentRole())
}

// snapshot copies a session so callers never alias machine state. The User
// pointer is deep-copied; User has no reference fields.
func (s Session) snapshot() Session {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}
