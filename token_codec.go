package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the claim set the MeStore backend embeds in bearer tokens.
// Only the fields the client reads are modeled; everything else rides along
// in RegisteredClaims.
type TokenClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	Email    string `json:"email,omitempty"`
	UserRole string `json:"user_type,omitempty"`
}

// UserID returns the uid claim, falling back to the subject.
func (c *TokenClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time, zero when the claim is absent.
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// TokenCodec decodes bearer tokens and answers expiry questions. It never
// verifies signatures: that is the server's job. The codec exists so the
// client can avoid firing requests with known-dead tokens.
type TokenCodec struct {
	parser *jwt.Parser
	leeway time.Duration
}

// CodecOption customizes TokenCodec construction.
type CodecOption func(*TokenCodec)

// WithExpiryLeeway tolerates clock drift between client and server when
// checking the exp claim.
func WithExpiryLeeway(leeway time.Duration) CodecOption {
	return func(c *TokenCodec) {
		if leeway > 0 {
			c.leeway = leeway
		}
	}
}

// NewTokenCodec returns a codec for three-segment signed tokens.
func NewTokenCodec(opts ...CodecOption) *TokenCodec {
	c := &TokenCodec{
		parser: jwt.NewParser(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Decode splits the token, base64-decodes the claims segment, and parses it.
// A token without exactly three dot-separated segments, or whose claims
// segment is not valid base64/JSON, fails with ErrTokenMalformed.
func (c *TokenCodec) Decode(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := c.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, sentinelWithCause(ErrTokenMalformed, err)
	}
	return claims, nil
}

// IsExpired reports whether the token is past its exp claim at the given
// instant. Fail-closed: undecodable tokens and tokens without an exp claim
// are both treated as expired.
func (c *TokenCodec) IsExpired(tokenString string, now time.Time) bool {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return true
	}

	exp := claims.Expires()
	if exp.IsZero() {
		return true
	}

	return exp.Add(c.leeway).Before(now)
}
