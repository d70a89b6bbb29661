package auth

import (
	"encoding/json"

	"github.com/goliatone/go-errors"
)

// Default slot names used when no Config is provided.
const (
	DefaultAccessTokenKey  = "access_token"
	DefaultRefreshTokenKey = "refresh_token"
	DefaultUserProfileKey  = "user_info"
)

// CredentialStore wraps the host's key-value store with named slots for the
// access token, refresh token, and persisted user profile. Only the
// SessionMachine writes to it; last-writer-wins is safe under the
// single-in-flight transition rule.
type CredentialStore struct {
	kv              KeyValueStore
	accessTokenKey  string
	refreshTokenKey string
	userProfileKey  string
}

// NewCredentialStore returns a store using the default slot names.
func NewCredentialStore(kv KeyValueStore) *CredentialStore {
	return &CredentialStore{
		kv:              kv,
		accessTokenKey:  DefaultAccessTokenKey,
		refreshTokenKey: DefaultRefreshTokenKey,
		userProfileKey:  DefaultUserProfileKey,
	}
}

// NewCredentialStoreWithConfig returns a store with slot names from cfg.
func NewCredentialStoreWithConfig(kv KeyValueStore, cfg Config) *CredentialStore {
	store := NewCredentialStore(kv)
	if cfg == nil {
		return store
	}
	if key := cfg.GetAccessTokenKey(); key != "" {
		store.accessTokenKey = key
	}
	if key := cfg.GetRefreshTokenKey(); key != "" {
		store.refreshTokenKey = key
	}
	if key := cfg.GetUserProfileKey(); key != "" {
		store.userProfileKey = key
	}
	return store
}

// SaveTokens persists the access token and, when present, the refresh token.
// An empty refresh token leaves the existing slot untouched so non-rotating
// backends do not wipe it.
func (c *CredentialStore) SaveTokens(pair TokenPair) {
	c.kv.Set(c.accessTokenKey, pair.AccessToken)
	if pair.RefreshToken != "" {
		c.kv.Set(c.refreshTokenKey, pair.RefreshToken)
	}
}

// AccessToken returns the persisted access token, if any.
func (c *CredentialStore) AccessToken() (string, bool) {
	return c.kv.Get(c.accessTokenKey)
}

// RefreshToken returns the persisted refresh token, if any.
func (c *CredentialStore) RefreshToken() (string, bool) {
	return c.kv.Get(c.refreshTokenKey)
}

// SaveUser persists the canonical user profile. Only non-secret profile
// fields are serialized; credentials never pass through this slot.
func (c *CredentialStore) SaveUser(user *User) error {
	if user == nil {
		return errors.New("cannot persist nil user", errors.CategoryBadInput)
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to serialize user profile")
	}

	c.kv.Set(c.userProfileKey, string(raw))
	return nil
}

// User returns the persisted user profile, if any. A corrupt payload reads
// as absent: the profile is a cache of server state, not a source of truth.
func (c *CredentialStore) User() (*User, bool) {
	raw, ok := c.kv.Get(c.userProfileKey)
	if !ok || raw == "" {
		return nil, false
	}

	user := &User{}
	if err := json.Unmarshal([]byte(raw), user); err != nil {
		return nil, false
	}
	return user, true
}

// Clear removes every slot. Called on logout and on any fail-closed
// teardown.
func (c *CredentialStore) Clear() {
	c.kv.Remove(c.accessTokenKey)
	c.kv.Remove(c.refreshTokenKey)
	c.kv.Remove(c.userProfileKey)
}
