package auth_test

import (
	"testing"

	auth "github.com/J41RO/MeStore-sub000"
	"github.com/J41RO/MeStore-sub000/store/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialStore_Tokens(t *testing.T) {
	creds := auth.NewCredentialStore(memory.New())

	_, ok := creds.AccessToken()
	assert.False(t, ok)

	creds.SaveTokens(auth.TokenPair{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	})

	access, ok := creds.AccessToken()
	require.True(t, ok)
	assert.Equal(t, "access-1", access)

	refresh, ok := creds.RefreshToken()
	require.True(t, ok)
	assert.Equal(t, "refresh-1", refresh)
}

func TestCredentialStore_RefreshRotationKeepsOldRefreshToken(t *testing.T) {
	creds := auth.NewCredentialStore(memory.New())

	creds.SaveTokens(auth.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"})

	// some backends rotate only the access token; an empty refresh token in
	// the response must not clobber the stored one
	creds.SaveTokens(auth.TokenPair{AccessToken: "access-2"})

	access, _ := creds.AccessToken()
	assert.Equal(t, "access-2", access)

	refresh, ok := creds.RefreshToken()
	require.True(t, ok)
	assert.Equal(t, "refresh-1", refresh)
}

func TestCredentialStore_UserRoundTrip(t *testing.T) {
	creds := auth.NewCredentialStore(memory.New())

	_, ok := creds.User()
	assert.False(t, ok)

	user := &auth.User{
		ID:          uuid.New(),
		Email:       "vendor@mestore.co",
		Role:        auth.RoleVendor,
		DisplayName: "Ana Vendedora",
		IsActive:    true,
	}
	require.NoError(t, creds.SaveUser(user))

	got, ok := creds.User()
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestCredentialStore_SaveNilUser(t *testing.T) {
	creds := auth.NewCredentialStore(memory.New())
	assert.Error(t, creds.SaveUser(nil))
}

func TestCredentialStore_CorruptUserReadsAsAbsent(t *testing.T) {
	kv := memory.New()
	creds := auth.NewCredentialStore(kv)

	kv.Set(auth.DefaultUserProfileKey, "{not json")

	_, ok := creds.User()
	assert.False(t, ok)
}

func TestCredentialStore_Clear(t *testing.T) {
	creds := auth.NewCredentialStore(memory.New())

	creds.SaveTokens(auth.TokenPair{AccessToken: "a", RefreshToken: "r"})
	require.NoError(t, creds.SaveUser(&auth.User{ID: uuid.New(), Email: "x@y.co", Role: auth.RoleBuyer}))

	creds.Clear()

	_, ok := creds.AccessToken()
	assert.False(t, ok)
	_, ok = creds.RefreshToken()
	assert.False(t, ok)
	_, ok = creds.User()
	assert.False(t, ok)
}

func TestCredentialStore_CustomKeysFromConfig(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TOKEN_KEY", "mestore_access")

	cfg, err := auth.LoadConfig()
	require.NoError(t, err)

	kv := memory.New()
	creds := auth.NewCredentialStoreWithConfig(kv, cfg)
	creds.SaveTokens(auth.TokenPair{AccessToken: "token-value"})

	stored, ok := kv.Get("mestore_access")
	require.True(t, ok)
	assert.Equal(t, "token-value", stored)
}
