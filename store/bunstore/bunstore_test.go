package bunstore_test

import (
	"testing"

	"github.com/J41RO/MeStore-sub000/store/bunstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *bunstore.Store {
	t.Helper()
	store, err := bunstore.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openStore(t)

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Set("access_token", "token-1")
	got, ok := store.Get("access_token")
	require.True(t, ok)
	assert.Equal(t, "token-1", got)
}

func TestStoreUpsert(t *testing.T) {
	store := openStore(t)

	store.Set("k", "v1")
	store.Set("k", "v2")

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", got)
}

func TestStoreRemove(t *testing.T) {
	store := openStore(t)

	store.Set("k", "v")
	store.Remove("k")

	_, ok := store.Get("k")
	assert.False(t, ok)

	// removing again is a no-op
	store.Remove("k")
}
