package auth_test

import (
	"context"
	"testing"

	auth "github.com/J41RO/MeStore-sub000"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Email: "u@mestore.co", Role: auth.RoleAdmin}

	ctx := auth.WithContext(context.Background(), user)

	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestSessionContextRoundTrip(t *testing.T) {
	session := authenticatedSession(auth.RoleVendor)

	ctx := auth.WithSessionContext(context.Background(), session)

	got, ok := auth.SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, session, got)

	_, ok = auth.SessionFromContext(context.Background())
	assert.False(t, ok)
}

func TestSessionFromRouter(t *testing.T) {
	session := authenticatedSession(auth.RoleBuyer)

	c := &MockContext{}
	c.On("Locals", "session").Return(session)

	got, ok := auth.SessionFromRouter(c, "")
	require.True(t, ok)
	assert.Equal(t, session, got)
}

func TestSessionFromRouterMissing(t *testing.T) {
	c := &MockContext{}
	c.On("Locals", "session").Return(nil)

	_, ok := auth.SessionFromRouter(c, "")
	assert.False(t, ok)
}

func TestCanAccess(t *testing.T) {
	ctx := auth.WithSessionContext(context.Background(), authenticatedSession(auth.RoleAdmin))

	assert.True(t, auth.CanAccess(ctx, []auth.Role{auth.RoleAdmin}, auth.StrategyAny))
	assert.True(t, auth.CanAccess(ctx, []auth.Role{auth.RoleVendor}, auth.StrategyMinimum))
	assert.False(t, auth.CanAccess(ctx, []auth.Role{auth.RoleSuperUser}, auth.StrategyExact))

	// no session in context denies
	assert.False(t, auth.CanAccess(context.Background(), []auth.Role{auth.RoleBuyer}, auth.StrategyAny))
}
