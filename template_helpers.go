package auth

import (
	"github.com/goliatone/go-router"
)

var TemplateUserKey = "current_user"

// TemplateHelpers returns a map of helper functions and data that can be
// used as a template engine's global data for session-aware rendering.
//
// In templates:
//
//	{% if current_user %}
//	{% if current_user|has_role:"vendor" %}
//	{% if current_user|is_at_least:"admin" %}
func TemplateHelpers() map[string]any {
	return map[string]any{
		"is_authenticated": isAuthenticatedHelper,
		"has_role":         hasRoleHelper,
		"is_at_least":      isAtLeastHelper,
		"can_access":       canAccessHelper,

		// Role constants for easy template access
		"roles": map[string]string{
			"buyer":     string(RoleBuyer),
			"vendor":    string(RoleVendor),
			"admin":     string(RoleAdmin),
			"superuser": string(RoleSuperUser),
		},
	}
}

// TemplateHelpersWithSession returns template helpers with the session's
// user injected as current_user.
func TemplateHelpersWithSession(session Session) map[string]any {
	helpers := TemplateHelpers()
	if session.User != nil {
		helpers[TemplateUserKey] = session.User
	}
	return helpers
}

// TemplateHelpersWithRouter returns template helpers with the session
// extracted from the router context, as set by the route guard middleware.
func TemplateHelpersWithRouter(ctx router.Context, sessionKey string) map[string]any {
	if sessionKey == "" {
		sessionKey = SessionContextKey
	}

	helpers := TemplateHelpers()
	if session, ok := SessionFromRouter(ctx, sessionKey); ok && session.User != nil {
		helpers[TemplateUserKey] = session.User
	}
	return helpers
}

func isAuthenticatedHelper(user *User) bool {
	return user != nil
}

func hasRoleHelper(user *User, role string) bool {
	if user == nil {
		return false
	}
	return string(user.Role) == role
}

func isAtLeastHelper(user *User, minRole string) bool {
	if user == nil {
		return false
	}
	return IsAtLeast(user.Role, Role(minRole))
}

func canAccessHelper(user *User, strategy string, roles ...string) bool {
	if user == nil {
		return false
	}

	parsed, ok := ParseStrategy(strategy)
	if !ok {
		return false
	}

	required := make([]Role, 0, len(roles))
	for _, r := range roles {
		required = append(required, Role(r))
	}

	return Evaluate(user.Role, required, parsed)
}
