package auth

import "context"

// Role is the canonical privilege category of a user
type Role = string

const (
	// RoleBuyer is the least privileged role (browse, purchase)
	RoleBuyer Role = "buyer"
	// RoleVendor is a marketplace seller (buyer + storefront management)
	RoleVendor Role = "vendor"
	// RoleAdmin is a marketplace operator (vendor oversight, moderation)
	RoleAdmin Role = "admin"
	// RoleSuperUser is the platform owner (full control)
	RoleSuperUser Role = "superuser"
)

// roleRank orders roles for the minimum access strategy. Strictly increasing;
// used nowhere else.
var roleRank = map[Role]int{
	RoleBuyer:     1,
	RoleVendor:    2,
	RoleAdmin:     3,
	RoleSuperUser: 4,
}

// IsValidRole checks if the role is one of the canonical roles
func IsValidRole(r Role) bool {
	_, ok := roleRank[r]
	return ok
}

// RoleRank returns the hierarchical rank of a canonical role, 0 if unknown.
func RoleRank(r Role) int {
	return roleRank[r]
}

// IsAtLeast checks whether role meets the minimum required level. Unknown
// roles never satisfy any minimum.
func IsAtLeast(role, minRole Role) bool {
	current, ok := roleRank[role]
	if !ok {
		return false
	}
	min, ok := roleRank[minRole]
	if !ok {
		return false
	}
	return current >= min
}

// AllRoles returns the canonical roles in hierarchical order
func AllRoles() []Role {
	return []Role{RoleBuyer, RoleVendor, RoleAdmin, RoleSuperUser}
}

// roleAliases is the exhaustive, case-sensitive table of every backend
// spelling observed in the wild: canonical uppercase names, lowercase and
// capitalized variants, and the legacy dotted enum-style strings older API
// versions still emit. Lookups are exact; the table carries each casing
// rather than callers normalizing input.
var roleAliases = map[string]Role{
	"BUYER":     RoleBuyer,
	"buyer":     RoleBuyer,
	"Buyer":     RoleBuyer,
	"COMPRADOR": RoleBuyer,
	"comprador": RoleBuyer,

	"VENDOR":   RoleVendor,
	"vendor":   RoleVendor,
	"Vendor":   RoleVendor,
	"VENDEDOR": RoleVendor,
	"vendedor": RoleVendor,

	"ADMIN": RoleAdmin,
	"admin": RoleAdmin,
	"Admin": RoleAdmin,

	"SUPERUSER":  RoleSuperUser,
	"superuser":  RoleSuperUser,
	"SuperUser":  RoleSuperUser,
	"SUPER_USER": RoleSuperUser,

	// Legacy dotted enum serialization
	"UserType.BUYER":     RoleBuyer,
	"UserType.COMPRADOR": RoleBuyer,
	"UserType.VENDOR":    RoleVendor,
	"UserType.VENDEDOR":  RoleVendor,
	"UserType.ADMIN":     RoleAdmin,
	"UserType.SUPERUSER": RoleSuperUser,
}

// RoleResolver normalizes raw backend role strings into canonical Role
// values. Unknown spellings resolve to buyer (least privilege) and emit a
// diagnostic so an unrecognized backend role never silently grants access.
type RoleResolver struct {
	logger Logger
	sink   ActivitySink
}

// ResolverOption customizes RoleResolver construction.
type ResolverOption func(*RoleResolver)

// WithResolverLogger overrides the logger used for unmapped-role diagnostics.
func WithResolverLogger(logger Logger) ResolverOption {
	return func(r *RoleResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithResolverActivitySink sets the sink used to publish unmapped-role events.
func WithResolverActivitySink(sink ActivitySink) ResolverOption {
	return func(r *RoleResolver) {
		r.sink = normalizeActivitySink(sink)
	}
}

// NewRoleResolver returns a resolver backed by the alias table.
func NewRoleResolver(opts ...ResolverOption) *RoleResolver {
	r := &RoleResolver{
		logger: defLogger{},
		sink:   noopActivitySink{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve maps a raw backend role string to exactly one canonical Role.
// Resolution is deterministic: the same input always yields the same output.
func (r *RoleResolver) Resolve(ctx context.Context, raw string) Role {
	if role, ok := roleAliases[raw]; ok {
		return role
	}

	r.logger.Warn("unmapped backend role %q, defaulting to buyer", raw)
	if err := r.sink.Record(ctx, ActivityEvent{
		EventType: ActivityEventRoleUnmapped,
		Metadata:  map[string]any{"raw": raw},
	}); err != nil {
		r.logger.Warn("role resolver activity sink error: %v", err)
	}

	return RoleBuyer
}

// KnownRoleVariants returns every raw spelling the resolver maps, useful for
// exhaustiveness checks in tests and tooling.
func KnownRoleVariants() []string {
	variants := make([]string, 0, len(roleAliases))
	for raw := range roleAliases {
		variants = append(variants, raw)
	}
	return variants
}
