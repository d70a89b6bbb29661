package auth

// GuardOutcome is the kind of decision a route guard produces.
type GuardOutcome string

const (
	// OutcomeAllow renders the protected content.
	OutcomeAllow GuardOutcome = "allow"
	// OutcomeFallback renders the caller-provided fallback.
	OutcomeFallback GuardOutcome = "fallback"
	// OutcomeRedirect navigates away, carrying the original destination.
	OutcomeRedirect GuardOutcome = "redirect"
	// OutcomeDenied renders the built-in access-denied view.
	OutcomeDenied GuardOutcome = "denied"
)

// DefaultLoginPath is where unauthenticated requests are sent when the
// caller does not configure one.
const DefaultLoginPath = "/login"

// DeniedContext reports why access was denied, derived from the evaluator's
// inputs rather than re-queried state.
type DeniedContext struct {
	CurrentRole   Role
	RequiredRoles []Role
	Strategy      Strategy
}

// Decision is the outcome of a guard evaluation. RedirectTo is set for
// OutcomeRedirect; ReturnTo carries the originally requested path so the
// caller can come back after authenticating. Denied is set for
// OutcomeDenied.
type Decision struct {
	Outcome    GuardOutcome
	RedirectTo string
	ReturnTo   string
	Denied     *DeniedContext
}

// GuardQuery describes a protected route: which roles it requires (none
// means session presence alone gates it), the comparison strategy, the
// requested path, and the fallback/redirect behavior on denial.
type GuardQuery struct {
	RequiredRoles  []Role
	Strategy       Strategy
	RequestedPath  string
	LoginPath      string
	HasFallback    bool
	RedirectTarget string
}

// Decide produces a guard decision for the session and query. It never
// mutates the session and always yields a representable outcome: absence of
// a session is a redirect, not an error.
func Decide(session Session, query GuardQuery) Decision {
	loginPath := query.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}

	if !session.IsAuthenticated() {
		return Decision{
			Outcome:    OutcomeRedirect,
			RedirectTo: loginPath,
			ReturnTo:   query.RequestedPath,
		}
	}

	if len(query.RequiredRoles) == 0 {
		return Decision{Outcome: OutcomeAllow}
	}

	strategy := query.Strategy
	if strategy == "" {
		strategy = StrategyAny
	}

	if Evaluate(session.CurrentRole(), query.RequiredRoles, strategy) {
		return Decision{Outcome: OutcomeAllow}
	}

	if query.HasFallback {
		return Decision{Outcome: OutcomeFallback}
	}

	if query.RedirectTarget != "" {
		return Decision{
			Outcome:    OutcomeRedirect,
			RedirectTo: query.RedirectTarget,
			ReturnTo:   query.RequestedPath,
		}
	}

	return Decision{
		Outcome: OutcomeDenied,
		Denied: &DeniedContext{
			CurrentRole:   session.CurrentRole(),
			RequiredRoles: query.RequiredRoles,
			Strategy:      strategy,
		},
	}
}
