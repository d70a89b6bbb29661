package auth

// Strategy is the comparison rule used to decide whether a role satisfies an
// access requirement.
type Strategy string

const (
	// StrategyExact requires exactly one required role matching the current one.
	StrategyExact Strategy = "exact"
	// StrategyAny grants access when the current role is in the required set.
	StrategyAny Strategy = "any"
	// StrategyAll requires the user to hold every required role. Users hold
	// exactly one role, so more than one required role is unsatisfiable by
	// construction. That is intentional, not a bug: callers wanting "admin or
	// vendor" must use StrategyAny.
	StrategyAll Strategy = "all"
	// StrategyMinimum grants access when the current role ranks at or above
	// the single required role.
	StrategyMinimum Strategy = "minimum"
)

// ParseStrategy maps a raw string to a Strategy, reporting validity.
func ParseStrategy(raw string) (Strategy, bool) {
	switch Strategy(raw) {
	case StrategyExact, StrategyAny, StrategyAll, StrategyMinimum:
		return Strategy(raw), true
	default:
		return "", false
	}
}

// Evaluate answers whether current satisfies the required roles under the
// given strategy. Pure and stateless. An empty current role (no session)
// never grants access, and strategy misuse denies rather than guesses.
func Evaluate(current Role, required []Role, strategy Strategy) bool {
	if current == "" {
		return false
	}

	switch strategy {
	case StrategyExact:
		return len(required) == 1 && current == required[0]
	case StrategyAny:
		for _, role := range required {
			if current == role {
				return true
			}
		}
		return false
	case StrategyAll:
		return len(required) == 1 && current == required[0]
	case StrategyMinimum:
		if len(required) != 1 {
			return false
		}
		return IsAtLeast(current, required[0])
	default:
		return false
	}
}

// Evaluator wraps Evaluate with a logger so strategy misuse (for example
// minimum with more than one required role) is diagnosed rather than
// silently denied.
type Evaluator struct {
	logger Logger
}

// NewEvaluator returns an evaluator using the given logger, or the default
// when nil.
func NewEvaluator(logger Logger) *Evaluator {
	if logger == nil {
		logger = defLogger{}
	}
	return &Evaluator{logger: logger}
}

// Evaluate mirrors the package-level Evaluate and reports caller errors.
func (e *Evaluator) Evaluate(current Role, required []Role, strategy Strategy) bool {
	if _, ok := ParseStrategy(string(strategy)); !ok {
		e.logger.Warn("unknown access strategy %q, denying", strategy)
		return false
	}

	if strategy == StrategyMinimum && len(required) != 1 {
		e.logger.Warn("minimum strategy requires exactly one role, got %d, denying", len(required))
		return false
	}

	if strategy == StrategyAll && len(required) > 1 {
		e.logger.Debug("all strategy over %d roles is unsatisfiable for single-role users", len(required))
	}

	return Evaluate(current, required, strategy)
}
