package auth

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SessionMachine owns the single client session and is the only writer of
// session state and credentials. Transitions are network-bound and rejected,
// not queued, while another transition is resolving.
type SessionMachine struct {
	api      AuthAPI
	creds    *CredentialStore
	codec    *TokenCodec
	resolver *RoleResolver
	logger   Logger
	sink     ActivitySink
	now      func() time.Time

	mu          sync.Mutex
	session     Session
	inFlight    bool
	generation  uint64
	transitions map[SessionStatus]map[SessionStatus]struct{}
}

// MachineOption customizes SessionMachine construction.
type MachineOption func(*SessionMachine)

// WithMachineClock injects a custom clock (useful for tests).
func WithMachineClock(clock func() time.Time) MachineOption {
	return func(m *SessionMachine) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithMachineLogger overrides the default logger.
func WithMachineLogger(logger Logger) MachineOption {
	return func(m *SessionMachine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMachineActivitySink sets the ActivitySink used to publish session events.
func WithMachineActivitySink(sink ActivitySink) MachineOption {
	return func(m *SessionMachine) {
		m.sink = normalizeActivitySink(sink)
	}
}

// WithMachineConfig applies host configuration, currently the expiry leeway
// used by the boot-time codec.
func WithMachineConfig(cfg Config) MachineOption {
	return func(m *SessionMachine) {
		if cfg == nil {
			return
		}
		if secs := cfg.GetExpiryLeewaySeconds(); secs > 0 {
			m.codec = NewTokenCodec(WithExpiryLeeway(time.Duration(secs) * time.Second))
		}
	}
}

// NewSessionMachine returns a machine in the anonymous state. Call CheckAuth
// once at application start to rehydrate a persisted session.
func NewSessionMachine(api AuthAPI, creds *CredentialStore, opts ...MachineOption) *SessionMachine {
	m := &SessionMachine{
		api:      api,
		creds:    creds,
		codec:    NewTokenCodec(),
		resolver: NewRoleResolver(),
		logger:   defLogger{},
		sink:     noopActivitySink{},
		now:      time.Now,
		session:  Session{Status: StatusAnonymous},
		transitions: map[SessionStatus]map[SessionStatus]struct{}{
			StatusAnonymous: {
				StatusAuthenticating: {},
			},
			StatusError: {
				StatusAuthenticating: {},
				StatusAnonymous:      {},
			},
			StatusAuthenticating: {
				StatusAuthenticated: {},
				StatusError:         {},
				StatusAnonymous:     {},
			},
			StatusAuthenticated: {
				StatusRefreshing: {},
				StatusAnonymous:  {},
			},
			StatusRefreshing: {
				StatusAuthenticated: {},
				StatusAnonymous:     {},
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	m.resolver = NewRoleResolver(
		WithResolverLogger(m.logger),
		WithResolverActivitySink(m.sink),
	)

	return m
}

// WithTokenCodec overrides the codec used for boot-time expiry checks.
func (m *SessionMachine) WithTokenCodec(codec *TokenCodec) *SessionMachine {
	if codec != nil {
		m.codec = codec
	}
	return m
}

// Current returns a read-only snapshot of the session.
func (m *SessionMachine) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.snapshot()
}

// Login exchanges credentials for tokens, fetches the canonical profile, and
// persists both. The session is never authenticated with a token but without
// a resolved user.
func (m *SessionMachine) Login(ctx context.Context, email, password string) (Session, error) {
	payload := LoginPayload{Email: email, Password: password}
	if err := payload.Validate(); err != nil {
		return m.Current(), goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	return m.authenticate(ctx, email, false, func(ctx context.Context) (TokenPair, error) {
		return m.api.Login(ctx, email, password)
	})
}

// AdminLogin follows the same two-phase protocol as Login and additionally
// requires the resolved role to be admin or above. A successful token
// exchange with an under-privileged profile is an authorization failure: the
// token is discarded, never persisted.
func (m *SessionMachine) AdminLogin(ctx context.Context, email, password string) (Session, error) {
	payload := LoginPayload{Email: email, Password: password}
	if err := payload.Validate(); err != nil {
		return m.Current(), goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	return m.authenticate(ctx, email, true, func(ctx context.Context) (TokenPair, error) {
		return m.api.AdminLogin(ctx, email, password)
	})
}

// Register creates an account and authenticates it in one flow, with the
// same two-phase token-then-profile protocol as Login.
func (m *SessionMachine) Register(ctx context.Context, payload RegisterPayload) (Session, error) {
	if err := payload.Validate(); err != nil {
		return m.Current(), goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	session, err := m.authenticate(ctx, payload.Email, false, func(ctx context.Context) (TokenPair, error) {
		return m.api.Register(ctx, payload)
	})

	eventType := ActivityEventRegisterSuccess
	if err != nil {
		eventType = ActivityEventRegisterFailure
	}
	m.recordActivity(ctx, ActivityEvent{
		EventType: eventType,
		UserID:    sessionUserID(session),
		Metadata:  map[string]any{"email": payload.Email},
	})

	return session, err
}

// authenticate runs the shared two-phase protocol: (1) exchange credentials
// for tokens, (2) fetch and normalize the canonical profile. Phase-2 failure
// discards the phase-1 token and returns the session to anonymous so no
// half-authenticated state survives.
func (m *SessionMachine) authenticate(ctx context.Context, email string, requireAdmin bool, exchange func(context.Context) (TokenPair, error)) (Session, error) {
	gen, err := m.begin(StatusAuthenticating)
	if err != nil {
		return m.Current(), err
	}

	pair, err := exchange(ctx)
	if err != nil {
		failure := classifyCredentialFailure(err)
		m.finish(gen, func(s *Session) {
			s.Status = StatusError
			s.LastError = failure.Error()
		})
		m.logger.Warn("credential exchange failed for %s: %v", email, err)
		m.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Metadata:  map[string]any{"email": email, "error": failure.Error()},
		})
		return m.Current(), failure
	}

	user, err := m.fetchUser(ctx, pair.AccessToken)
	if err != nil {
		// phase 2 failed after a successful phase 1: the token is discarded
		// and the session returns to anonymous, not error
		m.finish(gen, func(s *Session) {
			*s = Session{Status: StatusAnonymous, LastError: err.Error()}
		})
		m.logger.Warn("profile fetch failed after token exchange for %s: %v", email, err)
		m.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Metadata:  map[string]any{"email": email, "error": err.Error()},
		})
		return m.Current(), wrapNetworkError(err, "profile fetch failed")
	}

	if requireAdmin && !IsAtLeast(user.Role, RoleAdmin) {
		failure := ErrUnauthorizedRole.WithMetadata(map[string]any{
			"role": user.Role,
		})
		m.finish(gen, func(s *Session) {
			*s = Session{Status: StatusAnonymous, LastError: failure.Error()}
		})
		m.logger.Warn("admin login for %s resolved to non-admin role %s", email, user.Role)
		m.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			UserID:    user.ID.String(),
			Metadata:  map[string]any{"email": email, "role": user.Role},
		})
		return m.Current(), failure
	}

	applied := m.finish(gen, func(s *Session) {
		m.creds.SaveTokens(pair)
		if err := m.creds.SaveUser(user); err != nil {
			m.logger.Warn("failed to persist user profile: %v", err)
		}
		s.Status = StatusAuthenticated
		s.User = user
		s.AccessToken = pair.AccessToken
		if pair.RefreshToken != "" {
			s.RefreshToken = pair.RefreshToken
		}
		s.LastError = ""
	})

	if !applied {
		// a logout raced the login; honor the teardown
		return m.Current(), ErrNotAuthenticated
	}

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		UserID:    user.ID.String(),
		ToStatus:  StatusAuthenticated,
		Metadata:  map[string]any{"email": email, "role": user.Role},
	})

	return m.Current(), nil
}

// Refresh exchanges the refresh token for a new access token. Rejection
// means the refresh token is dead: the machine tears the session down fully
// rather than retrying.
func (m *SessionMachine) Refresh(ctx context.Context) (Session, error) {
	gen, err := m.begin(StatusRefreshing)
	if err != nil {
		if goerrors.Is(err, ErrInvalidTransition) {
			return m.Current(), ErrNotAuthenticated
		}
		return m.Current(), err
	}

	refreshToken := m.currentRefreshToken()
	if refreshToken == "" {
		m.teardown(gen)
		return m.Current(), ErrRefreshRejected
	}

	pair, err := m.api.Refresh(ctx, refreshToken)
	if err != nil {
		if m.teardown(gen) {
			m.logger.Warn("refresh rejected, session cleared: %v", err)
			m.recordActivity(ctx, ActivityEvent{
				EventType: ActivityEventRefreshFailure,
				ToStatus:  StatusAnonymous,
				Metadata:  map[string]any{"error": err.Error()},
			})
		}
		return m.Current(), ErrRefreshRejected
	}

	applied := m.finish(gen, func(s *Session) {
		m.creds.SaveTokens(pair)
		s.Status = StatusAuthenticated
		s.AccessToken = pair.AccessToken
		if pair.RefreshToken != "" {
			s.RefreshToken = pair.RefreshToken
		}
	})

	if !applied {
		// logout during refresh wins; the refreshed tokens are discarded
		return m.Current(), ErrNotAuthenticated
	}

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventRefreshSuccess,
		UserID:    sessionUserID(m.Current()),
	})

	return m.Current(), nil
}

// Logout tears the local session down immediately and notifies the remote
// API best-effort. It is honored even while another transition is in
// flight: the in-flight result is discarded when it resolves.
func (m *SessionMachine) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.session.AccessToken
	userID := sessionUserID(m.session)
	wasAnonymous := m.session.Status == StatusAnonymous
	m.teardownLocked("")
	m.mu.Unlock()

	if wasAnonymous {
		return
	}

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventLogout,
		UserID:    userID,
		ToStatus:  StatusAnonymous,
	})

	if token == "" {
		return
	}
	if err := m.api.Logout(ctx, token); err != nil {
		m.logger.Debug("remote logout failed, ignored: %v", err)
	}
}

// CheckAuth rehydrates the session from the credential store at boot. It
// never surfaces errors: a dead or missing token degrades silently to
// anonymous, and the stale credentials are cleared.
func (m *SessionMachine) CheckAuth(ctx context.Context) Session {
	if current := m.Current(); current.Status == StatusAuthenticated {
		return current
	}

	gen, err := m.begin(StatusAuthenticating)
	if err != nil {
		return m.Current()
	}

	token, ok := m.creds.AccessToken()
	if !ok || token == "" || m.codec.IsExpired(token, m.now()) {
		// pre-filtered by expiry: no network call is made for a dead token
		m.teardown(gen)
		return m.Current()
	}

	user, err := m.fetchUser(ctx, token)
	if err != nil {
		m.logger.Debug("boot-time profile fetch failed, degrading to anonymous: %v", err)
		m.teardown(gen)
		return m.Current()
	}

	refreshToken, _ := m.creds.RefreshToken()

	m.finish(gen, func(s *Session) {
		if err := m.creds.SaveUser(user); err != nil {
			m.logger.Warn("failed to persist user profile: %v", err)
		}
		s.Status = StatusAuthenticated
		s.User = user
		s.AccessToken = token
		s.RefreshToken = refreshToken
		s.LastError = ""
	})

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSessionRestored,
		UserID:    user.ID.String(),
		ToStatus:  StatusAuthenticated,
	})

	return m.Current()
}

// ValidateSession probes the remote token-validate path without mutating
// status. A definitive rejection triggers the same teardown as a failed
// refresh; it never attempts a refresh itself. A transport error leaves the
// session untouched: the probe is inconclusive, not failed.
func (m *SessionMachine) ValidateSession(ctx context.Context) (bool, error) {
	m.mu.Lock()
	gen := m.generation
	token := m.session.AccessToken
	authenticated := m.session.Status == StatusAuthenticated
	m.mu.Unlock()

	if !authenticated || token == "" {
		return false, nil
	}

	ok, err := m.api.ValidateToken(ctx, token)
	if err != nil {
		return false, wrapNetworkError(err, "token validation request failed")
	}

	if !ok {
		if m.teardown(gen) {
			m.recordActivity(ctx, ActivityEvent{
				EventType: ActivityEventValidateFailure,
				ToStatus:  StatusAnonymous,
			})
		}
		return false, nil
	}

	return true, nil
}

// fetchUser retrieves the raw remote profile and normalizes it into the
// canonical User. Raw backend strings never reach access decisions directly.
func (m *SessionMachine) fetchUser(ctx context.Context, accessToken string) (*User, error) {
	profile, err := m.api.GetCurrentUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return m.normalizeProfile(ctx, profile)
}

func (m *SessionMachine) normalizeProfile(ctx context.Context, profile RawProfile) (*User, error) {
	id, err := uuid.Parse(profile.ID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "profile has an invalid user id").
			WithMetadata(map[string]any{"id": profile.ID})
	}

	return &User{
		ID:            id,
		Email:         profile.Email,
		Role:          m.resolver.Resolve(ctx, profile.Role),
		DisplayName:   profile.DisplayName,
		EmailVerified: profile.EmailVerified,
		PhoneVerified: profile.PhoneVerified,
		IsActive:      profile.IsActive,
	}, nil
}

// begin claims the single transition slot and moves the session into the
// intermediate status. It fails when a transition is already resolving or
// the graph forbids the move.
func (m *SessionMachine) begin(target SessionStatus) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight {
		return 0, ErrTransitionInFlight.WithMetadata(map[string]any{
			"status": m.session.Status,
			"target": target,
		})
	}

	from := m.session.Status
	if !m.canTransition(from, target) {
		return 0, ErrInvalidTransition.WithMetadata(map[string]any{
			"from": from,
			"to":   target,
		})
	}

	m.inFlight = true
	m.session.Status = target
	m.session.LastError = ""
	return m.generation, nil
}

// finish applies the outcome of a transition unless the session was torn
// down while the network call was in flight, in which case the result is
// discarded (stale-response guard).
func (m *SessionMachine) finish(gen uint64, apply func(*Session)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation {
		return false
	}

	m.inFlight = false
	if apply != nil {
		apply(&m.session)
	}
	return true
}

// teardown clears credentials and resets to anonymous, unless a newer
// teardown already happened.
func (m *SessionMachine) teardown(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation {
		return false
	}

	m.teardownLocked("")
	return true
}

func (m *SessionMachine) teardownLocked(lastError string) {
	m.creds.Clear()
	m.session = Session{Status: StatusAnonymous, LastError: lastError}
	m.generation++
	m.inFlight = false
}

func (m *SessionMachine) canTransition(from, to SessionStatus) bool {
	if allowed, ok := m.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func (m *SessionMachine) currentRefreshToken() string {
	m.mu.Lock()
	token := m.session.RefreshToken
	m.mu.Unlock()

	if token != "" {
		return token
	}
	if persisted, ok := m.creds.RefreshToken(); ok {
		return persisted
	}
	return ""
}

func (m *SessionMachine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = m.now()
	}

	sink := normalizeActivitySink(m.sink)
	if err := sink.Record(ctx, event); err != nil {
		m.logger.Warn("session activity sink error: %v", err)
	}
}

func sessionUserID(s Session) string {
	if s.User == nil {
		return ""
	}
	return s.User.ID.String()
}

// classifyCredentialFailure keeps auth rejections distinct from transport
// failures so callers can branch on category rather than message.
func classifyCredentialFailure(err error) error {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		switch rich.Category {
		case goerrors.CategoryAuth, goerrors.CategoryAuthz:
			return sentinelWithCause(ErrInvalidCredentials, err)
		}
	}
	return wrapNetworkError(err, "credential exchange failed")
}
