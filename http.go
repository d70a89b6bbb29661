package auth

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// SessionContextKey is the router-locals key guarded handlers read the
// session snapshot from.
var SessionContextKey = "session"

// RouteGuardHandler applies guard decisions to HTTP routes. It reads the
// session from the SessionMachine on every request and never mutates it.
type RouteGuardHandler struct {
	machine      *SessionMachine
	cfg          Config
	evaluator    *Evaluator
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
	DeniedView   string
}

// NewRouteGuard returns a guard handler bound to the machine. cfg may be nil,
// in which case defaults apply.
func NewRouteGuard(machine *SessionMachine, cfg Config) *RouteGuardHandler {
	g := &RouteGuardHandler{
		machine:    machine,
		cfg:        cfg,
		Logger:     defLogger{},
		DeniedView: "errors/403",
	}
	g.evaluator = NewEvaluator(g.Logger)
	g.ErrorHandler = g.defaultErrHandler
	return g
}

// WithLogger overrides the guard's logger.
func (g *RouteGuardHandler) WithLogger(logger Logger) *RouteGuardHandler {
	if logger != nil {
		g.Logger = logger
		g.evaluator = NewEvaluator(logger)
	}
	return g
}

// Protect gates a route on session presence alone.
func (g *RouteGuardHandler) Protect() router.MiddlewareFunc {
	return g.ProtectRoles(nil, "")
}

// ProtectRoles gates a route on session presence plus an access query.
func (g *RouteGuardHandler) ProtectRoles(required []Role, strategy Strategy) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			session := g.machine.Current()
			decision := Decide(session, GuardQuery{
				RequiredRoles: required,
				Strategy:      strategy,
				RequestedPath: c.OriginalURL(),
				LoginPath:     g.loginPath(),
			})

			switch decision.Outcome {
			case OutcomeAllow:
				c.Locals(SessionContextKey, session)
				return next(c)
			case OutcomeRedirect:
				g.SetRedirect(c, decision.ReturnTo)
				return c.Redirect(decision.RedirectTo, redirectStatus(c))
			default:
				return g.renderDenied(c, decision.Denied)
			}
		}
	}
}

// SetRedirect stores the rejected path in a short-lived cookie so the
// client can return to it after authenticating.
func (g *RouteGuardHandler) SetRedirect(c router.Context, returnTo string) {
	if returnTo == "" {
		returnTo = c.OriginalURL()
	}

	key := g.redirectCookieKey()
	g.Logger.Info("Setting redirect cookie", "key", key, "path", returnTo)

	c.Cookie(&router.Cookie{
		Name:     key,
		Value:    returnTo,
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// GetRedirect pops the stored return path, falling back to def.
func (g *RouteGuardHandler) GetRedirect(c router.Context, def ...string) string {
	key := g.redirectCookieKey()
	r := c.Cookies(key)
	if r == "" {
		if len(def) > 0 {
			return def[0]
		}
		return "/"
	}
	g.cookieDel(c, key)
	return r
}

// GetRedirectOrDefault pops the stored return path, trying the referer
// header before giving up on the default.
func (g *RouteGuardHandler) GetRedirectOrDefault(c router.Context) string {
	key := g.redirectCookieKey()
	refererHeader := string(c.Referer())

	r := c.Cookies(key, refererHeader)
	if r == "" {
		r = "/"
	}
	g.cookieDel(c, key)
	return r
}

// renderDenied produces the built-in access-denied view, reporting the
// user's current role and the roles the route requires. Falls back to plain
// text when the host has no view engine.
func (g *RouteGuardHandler) renderDenied(c router.Context, denied *DeniedContext) error {
	if denied == nil {
		denied = &DeniedContext{}
	}

	g.Logger.Info(
		"Access denied",
		"path", c.OriginalURL(),
		"current_role", denied.CurrentRole,
		"required", print.MaybePrettyJSON(denied.RequiredRoles),
		"strategy", denied.Strategy,
	)

	err := c.Status(http.StatusForbidden).Render(g.DeniedView, router.ViewContext{
		"current_role":   denied.CurrentRole,
		"required_roles": denied.RequiredRoles,
		"strategy":       denied.Strategy,
	})
	if err == nil {
		return nil
	}

	return c.Status(http.StatusForbidden).SendString("Access denied")
}

func (g *RouteGuardHandler) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	g.Logger.Info(
		"Guard error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		g.SetRedirect(c, "")
		return c.Redirect(g.loginPath(), redirectStatus(c))
	default:
		return c.JSON(richErr.Code, router.ViewContext{
			"error": richErr.Message,
		})
	}
}

func (g *RouteGuardHandler) loginPath() string {
	if g.cfg != nil && g.cfg.GetLoginPath() != "" {
		return g.cfg.GetLoginPath()
	}
	return DefaultLoginPath
}

func (g *RouteGuardHandler) redirectCookieKey() string {
	if g.cfg != nil && g.cfg.GetRedirectCookieKey() != "" {
		return g.cfg.GetRedirectCookieKey()
	}
	return "redirect_to"
}

func (g *RouteGuardHandler) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func redirectStatus(c router.Context) int {
	if c.Method() == string(router.GET) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
