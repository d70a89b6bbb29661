package auth

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// EnvConfig is the environment-driven configuration for the session core.
type EnvConfig struct {
	AccessTokenKey      string `env:"AUTH_ACCESS_TOKEN_KEY" envDefault:"access_token"`
	RefreshTokenKey     string `env:"AUTH_REFRESH_TOKEN_KEY" envDefault:"refresh_token"`
	UserProfileKey      string `env:"AUTH_USER_PROFILE_KEY" envDefault:"user_info"`
	LoginPath           string `env:"AUTH_LOGIN_PATH" envDefault:"/login"`
	RedirectCookieKey   string `env:"AUTH_REDIRECT_COOKIE" envDefault:"redirect_to"`
	ExpiryLeewaySeconds int    `env:"AUTH_EXPIRY_LEEWAY_SECONDS" envDefault:"30"`
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig parses configuration from the process environment.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse auth configuration")
	}
	return cfg, nil
}

func (c *EnvConfig) GetAccessTokenKey() string    { return c.AccessTokenKey }
func (c *EnvConfig) GetRefreshTokenKey() string   { return c.RefreshTokenKey }
func (c *EnvConfig) GetUserProfileKey() string    { return c.UserProfileKey }
func (c *EnvConfig) GetLoginPath() string         { return c.LoginPath }
func (c *EnvConfig) GetRedirectCookieKey() string { return c.RedirectCookieKey }
func (c *EnvConfig) GetExpiryLeewaySeconds() int  { return c.ExpiryLeewaySeconds }
