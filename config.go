package account

import (
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// AppConfig is the process configuration, loaded once from the
// environment at startup. A missing signing secret is fatal.
type AppConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file::memory:?cache=shared"`
	SigningKey  string `env:"SECRET_KEY"`

	KakaoClientID     string `env:"KAKAO_API_KEY"`
	KakaoClientSecret string `env:"KAKAO_CLIENT_SECRET"`
	KakaoRedirectURI  string `env:"KAKAO_URI"`
}

// LoadConfig parses the environment and validates the startup invariants.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse environment")
	}

	if cfg.SigningKey == "" {
		return nil, goerrors.New("SECRET_KEY is required", goerrors.CategoryValidation).
			WithTextCode("MISSING_SIGNING_KEY")
	}

	return cfg, nil
}

// GetSigningKey implements Config.
func (c *AppConfig) GetSigningKey() string {
	return c.SigningKey
}

// GetAccessTokenTTL implements Config.
func (c *AppConfig) GetAccessTokenTTL() time.Duration {
	return AccessTokenTTL
}

// GetRefreshTokenTTL implements Config.
func (c *AppConfig) GetRefreshTokenTTL() time.Duration {
	return RefreshTokenTTL
}

// KakaoEnabled reports whether the Kakao OAuth routes should be mounted.
func (c *AppConfig) KakaoEnabled() bool {
	return c.KakaoClientID != ""
}
