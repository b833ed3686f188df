package main

import (
	"errors"
	"time"

	"github.com/goliatone/go-authsync"
	"github.com/spf13/viper"
)

// Config holds the demo configuration loaded from the environment.
type Config struct {
	// SiteOrigin is the dashboard origin used for sign up redirects.
	SiteOrigin string `mapstructure:"AUTHSYNC_SITE_ORIGIN"`
	// RedirectPath is appended to SiteOrigin.
	RedirectPath string `mapstructure:"AUTHSYNC_REDIRECT_PATH"`
	// ActivityLimit is the activity page size.
	ActivityLimit int `mapstructure:"AUTHSYNC_ACTIVITY_LIMIT"`
	// TaskTimeout bounds each side effect (e.g. "5s"), empty for none.
	TaskTimeout string `mapstructure:"AUTHSYNC_TASK_TIMEOUT"`
	// DatabaseDSN is the sqlite DSN.
	DatabaseDSN string `mapstructure:"AUTHSYNC_DATABASE_DSN"`
	// SigningKey signs session tokens. A random key is used when empty.
	SigningKey string `mapstructure:"AUTHSYNC_SIGNING_KEY"`
	// TokenTTL is the session token lifetime.
	TokenTTL string `mapstructure:"AUTHSYNC_TOKEN_TTL"`
	// BcryptCost is the bcrypt cost factor (4-31).
	BcryptCost int `mapstructure:"AUTHSYNC_BCRYPT_COST"`
	// Debug enables the development logger.
	Debug bool `mapstructure:"AUTHSYNC_DEBUG"`
}

// LoadConfig reads .env (if present), then the environment. Env vars
// override .env.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()

	v.SetDefault("AUTHSYNC_SITE_ORIGIN", "http://localhost:3000")
	v.SetDefault("AUTHSYNC_REDIRECT_PATH", "/")
	v.SetDefault("AUTHSYNC_ACTIVITY_LIMIT", authsync.DefaultActivityLimit)
	v.SetDefault("AUTHSYNC_TASK_TIMEOUT", "5s")
	v.SetDefault("AUTHSYNC_DATABASE_DSN", "file::memory:?cache=shared")
	v.SetDefault("AUTHSYNC_SIGNING_KEY", "")
	v.SetDefault("AUTHSYNC_TOKEN_TTL", "1h")
	v.SetDefault("AUTHSYNC_BCRYPT_COST", 10)
	v.SetDefault("AUTHSYNC_DEBUG", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseDSN == "" {
		return nil, errors.New("config: AUTHSYNC_DATABASE_DSN must be set")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: AUTHSYNC_BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// Session converts the loaded values into the session core config.
func (c *Config) Session() authsync.DefaultConfig {
	return authsync.DefaultConfig{
		SiteOrigin:    c.SiteOrigin,
		RedirectPath:  c.RedirectPath,
		ActivityLimit: c.ActivityLimit,
		TaskTimeout:   parseDuration(c.TaskTimeout, 0),
	}
}

// TTL parses TokenTTL, falling back to one hour.
func (c *Config) TTL() time.Duration {
	return parseDuration(c.TokenTTL, time.Hour)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
