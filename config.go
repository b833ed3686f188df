package authsync

import (
	"net/url"
	"strings"
	"time"
)

// Config holds session service options
type Config interface {
	GetSiteOrigin() string
	GetRedirectPath() string
	GetActivityLimit() int
	GetTaskTimeout() time.Duration
}

// DefaultConfig is a plain Config implementation
type DefaultConfig struct {
	SiteOrigin    string        `mapstructure:"site_origin"`
	RedirectPath  string        `mapstructure:"redirect_path"`
	ActivityLimit int           `mapstructure:"activity_limit"`
	TaskTimeout   time.Duration `mapstructure:"task_timeout"`
}

var _ Config = DefaultConfig{}

func (c DefaultConfig) GetSiteOrigin() string {
	return c.SiteOrigin
}

func (c DefaultConfig) GetRedirectPath() string {
	if c.RedirectPath == "" {
		return "/"
	}
	return c.RedirectPath
}

func (c DefaultConfig) GetActivityLimit() int {
	if c.ActivityLimit <= 0 {
		return DefaultActivityLimit
	}
	return c.ActivityLimit
}

func (c DefaultConfig) GetTaskTimeout() time.Duration {
	return c.TaskTimeout
}

// RedirectURL builds the sign up confirmation target from the site origin.
// An empty origin yields an empty target and the provider default applies.
func RedirectURL(cfg Config) string {
	origin := strings.TrimRight(strings.TrimSpace(cfg.GetSiteOrigin()), "/")
	if origin == "" {
		return ""
	}

	path := cfg.GetRedirectPath()
	if path == "" || path == "/" {
		return origin + "/"
	}

	target, err := url.JoinPath(origin, path)
	if err != nil {
		return origin + "/"
	}
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(target, "/") {
		target += "/"
	}
	return target
}
