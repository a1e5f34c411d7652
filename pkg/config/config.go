// Package config loads the dashboard process configuration.
//
// Sources are layered low to high: defaults, an optional .env file, an
// optional YAML file named by RFM_CONFIG, then RFM_* environment variables.
package config

import (
	"time"

	"github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// Addr is the dashboard HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// MetricsAddr serves /metrics when set.
	MetricsAddr string `koanf:"metrics_addr"`

	// BaseURL is the segmentation backend.
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`

	// MockBackend serves built-in demo data instead of calling BaseURL.
	MockBackend bool `koanf:"mock_backend"`

	// BasePath prefixes every dashboard route.
	BasePath string `koanf:"base_path" validate:"omitempty,startswith=/"`

	// Clusters is the k sent to the backend.
	Clusters int `koanf:"clusters" validate:"min=1,max=50"`

	Years       []string `koanf:"years" validate:"min=1,dive,numeric"`
	DefaultYear string   `koanf:"default_year" validate:"required,numeric"`

	// Currency is appended to monetary values.
	Currency string `koanf:"currency"`

	RequestTimeoutMS int `koanf:"request_timeout_ms" validate:"min=1"`

	// ErrorSeverity overrides how every panel surfaces fetch failures.
	ErrorSeverity string `koanf:"error_severity" validate:"omitempty,oneof=inline notice prompt diagnostic"`

	ChartTheme           string `koanf:"chart_theme"`
	ChartAssetsHost      string `koanf:"chart_assets_host" validate:"omitempty,url"`
	ChartCacheTTLSeconds int    `koanf:"chart_cache_ttl_seconds" validate:"min=0"`

	// RedisAddr enables the shared chart cache when set.
	RedisAddr string `koanf:"redis_addr" validate:"omitempty,hostname_port"`

	SessionTTLMinutes int `koanf:"session_ttl_minutes" validate:"min=1"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8080",
		MetricsAddr:          ":9090",
		BasePath:             "/admin",
		Clusters:             dashboard.DefaultClusterCount,
		Years:                DefaultYears(),
		DefaultYear:          dashboard.DefaultYear,
		Currency:             dashboard.DefaultCurrency,
		RequestTimeoutMS:     10_000,
		ChartTheme:           "macarons",
		ChartCacheTTLSeconds: 60,
		SessionTTLMinutes:    int(dashboard.DefaultSessionTTL / time.Minute),
	}
}

// DefaultYears are the selectable years when none are configured.
func DefaultYears() []string {
	return []string{"2009", "2010", "2011"}
}

// RequestTimeout is the backend client timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// ChartCacheTTL is how long rendered charts are reused.
func (c *Config) ChartCacheTTL() time.Duration {
	return time.Duration(c.ChartCacheTTLSeconds) * time.Second
}

// SessionTTL is how long an idle page session survives.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Severity is the configured fetch severity, empty when unset.
func (c *Config) Severity() dashboard.Severity {
	return dashboard.ParseSeverity(c.ErrorSeverity, "")
}

// OrderedYears returns the years with the default year first when it is
// not already listed.
func (c *Config) OrderedYears() []string {
	for _, y := range c.Years {
		if y == c.DefaultYear {
			return append([]string(nil), c.Years...)
		}
	}
	return append([]string{c.DefaultYear}, c.Years...)
}
