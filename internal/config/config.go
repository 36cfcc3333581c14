// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"time"

	"github.com/thibequation/trajectory/internal/core"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0 for SSE)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// ImportConfig holds trajectory import settings.
type ImportConfig struct {
	// ValidatePhysics runs the physical-consistency checks (default: true)
	ValidatePhysics bool `env:"TRAJ_VALIDATE_PHYSICS" default:"true"`

	// StrictPhysics rejects imports with physics issues (default: false)
	StrictPhysics bool `env:"TRAJ_STRICT_PHYSICS" default:"false"`

	// AutoNormalize recenters and rescales coordinates (default: true)
	AutoNormalize bool `env:"TRAJ_AUTO_NORMALIZE" default:"true"`

	// Interpolate is reserved (default: false)
	Interpolate bool `env:"TRAJ_INTERPOLATE" default:"false"`

	// MaxPoints is the soft cap on rows per import (default: 10000)
	MaxPoints int `env:"TRAJ_MAX_POINTS" default:"10000"`

	// SupportedTypes is a comma-separated list of importable kinds
	SupportedTypes []string `env:"TRAJ_SUPPORTED_TYPES" default:"deterministic,quantiles,monte-carlo"`

	// VelocityUnit is the unit of vx, vy, vz: mps, kmps, kmph, auday (default: mps)
	VelocityUnit string `env:"TRAJ_VELOCITY_UNIT" default:"mps"`

	// MaxFileSize is the largest accepted source, e.g. 512KB or 50MB (default: 50MB)
	MaxFileSize ByteSize `env:"TRAJ_MAX_FILE_SIZE" default:"50MB"`

	// MaxConcurrent is the number of imports parsed at once (default: 4)
	MaxConcurrent int `env:"TRAJ_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long an import waits for a free slot (default: 10s)
	MaxWait time.Duration `env:"TRAJ_IMPORT_WAIT" default:"10s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ImportLimit is requests per minute for import endpoints (default: 20)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey protects import and reset routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// TrustedProxies is a comma-separated list of CIDRs whose X-Real-IP and
	// X-Forwarded-For headers are honored. Empty means headers are ignored.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Kinds parses SupportedTypes.
func (c *ImportConfig) Kinds() ([]core.Kind, error) {
	kinds := make([]core.Kind, 0, len(c.SupportedTypes))
	for _, s := range c.SupportedTypes {
		k, err := core.ParseKind(s)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// AdapterOptions converts the import settings into adapter options.
func (c *ImportConfig) AdapterOptions() (core.Options, error) {
	kinds, err := c.Kinds()
	if err != nil {
		return core.Options{}, err
	}
	return core.Options{
		ValidatePhysics: c.ValidatePhysics,
		StrictPhysics:   c.StrictPhysics,
		AutoNormalize:   c.AutoNormalize,
		Interpolate:     c.Interpolate,
		MaxPoints:       c.MaxPoints,
		SupportedTypes:  kinds,
		VelocityUnit:    c.VelocityUnit,
	}, nil
}
