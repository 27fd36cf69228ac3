package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultAccessSecret  = "change-me-access"
	defaultRefreshSecret = "change-me-refresh"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTAccessSecret  string        `mapstructure:"jwt_access_secret" yaml:"jwt_access_secret"`
	JWTRefreshSecret string        `mapstructure:"jwt_refresh_secret" yaml:"jwt_refresh_secret"`
	JWTIssuer        string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience      string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	AccessTokenTTL   time.Duration `mapstructure:"access_token_ttl" yaml:"access_token_ttl"`
	RefreshTokenTTL  time.Duration `mapstructure:"refresh_token_ttl" yaml:"refresh_token_ttl"`

	// AllowedOrigins lists origin patterns accepted for WebSocket upgrades. Empty accepts any origin.
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	MaxMessageBytes int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	SendBufferSize  int           `mapstructure:"send_buffer_size" yaml:"send_buffer_size"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	FrameRateLimit  float64       `mapstructure:"frame_rate_limit" yaml:"frame_rate_limit"`
	FrameBurst      int           `mapstructure:"frame_burst" yaml:"frame_burst"`
	EnforceSender   bool          `mapstructure:"enforce_sender" yaml:"enforce_sender"`

	UserCacheSize      int           `mapstructure:"user_cache_size" yaml:"user_cache_size"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures" yaml:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `mapstructure:"breaker_open_timeout" yaml:"breaker_open_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",

		DatabasePath: "wirechat.db",

		JWTAccessSecret:  defaultAccessSecret,
		JWTRefreshSecret: defaultRefreshSecret,
		JWTIssuer:        "wirechat-dm",
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  7 * 24 * time.Hour,

		MaxMessageBytes: 64 << 10,
		SendBufferSize:  32,
		WriteTimeout:    10 * time.Second,
		FrameRateLimit:  20,
		FrameBurst:      40,

		UserCacheSize:      1024,
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: 30 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// Only the keys exposed as CLI flags are considered.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
}

// UsesDefaultSecrets reports whether either signing secret was left at its default.
func (c *Config) UsesDefaultSecrets() bool {
	return c.JWTAccessSecret == defaultAccessSecret || c.JWTRefreshSecret == defaultRefreshSecret
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is empty"))
	}
	if c.JWTAccessSecret == "" || c.JWTRefreshSecret == "" {
		errs = append(errs, errors.New("jwt secrets must be set"))
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("jwt_access_secret and jwt_refresh_secret must differ"))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token ttls must be positive"))
	}
	if c.MaxMessageBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_message_bytes must be positive, got %d", c.MaxMessageBytes))
	}
	if c.SendBufferSize <= 0 {
		errs = append(errs, fmt.Errorf("send_buffer_size must be positive, got %d", c.SendBufferSize))
	}
	if c.FrameRateLimit < 0 || c.FrameBurst < 0 {
		errs = append(errs, errors.New("frame rate limit and burst must not be negative"))
	}
	return errors.Join(errs...)
}
