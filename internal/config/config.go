// Package config loads reqgate process settings from REQGATE_* environment
// variables, optionally seeded from dotenv files.
package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/erraggy/reqgate/gateerrors"
	"github.com/erraggy/reqgate/logging"
	"github.com/erraggy/reqgate/materialize"
)

// Config holds the settings shared by the CLI and the MCP server.
type Config struct {
	// CacheSize is the number of compiled validators kept in memory.
	CacheSize int `env:"REQGATE_CACHE_SIZE" envDefault:"128"`
	// MaxBodySize limits raw bodies in bytes; 0 disables the limit.
	MaxBodySize int64 `env:"REQGATE_MAX_BODY_SIZE" envDefault:"10485760"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `env:"REQGATE_LOG_LEVEL" envDefault:"info"`
	// LogFormat is text or json.
	LogFormat string `env:"REQGATE_LOG_FORMAT" envDefault:"text"`
	// NormalizeUnicode converts strings to NFC before validation.
	NormalizeUnicode bool `env:"REQGATE_NORMALIZE_UNICODE" envDefault:"false"`
	// ModelFile is the default model description file.
	ModelFile string `env:"REQGATE_MODEL_FILE"`

	MCP MCPConfig `envPrefix:"REQGATE_MCP_"`
}

// MCPConfig holds the MCP server settings.
type MCPConfig struct {
	// ModelCacheSize is the number of parsed model files kept per TTL class.
	ModelCacheSize int `env:"MODEL_CACHE_SIZE" envDefault:"10"`
	// ModelTTL applies to model files read from disk or given inline.
	ModelTTL time.Duration `env:"MODEL_TTL" envDefault:"15m"`
	// ModelURLTTL applies to model files fetched over HTTP.
	ModelURLTTL time.Duration `env:"MODEL_URL_TTL" envDefault:"5m"`
	// MaxInlineSize limits inline and fetched model documents in bytes.
	MaxInlineSize int64 `env:"MAX_INLINE_SIZE" envDefault:"10485760"`
	// IssueLimit is the default page size for issue lists.
	IssueLimit int `env:"ISSUE_LIMIT" envDefault:"100"`
	// AllowPrivateIPs permits model URLs that resolve to private addresses.
	AllowPrivateIPs bool `env:"ALLOW_PRIVATE_IPS" envDefault:"false"`
}

// Load reads the process environment. Each file in envFiles is loaded
// first with godotenv; variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, &gateerrors.ConfigError{Option: "env-file", Message: "cannot load dotenv file", Cause: err}
		}
	}
	return parse(env.Options{})
}

// FromMap builds a Config from the given variables only, ignoring the
// process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return nil, &gateerrors.ConfigError{Option: "environment", Message: "cannot parse REQGATE_* variables", Cause: err}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges that the environment parser cannot.
func (c *Config) Validate() error {
	if c.CacheSize <= 0 {
		return &gateerrors.ConfigError{Option: "REQGATE_CACHE_SIZE", Value: c.CacheSize, Message: "must be positive"}
	}
	if c.MaxBodySize < 0 {
		return &gateerrors.ConfigError{Option: "REQGATE_MAX_BODY_SIZE", Value: c.MaxBodySize, Message: "cannot be negative"}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return &gateerrors.ConfigError{Option: "REQGATE_LOG_LEVEL", Value: c.LogLevel, Message: "unknown level", Cause: err}
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return &gateerrors.ConfigError{Option: "REQGATE_LOG_FORMAT", Value: c.LogFormat, Message: "unknown format", Cause: err}
	}

	positive := []struct {
		key   string
		value int64
	}{
		{"REQGATE_MCP_MODEL_CACHE_SIZE", int64(c.MCP.ModelCacheSize)},
		{"REQGATE_MCP_MODEL_TTL", int64(c.MCP.ModelTTL)},
		{"REQGATE_MCP_MODEL_URL_TTL", int64(c.MCP.ModelURLTTL)},
		{"REQGATE_MCP_MAX_INLINE_SIZE", c.MCP.MaxInlineSize},
		{"REQGATE_MCP_ISSUE_LIMIT", int64(c.MCP.IssueLimit)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &gateerrors.ConfigError{Option: p.key, Value: p.value, Message: "must be positive"}
		}
	}
	return nil
}

// Level returns the parsed log level. Validate has already rejected
// unknown names, so this falls back to info only for a zero Config.
func (c *Config) Level() slog.Level {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Format returns the parsed log format, text for a zero Config.
func (c *Config) Format() logging.Format {
	format, _ := logging.ParseFormat(c.LogFormat)
	return format
}

// MaterializerOptions translates the settings into materialize options.
func (c *Config) MaterializerOptions(logger logging.Logger) []materialize.Option {
	return []materialize.Option{
		materialize.WithCacheCapacity(c.CacheSize),
		materialize.WithMaxBodySize(c.MaxBodySize),
		materialize.WithNormalizeUnicode(c.NormalizeUnicode),
		materialize.WithLogger(logger),
	}
}
