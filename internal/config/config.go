package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultSourceURL is the canonical first page of the remote planets listing.
const DefaultSourceURL = "https://swapi.dev/api/planets/"

// Config holds application configuration.
// Values come from defaults, then baseDir/config.json, then HOLOCRON_* environment variables.
type Config struct {
	// SourceURL is the first-page URL of the paginated listing.
	// Used whenever the stored cursor is null.
	SourceURL string `json:"source_url" env:"HOLOCRON_SOURCE_URL"`

	// UserAgent is sent with every remote request.
	UserAgent string `json:"user_agent,omitempty" env:"HOLOCRON_USER_AGENT"`

	// HTTPTimeoutSeconds bounds each remote request. 0 means no timeout.
	HTTPTimeoutSeconds int `json:"http_timeout_seconds,omitempty" env:"HOLOCRON_HTTP_TIMEOUT_SECONDS"`

	// ResidentCacheTTLSeconds enables an in-memory cache of resolved resident names
	// shared across enrichments. 0 disables it (every reference costs one request).
	ResidentCacheTTLSeconds int `json:"resident_cache_ttl_seconds,omitempty" env:"HOLOCRON_RESIDENT_CACHE_TTL_SECONDS"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" env:"HOLOCRON_DB_MAX_OPEN_CONNS"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" env:"HOLOCRON_DB_MAX_IDLE_CONNS"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"HOLOCRON_DISABLED_TOOLS" envSeparator:","`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" env:"HOLOCRON_LOG_LEVEL"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SourceURL: DefaultSourceURL,
		UserAgent: "holocron",
		LogLevel:  "info",
	}
}

// HTTPTimeout returns the remote request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// ResidentCacheTTL returns the resident name cache TTL as a duration.
func (c *Config) ResidentCacheTTL() time.Duration {
	return time.Duration(c.ResidentCacheTTLSeconds) * time.Second
}

// SlogLevel maps LogLevel onto a slog.Level. Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load loads configuration from baseDir/config.json and applies environment overrides.
// Returns default config (plus overrides) if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.holocron.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays HOLOCRON_* environment variables onto cfg.
// Unset variables leave the existing values untouched.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		SourceURL:               firstString(overlay.SourceURL, base.SourceURL),
		UserAgent:               firstString(overlay.UserAgent, base.UserAgent),
		LogLevel:                firstString(overlay.LogLevel, base.LogLevel),
		HTTPTimeoutSeconds:      firstInt(overlay.HTTPTimeoutSeconds, base.HTTPTimeoutSeconds),
		ResidentCacheTTLSeconds: firstInt(overlay.ResidentCacheTTLSeconds, base.ResidentCacheTTLSeconds),
		DBMaxOpenConns:          firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:          firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
