// Package config loads application configuration from environment variables.
// All variables use the NOTAS_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Data     DataConfig
	Schemes  SchemesConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL means
// courses are kept in the JSON data file instead of Postgres.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables the
// rendered-sheet cache.
type CacheConfig struct {
	URL         string
	SheetTTLSec int
}

// DataConfig holds file-store settings.
type DataConfig struct {
	FilePath string // empty means ~/.gestor-notas/data.json
}

// SchemesConfig holds grading scheme template settings.
type SchemesConfig struct {
	Path string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with NOTAS_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("NOTAS_SERVER_PORT", 8080),
			Host: envStr("NOTAS_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("NOTAS_DATABASE_URL", ""),
			MaxConns: envInt("NOTAS_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("NOTAS_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL:         envStr("NOTAS_CACHE_URL", ""),
			SheetTTLSec: envInt("NOTAS_CACHE_SHEET_TTL", 300),
		},
		Data: DataConfig{
			FilePath: envStr("NOTAS_DATA_FILE", ""),
		},
		Schemes: SchemesConfig{
			Path: envStr("NOTAS_SCHEMES_PATH", "./schemes"),
		},
		Log: LogConfig{
			Level:  envStr("NOTAS_LOG_LEVEL", "info"),
			Format: envStr("NOTAS_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("NOTAS_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("NOTAS_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("NOTAS_LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level)
	}

	if c.Cache.SheetTTLSec < 0 {
		return fmt.Errorf("NOTAS_CACHE_SHEET_TTL must not be negative, got %d", c.Cache.SheetTTLSec)
	}

	return nil
}

// UsesDatabase reports whether courses live in Postgres rather than the
// JSON data file.
func (c *Config) UsesDatabase() bool {
	return c.Database.URL != ""
}

// UsesCache reports whether the rendered-sheet cache is enabled.
func (c *Config) UsesCache() bool {
	return c.Cache.URL != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
