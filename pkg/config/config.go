// Package config provides configuration management for gncontent.
//
// This package has no I/O dependencies except the directory check that
// callers inject into Resolve.
//
// # Configuration Sources
//
// Precedence (highest to lowest): env vars > engine section of the INI
// file > DATABASE section of the INI file > engine defaults > defaults.
//
// # Design Principles
//
//   - Default config (from New()) is always usable - no validation needed
//   - Normalize is a pure function, separate from validation
//   - Resolve validates every supplied value and fails on the first bad one
//   - Config is returned by value and is never mutated after Resolve
//
// # Environment Variables
//
// Use GNCONTENT_ prefix with the section and key joined by underscores:
//
//	GNCONTENT_GLOBAL_PORT=8000
//	GNCONTENT_DATABASE_DB_TYPE=postgresql
//	GNCONTENT_DATABASE_DB_HOST=localhost
//	GNCONTENT_AI_DEFAULT_MODEL=grok-2-1212
package config

import (
	"fmt"
	"strings"
)

// Config represents the complete gncontent configuration.
type Config struct {
	// Global contains process-wide settings.
	Global GlobalConfig `json:"global"`

	// Database contains the settings of the selected database engine.
	Database DatabaseConfig `json:"database"`

	// User contains defaults for newly created users.
	User UserConfig `json:"user"`

	// AI contains defaults for content generation providers.
	AI AIConfig `json:"ai"`
}

// GlobalConfig contains process-wide settings.
type GlobalConfig struct {
	// EnvMode is one of "development", "dev", "production", "prod",
	// "testing".
	EnvMode string `json:"env_mode"`

	// Port is the port of the API server.
	Port int `json:"port"`

	// LogLevel is one of debug, info, warning, error, critical, written
	// either in lower or in upper case.
	LogLevel string `json:"log_level"`

	// Debug forces debug logging.
	Debug bool `json:"debug"`

	// SecretKey signs cookies and tokens. It is a URL-safe base64 string.
	SecretKey string `json:"secret_key"`
}

// DatabaseConfig contains connection parameters. Fields that do not apply
// to the selected engine stay empty.
type DatabaseConfig struct {
	// Type is the database type as given: "sqlite", "postgresql" or
	// "postgres".
	Type string `json:"type"`

	// Name is the root name of the database.
	Name string `json:"name"`

	// Dir is the directory for SQLite database files and backups.
	Dir string `json:"dir,omitempty"`

	// User is the PostgreSQL user.
	User string `json:"user,omitempty"`

	// Password is the PostgreSQL password.
	Password string `json:"password,omitempty"`

	// Host is the PostgreSQL host name or IPv4 address.
	Host string `json:"host,omitempty"`

	// Port is the PostgreSQL port.
	Port int `json:"port,omitempty"`
}

// UserConfig contains defaults for users.
type UserConfig struct {
	// DefaultRole is one of "admin", "editor", "viewer".
	DefaultRole string `json:"default_role"`
}

// AIConfig contains defaults for AI providers.
type AIConfig struct {
	DefaultProvider string `json:"default_provider"`
	DefaultModel    string `json:"default_model"`
	APIKey          string `json:"api_key"`
}

// New creates a Config with default values.
// The returned config is always usable, even when no configuration file
// and no environment variables are present.
func New() Config {
	db := EngineDefaults(EngineSQLite)
	return Config{
		Global: GlobalConfig{
			EnvMode:   "development",
			Port:      8000,
			LogLevel:  "info",
			Debug:     false,
			SecretKey: "default_insecure_key_01234567890_",
		},
		Database: DatabaseConfig{
			Type: EngineSQLite,
			Name: db[KeyDBName],
			Dir:  db[KeyDBDir],
		},
		User: UserConfig{
			DefaultRole: "viewer",
		},
		AI: AIConfig{
			DefaultProvider: "xai",
			DefaultModel:    "grok-2-1212",
			APIKey:          "your_api_key",
		},
	}
}

// Engine returns the canonical engine name for the database type:
// EngineSQLite or EnginePostgreSQL.
func (d DatabaseConfig) Engine() string {
	res, err := EngineFor(d.Type)
	if err != nil {
		return strings.ToLower(d.Type)
	}
	return res
}

// Mode returns the canonical run mode: "development", "test" or
// "production".
func (g GlobalConfig) Mode() string {
	res, err := NormalizeMode(g.EnvMode)
	if err != nil {
		return ModeDevelopment
	}
	return res
}

// NormalizeMode folds environment mode aliases into one of ModeDevelopment,
// ModeTest or ModeProduction. Empty mode means development.
func NormalizeMode(mode string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "development", "dev":
		return ModeDevelopment, nil
	case "test", "testing":
		return ModeTest, nil
	case "production", "prod":
		return ModeProduction, nil
	default:
		return "", fmt.Errorf("unknown environment mode %q", mode)
	}
}

// Redacted returns a copy of the config with credentials masked.
// Used for logs and for printing the configuration.
func (c Config) Redacted() Config {
	res := c
	if res.Database.Password != "" {
		res.Database.Password = mask
	}
	res.Global.SecretKey = mask
	res.AI.APIKey = mask
	return res
}
