package config_test

import (
	"path/filepath"
	"testing"

	"github.com/gnames/gncontent/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "gncontent"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "gncontent", "logs"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "gncontent", "gncontent.ini"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()

	assert.Equal(t, "development", cfg.Global.EnvMode)
	assert.Equal(t, 8000, cfg.Global.Port)
	assert.Equal(t, "info", cfg.Global.LogLevel)
	assert.False(t, cfg.Global.Debug)
	assert.Equal(t, "default_insecure_key_01234567890_", cfg.Global.SecretKey)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "app", cfg.Database.Name)
	assert.Equal(t, "sqlite_data", cfg.Database.Dir)
	assert.Empty(t, cfg.Database.User)
	assert.Empty(t, cfg.Database.Password)
	assert.Empty(t, cfg.Database.Host)
	assert.Zero(t, cfg.Database.Port)

	assert.Equal(t, "viewer", cfg.User.DefaultRole)
	assert.Equal(t, "xai", cfg.AI.DefaultProvider)
	assert.Equal(t, "grok-2-1212", cfg.AI.DefaultModel)
	assert.Equal(t, "your_api_key", cfg.AI.APIKey)
}

func TestEngine(t *testing.T) {
	tests := []struct {
		msg, dbType, res string
	}{
		{"sqlite", "sqlite", config.EngineSQLite},
		{"postgresql", "postgresql", config.EnginePostgreSQL},
		{"postgres alias", "postgres", config.EnginePostgreSQL},
		{"upper case", "PostgreSQL", config.EnginePostgreSQL},
		{"unknown passes through", "Oracle", "oracle"},
	}

	for _, v := range tests {
		db := config.DatabaseConfig{Type: v.dbType}
		assert.Equal(t, v.res, db.Engine(), v.msg)
	}
}

func TestMode(t *testing.T) {
	tests := []struct {
		msg, env, res string
	}{
		{"development", "development", config.ModeDevelopment},
		{"dev", "dev", config.ModeDevelopment},
		{"empty", "", config.ModeDevelopment},
		{"testing", "testing", config.ModeTest},
		{"test", "test", config.ModeTest},
		{"prod", "prod", config.ModeProduction},
		{"production", "PRODUCTION", config.ModeProduction},
	}

	for _, v := range tests {
		g := config.GlobalConfig{EnvMode: v.env}
		assert.Equal(t, v.res, g.Mode(), v.msg)
	}

	_, err := config.NormalizeMode("staging")
	assert.Error(t, err)
}

func TestRedacted(t *testing.T) {
	cfg := config.New()
	cfg.Database.Password = "Secret123!"

	res := cfg.Redacted()
	assert.NotEqual(t, "Secret123!", res.Database.Password)
	assert.NotEqual(t, cfg.Global.SecretKey, res.Global.SecretKey)
	assert.NotEqual(t, cfg.AI.APIKey, res.AI.APIKey)

	// original is not touched
	assert.Equal(t, "Secret123!", cfg.Database.Password)
	assert.Equal(t, "your_api_key", cfg.AI.APIKey)
}
