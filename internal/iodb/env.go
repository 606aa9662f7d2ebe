package iodb

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/gncontent/internal/iofs"
	"github.com/gnames/gncontent/pkg/config"
	"github.com/joho/godotenv"
)

// Environment variables read by NewFromEnv.
const (
	EnvDBEngine   = "DB_ENGINE"
	EnvMode       = "ENV_MODE"
	EnvDBName     = "DB_NAME"
	EnvDBDir      = "DB_DIR"
	EnvDBUser     = "DB_USER"
	EnvDBPassword = "DB_PASSWORD"
	EnvDBHost     = "DB_HOST"
	EnvDBPort     = "DB_PORT"
)

// NewFromEnv creates a Manager from environment variables, for
// deployments that do not use the configuration file. A .env file in the
// app root is loaded first. Variables that are already set win over
// the file. Empty values count as unset and get engine defaults.
func NewFromEnv(opts ...Option) (*Manager, error) {
	var pre Manager
	for _, opt := range opts {
		opt(&pre)
	}
	root := pre.root
	if root == "" {
		root, _ = os.Getwd()
	}

	envFile := filepath.Join(root, ".env")
	if iofs.Exists(envFile) {
		if err := godotenv.Load(envFile); err != nil {
			return nil, iofs.ReadFileError(envFile, err)
		}
	}

	cfg, err := configFromEnv()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

func configFromEnv() (config.Config, error) {
	res := config.New()

	dbType := getenv(EnvDBEngine)
	if dbType == "" {
		dbType = config.EngineSQLite
	}
	engine, err := config.EngineFor(dbType)
	if err != nil {
		return res, InvalidEngineError(dbType)
	}

	mode, err := config.NormalizeMode(getenv(EnvMode))
	if err != nil {
		return res, config.InvalidFieldError(
			"ENV", EnvMode, getenv(EnvMode), err.Error(),
		)
	}
	res.Global.EnvMode = mode

	vals := config.EngineDefaults(engine)
	// DATABASE keys of the configuration file have the same names as
	// the environment variables.
	for _, key := range []string{
		EnvDBName, EnvDBDir, EnvDBUser, EnvDBPassword, EnvDBHost, EnvDBPort,
	} {
		if v := getenv(key); v != "" {
			vals[key] = v
		}
	}

	db := config.DatabaseConfig{
		Type:     engine,
		Name:     vals[config.KeyDBName],
		Dir:      vals[config.KeyDBDir],
		User:     vals[config.KeyDBUser],
		Password: vals[config.KeyDBPassword],
		Host:     vals[config.KeyDBHost],
	}
	if p, ok := vals[config.KeyDBPort]; ok {
		if db.Port, err = config.ValidatePort(p); err != nil {
			return res, config.InvalidFieldError(
				"ENV", EnvDBPort, p, err.Error(),
			)
		}
	}
	res.Database = db
	return res, nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
