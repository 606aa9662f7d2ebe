package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "gncontent"

	// EnvPrefix is the prefix of environment variables that override
	// values of the configuration file.
	EnvPrefix = "GNCONTENT"
)

const (
	EngineSQLite     = "sqlite"
	EnginePostgreSQL = "postgresql"

	ModeDevelopment = "development"
	ModeTest        = "test"
	ModeProduction  = "production"

	mask = "********"
)

// Section names of the configuration file.
const (
	SectionGlobal     = "GLOBAL"
	SectionDatabase   = "DATABASE"
	SectionSQLite     = "SQLITE"
	SectionPostgreSQL = "POSTGRESQL"
	sectionPostgres   = "POSTGRES"
	SectionUser       = "USER"
	SectionAI         = "AI"
)

// Keys of the configuration file.
const (
	KeyEnvMode   = "ENV_MODE"
	KeyPort      = "PORT"
	KeyLogLevel  = "LOG_LEVEL"
	KeyDebug     = "DEBUG"
	KeySecretKey = "SECRET_KEY"

	KeyDBType     = "DB_TYPE"
	KeyDBName     = "DB_NAME"
	KeyDBDir      = "DB_DIR"
	KeyDBUser     = "DB_USER"
	KeyDBPassword = "DB_PASSWORD"
	KeyDBHost     = "DB_HOST"
	KeyDBPort     = "DB_PORT"

	KeyDefaultRole = "DEFAULT_ROLE"

	KeyDefaultProvider = "DEFAULT_PROVIDER"
	KeyDefaultModel    = "DEFAULT_MODEL"
	KeyAPIKey          = "API_KEY"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gncontent by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gncontent/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the gncontent.ini file.
// Returns ~/.config/gncontent/gncontent.ini by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), AppName+".ini")
}
