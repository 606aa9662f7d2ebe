package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	RemoveFileError

	// Logging errors
	CreateLogFileError

	// Configuration errors
	ConfigInvalidFieldError
	ConfigUnsupportedDBTypeError
	ConfigUnknownFieldError

	// Database errors
	DBInvalidEngineError
	DBConnectionError
	DBCreateError
	DBDropError
	DBQueryTablesError
	DBPurgeError
	DBBackupSourceMissingError
	DBBackupNotFoundError
	DBBackupError
	DBRestoreError
	DBVacuumError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaInspectError
	MigrationSourceError

	// Repository errors
	RepoNotFoundError
	RepoQueryError
	RepoSaveError
)
