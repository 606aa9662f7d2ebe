package iodb

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gncontent/pkg/errcode"
)

// InvalidEngineError is returned when a manager is built for an engine
// gncontent does not support.
func InvalidEngineError(engine string) error {
	msg := "Unsupported database engine <em>%s</em>"
	vars := []any{engine}
	return &gn.Error{
		Code: errcode.DBInvalidEngineError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("invalid database engine %q", engine),
	}
}

// ConnectionError is returned when a database connection cannot be
// opened.
func ConnectionError(engine, name string, err error) error {
	msg := `Cannot connect to <em>%s</em> database <em>%s</em>

<em>Possible causes:</em>
  - Database server is not running
  - Database configuration is incorrect
  - Network connectivity issues`
	vars := []any{engine, name}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot connect to %s: %w",
			fn, name, err),
	}
}

func CreateDatabaseError(name string, err error) error {
	msg := `Cannot create database <em>%s</em>

<em>How to fix:</em>
  1. Check that the database user has CREATEDB permission
  2. Check database logs for details`
	vars := []any{name}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBCreateError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot create database %s: %w",
			fn, name, err),
	}
}

func DropDatabaseError(name string, err error) error {
	msg := "Cannot drop database <em>%s</em>"
	vars := []any{name}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBDropError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot drop database %s: %w",
			fn, name, err),
	}
}

func QueryTablesError(err error) error {
	msg := "Cannot get the list of database tables"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBQueryTablesError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: cannot query tables: %w", fn, err),
	}
}

func PurgeError(table string, err error) error {
	msg := "Cannot delete data from table <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBPurgeError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot purge %s: %w",
			fn, table, err),
	}
}

// BackupSourceMissingError is returned when there is no database file
// to back up.
func BackupSourceMissingError(path string) error {
	msg := "Database file <em>%s</em> does not exist, nothing to back up"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.DBBackupSourceMissingError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("backup source %s does not exist", path),
	}
}

// BackupNotFoundError is returned when a backup to restore does not
// exist.
func BackupNotFoundError(path string) error {
	msg := "Backup file <em>%s</em> not found"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.DBBackupNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("backup %s not found", path),
	}
}

func BackupError(path string, err error) error {
	msg := "Cannot back up database to <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBBackupError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot back up to %s: %w",
			fn, path, err),
	}
}

func RestoreError(path string, err error) error {
	msg := "Cannot restore database from <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBRestoreError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot restore from %s: %w",
			fn, path, err),
	}
}

// GORMConnectionError creates an error for GORM
// connection failures.
func GORMConnectionError(err error) error {
	msg := `Cannot connect to database with GORM

<em>Possible causes:</em>
  - Database file or server is not reachable
  - Database configuration issue
  - GORM driver problem`

	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to connect with GORM: %w", err),
	}
}

// CreateSchemaError creates an error for schema
// creation failures.
func CreateSchemaError(err error) error {
	msg := `Cannot create database schema

<em>How to fix:</em>
  1. Check database user has CREATE permissions
  2. Check database logs for details`

	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to create schema: %w", err),
	}
}

// MigrateSchemaError is a failure of versioned migrations. Setup
// recovers from it by creating the schema from models.
func MigrateSchemaError(version string, err error) error {
	msg := "Cannot migrate database schema to version <em>%s</em>"
	vars := []any{version}
	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to migrate schema to %s: %w", version, err),
	}
}

func InspectSchemaError(table string, err error) error {
	msg := "Cannot inspect table <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaInspectError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot inspect %s: %w",
			fn, table, err),
	}
}

func MigrationSourceError(dir string, err error) error {
	msg := "Cannot read embedded migrations from <em>%s</em>"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.MigrationSourceError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot read migrations %s: %w",
			fn, dir, err),
	}
}

func VacuumError(name string, err error) error {
	msg := "Cannot vacuum database <em>%s</em>"
	vars := []any{name}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBVacuumError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot vacuum %s: %w",
			fn, name, err),
	}
}
