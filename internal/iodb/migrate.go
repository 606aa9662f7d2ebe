package iodb

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gnames/gncontent/migrations"
	"github.com/gnames/gncontent/pkg/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// migrateUp applies all pending versioned migrations. Migrations run on
// their own short-lived connection, closing the migrator closes it.
func (m *Manager) migrateUp() error {
	dir := migrationsDir(m.engine)
	src, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return MigrationSourceError(dir, err)
	}

	driver, err := m.migrationDriver()
	if err != nil {
		src.Close()
		return err
	}

	mg, err := migrate.NewWithInstance("iofs", src, m.engine, driver)
	if err != nil {
		src.Close()
		driver.Close()
		return fmt.Errorf("create migrator: %w", err)
	}
	defer mg.Close()
	mg.Log = migrateLogger{log: m.log}

	if err = mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// migrationVersion returns the applied migration version and the dirty
// flag. Version 0 means no migrations were applied.
func (m *Manager) migrationVersion() (uint, bool, error) {
	dir := migrationsDir(m.engine)
	src, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return 0, false, MigrationSourceError(dir, err)
	}

	driver, err := m.migrationDriver()
	if err != nil {
		src.Close()
		return 0, false, err
	}

	mg, err := migrate.NewWithInstance("iofs", src, m.engine, driver)
	if err != nil {
		src.Close()
		driver.Close()
		return 0, false, err
	}
	defer mg.Close()

	v, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func (m *Manager) migrationDriver() (database.Driver, error) {
	var db *sql.DB
	if m.engine == config.EngineSQLite {
		var err error
		if db, err = sql.Open("sqlite", m.sqliteDSN()); err != nil {
			return nil, ConnectionError(m.engine, m.name, err)
		}
		driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			db.Close()
			return nil, ConnectionError(m.engine, m.name, err)
		}
		return driver, nil
	}

	cc, err := pgx.ParseConfig(m.pgDSN(m.name))
	if err != nil {
		return nil, ConnectionError(m.engine, m.name, err)
	}
	db = stdlib.OpenDB(*cc)
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		db.Close()
		return nil, ConnectionError(m.engine, m.name, err)
	}
	return driver, nil
}

// migrateLogger sends golang-migrate messages to slog.
type migrateLogger struct {
	log *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l migrateLogger) Verbose() bool {
	return false
}
