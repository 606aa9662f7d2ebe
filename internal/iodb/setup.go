package iodb

import (
	"context"
	"os"

	"github.com/gnames/gncontent/internal/iofs"
	"github.com/gnames/gncontent/pkg/config"
	"github.com/gnames/gncontent/pkg/lifecycle"
	"github.com/gnames/gncontent/pkg/schema"
)

// Setup prepares the database for use.
//
// SQLite gets its directory created. PostgreSQL gets the database
// created if it is absent. Then the engine and the native pool are
// opened. With runMigrations, versioned migrations are applied. When
// they fail, the schema is created from models instead, the failure is
// logged and returned as Result.Cause. Setup fails only when the
// fallback fails as well. Calling Setup again is safe.
//
// A failed migration leaves the migrations table dirty. Later calls
// fail to migrate again and recover the same way, until the database is
// fixed and the version is forced by hand, or the database is reset.
func (m *Manager) Setup(
	ctx context.Context,
	runMigrations bool,
) (lifecycle.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setup(ctx, runMigrations)
}

func (m *Manager) setup(
	ctx context.Context,
	runMigrations bool,
) (lifecycle.Result, error) {
	var res lifecycle.Result

	switch m.engine {
	case config.EngineSQLite:
		if err := os.MkdirAll(m.dir, 0755); err != nil {
			return res, iofs.CreateDirError(m.dir, err)
		}
	case config.EnginePostgreSQL:
		if err := m.ensureDatabase(ctx); err != nil {
			return res, err
		}
	}

	orm, err := m.connect(ctx)
	if err != nil {
		return res, err
	}

	if !runMigrations {
		return res, nil
	}

	if err = m.migrateUp(); err != nil {
		cause := MigrateSchemaError(m.head, err)
		m.log.Error("Migrations failed, creating schema from models",
			"version", m.head,
			"error", err,
		)
		if err = schema.Migrate(orm.WithContext(ctx)); err != nil {
			return res, CreateSchemaError(err)
		}
		return lifecycle.Result{Recovered: true, Cause: cause}, nil
	}

	m.log.Info("Database schema is up to date", "version", m.head)
	return res, nil
}

// Migrate applies pending migrations to a database that was set up
// before.
func (m *Manager) Migrate(ctx context.Context) (lifecycle.Result, error) {
	return m.Setup(ctx, true)
}

// MigrationVersion returns the applied migration version and whether
// the last migration failed half-way. A database without the migrations
// table has version 0 and is not modified.
func (m *Manager) MigrationVersion(ctx context.Context) (uint, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orm, err := m.connect(ctx)
	if err != nil {
		return 0, false, err
	}
	if !orm.WithContext(ctx).Migrator().HasTable(schema.MigrationsTable) {
		return 0, false, nil
	}
	return m.migrationVersion()
}
