package iodb

import (
	"context"
	"slices"
	"strings"

	"github.com/gnames/gncontent/internal/iofs"
	"github.com/gnames/gncontent/pkg/config"
	"github.com/gnames/gncontent/pkg/lifecycle"
	"github.com/gnames/gncontent/pkg/schema"
	"github.com/jackc/pgx/v5"
	"gorm.io/gorm"
)

// Tables returns names of all user tables, including the migrations
// table.
func (m *Manager) Tables(ctx context.Context) ([]string, error) {
	orm, err := m.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return m.tables(orm.WithContext(ctx))
}

func (m *Manager) tables(db *gorm.DB) ([]string, error) {
	q := `SELECT tablename FROM pg_tables
  WHERE schemaname = 'public'
  ORDER BY tablename`
	if m.engine == config.EngineSQLite {
		q = `SELECT name FROM sqlite_master
  WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
  ORDER BY name`
	}

	var res []string
	if err := db.Raw(q).Scan(&res).Error; err != nil {
		return nil, QueryTablesError(err)
	}
	return res, nil
}

// Purge deletes all rows from all tables, keeping the schema. The
// migrations table and tables from exclude are left intact.
//
// Purge is not atomic. If it fails, tables processed before the failure
// stay empty. SQLite tables are emptied one by one with foreign keys
// disabled on a single pinned connection. PostgreSQL tables are
// truncated by one statement that also restarts identities.
func (m *Manager) Purge(ctx context.Context, exclude ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	orm, err := m.connect(ctx)
	if err != nil {
		return err
	}
	db := orm.WithContext(ctx)

	all, err := m.tables(db)
	if err != nil {
		return err
	}

	skip := append([]string{schema.MigrationsTable}, exclude...)
	var targets []string
	for _, t := range all {
		if !slices.Contains(skip, t) {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	if m.engine == config.EngineSQLite {
		err = purgeSQLite(db, targets)
	} else {
		err = purgePostgres(db, targets)
	}
	if err != nil {
		return err
	}

	m.log.Info("Database purged", "tables", len(targets))
	return nil
}

func purgeSQLite(db *gorm.DB, tables []string) error {
	return db.Connection(func(tx *gorm.DB) (err error) {
		if err = tx.Exec("PRAGMA foreign_keys = OFF").Error; err != nil {
			return PurgeError(tables[0], err)
		}
		defer func() {
			onErr := tx.Exec("PRAGMA foreign_keys = ON").Error
			if err == nil && onErr != nil {
				err = PurgeError(tables[0], onErr)
			}
		}()

		for _, t := range tables {
			if err = tx.Exec("DELETE FROM " + quoteSQLite(t)).Error; err != nil {
				return PurgeError(t, err)
			}
		}

		if tx.Migrator().HasTable("sqlite_sequence") {
			err = tx.Exec(
				"DELETE FROM sqlite_sequence WHERE name IN ?", tables,
			).Error
			if err != nil {
				return PurgeError("sqlite_sequence", err)
			}
		}
		return nil
	})
}

func purgePostgres(db *gorm.DB, tables []string) error {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = pgx.Identifier{t}.Sanitize()
	}
	q := "TRUNCATE TABLE " + strings.Join(names, ", ") +
		" RESTART IDENTITY CASCADE"
	if err := db.Exec(q).Error; err != nil {
		return PurgeError(strings.Join(tables, ", "), err)
	}
	return nil
}

func quoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Drop closes connections and removes the database. A database that
// does not exist is not an error. The manager is Disconnected afterwards
// whatever happens.
func (m *Manager) Drop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drop(ctx)
}

func (m *Manager) drop(ctx context.Context) error {
	defer func() {
		m.conn = nil
		m.state = lifecycle.StateDisconnected
	}()

	if err := m.close(); err != nil {
		m.log.Warn("Cannot close database before drop", "error", err)
	}

	if m.engine == config.EngineSQLite {
		p := m.Path()
		if err := iofs.RemoveFiles(p, p+"-wal", p+"-shm", p+"-journal"); err != nil {
			return DropDatabaseError(m.name, err)
		}
		m.log.Info("Database dropped")
		return nil
	}

	conn, err := m.adminConn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if err = m.dropDatabase(ctx, conn); err != nil {
		return err
	}
	m.log.Info("Database dropped")
	return nil
}

// Reset drops the database and sets it up again with migrations.
func (m *Manager) Reset(ctx context.Context) (lifecycle.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.drop(ctx); err != nil {
		return lifecycle.Result{}, err
	}
	return m.setup(ctx, true)
}
