package iodb

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/gnames/gncontent/internal/iofs"
	"github.com/gnames/gncontent/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// open creates the engine and the native pool. On failure nothing stays
// open.
func (m *Manager) open(ctx context.Context) (*connection, error) {
	if m.engine == config.EngineSQLite {
		return m.openSQLite(ctx)
	}
	return m.openPostgres(ctx)
}

func (m *Manager) gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(
			slog.NewLogLogger(m.log.Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	}
}

func (m *Manager) openSQLite(ctx context.Context) (*connection, error) {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, iofs.CreateDirError(m.dir, err)
	}

	orm, err := gorm.Open(
		sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: m.sqliteDSN()}),
		m.gormConfig(),
	)
	if err != nil {
		return nil, GORMConnectionError(err)
	}

	db, err := sql.Open("sqlite", m.sqliteDSN())
	if err == nil {
		err = db.PingContext(ctx)
	}
	if err != nil {
		closeORM(orm)
		return nil, ConnectionError(m.engine, m.name, err)
	}

	return &connection{orm: orm, native: sqlNative{db: db}}, nil
}

func (m *Manager) openPostgres(ctx context.Context) (*connection, error) {
	orm, err := gorm.Open(postgres.Open(m.pgDSN(m.name)), m.gormConfig())
	if err != nil {
		return nil, GORMConnectionError(err)
	}

	poolConfig, err := pgxpool.ParseConfig(m.AsyncURL())
	if err != nil {
		closeORM(orm)
		return nil, ConnectionError(m.engine, m.name, err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		closeORM(orm)
		return nil, ConnectionError(m.engine, m.name, err)
	}

	return &connection{orm: orm, native: pgxNative{pool: pool}}, nil
}

func closeORM(orm *gorm.DB) {
	if sqlDB, err := orm.DB(); err == nil {
		sqlDB.Close()
	}
}
