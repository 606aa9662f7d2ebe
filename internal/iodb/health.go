package iodb

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/gnames/gncontent/pkg/config"
	"github.com/gnames/gncontent/pkg/lifecycle"
	"github.com/jackc/pgx/v5"
	"gorm.io/gorm"
)

// HealthCheck runs a trivial query through the engine. It opens the
// engine when needed and never returns an error, only the verdict.
func (m *Manager) HealthCheck(ctx context.Context) bool {
	var one int
	err := m.Session(ctx, func(tx *gorm.DB) error {
		return tx.Raw("SELECT 1").Scan(&one).Error
	})
	if err != nil {
		m.log.Warn("Health check failed", "error", err)
		return false
	}
	return one == 1
}

// TestConnection opens a fresh connection that does not belong to any
// pool, runs a trivial query and closes the connection. Failures are
// reported in the status, not returned.
func (m *Manager) TestConnection(ctx context.Context) lifecycle.ConnectionStatus {
	res := lifecycle.ConnectionStatus{
		Engine:   m.engine,
		Database: m.name,
	}

	var err error
	if m.engine == config.EngineSQLite {
		err = m.pingSQLite(ctx)
	} else {
		err = m.pingPostgres(ctx)
	}

	if err != nil {
		res.Message = err.Error()
		m.log.Warn("Connection test failed", "error", err)
		return res
	}

	res.Success = true
	res.Message = fmt.Sprintf("connected to %s database %s", m.engine, m.name)
	return res
}

// pingSQLite does not create a missing database file.
func (m *Manager) pingSQLite(ctx context.Context) error {
	if _, err := os.Stat(m.Path()); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", m.sqliteDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	var one int
	return db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

func (m *Manager) pingPostgres(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, m.pgDSN(m.name))
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	var one int
	return conn.QueryRow(ctx, "SELECT 1").Scan(&one)
}
