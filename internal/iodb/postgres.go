package iodb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDuplicateDatabase = "42P04"
	pgUniqueViolation   = "23505"
)

// adminConn connects to the administrative database of the server.
func (m *Manager) adminConn(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, m.pgDSN(adminDB))
	if err != nil {
		return nil, ConnectionError(m.engine, adminDB, err)
	}
	return conn, nil
}

// ensureDatabase creates the database if it does not exist. A database
// created concurrently by somebody else counts as success.
func (m *Manager) ensureDatabase(ctx context.Context) error {
	conn, err := m.adminConn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	return m.createDatabase(ctx, conn)
}

func (m *Manager) createDatabase(ctx context.Context, conn *pgx.Conn) error {
	var exists bool
	q := "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)"
	if err := conn.QueryRow(ctx, q, m.name).Scan(&exists); err != nil {
		return CreateDatabaseError(m.name, err)
	}
	if exists {
		return nil
	}

	q = "CREATE DATABASE " + pgx.Identifier{m.name}.Sanitize()
	if _, err := conn.Exec(ctx, q); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) &&
			(pgErr.Code == pgDuplicateDatabase || pgErr.Code == pgUniqueViolation) {
			return nil
		}
		return CreateDatabaseError(m.name, err)
	}

	m.log.Info("Database created")
	return nil
}

// dropDatabase terminates other connections to the database and drops
// it. A missing database is not an error.
func (m *Manager) dropDatabase(ctx context.Context, conn *pgx.Conn) error {
	q := `SELECT pg_terminate_backend(pid)
  FROM pg_stat_activity
  WHERE datname = $1 AND pid <> pg_backend_pid()`
	if _, err := conn.Exec(ctx, q, m.name); err != nil {
		return DropDatabaseError(m.name, err)
	}

	q = "DROP DATABASE IF EXISTS " + pgx.Identifier{m.name}.Sanitize()
	if _, err := conn.Exec(ctx, q); err != nil {
		return DropDatabaseError(m.name, err)
	}
	return nil
}
