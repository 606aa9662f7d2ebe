package iodb

import (
	"context"
	"database/sql"

	"github.com/gnames/gncontent/pkg/lifecycle"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

// Session runs fn with a GORM session pinned to one pooled connection.
// The connection goes back to the pool when fn returns, fails or panics.
// Sessions are never shared between calls.
func (m *Manager) Session(
	ctx context.Context,
	fn func(*gorm.DB) error,
) error {
	orm, err := m.Connect(ctx)
	if err != nil {
		return err
	}
	return orm.WithContext(ctx).Connection(fn)
}

// Transaction runs fn in a transaction. It rolls back on error or panic
// and commits otherwise.
func (m *Manager) Transaction(
	ctx context.Context,
	fn func(*gorm.DB) error,
) error {
	orm, err := m.Connect(ctx)
	if err != nil {
		return err
	}
	return orm.WithContext(ctx).Transaction(fn)
}

// Native runs fn on a connection of the native pool. The pool is
// independent of the GORM engine, so long raw queries do not starve ORM
// sessions.
func (m *Manager) Native(
	ctx context.Context,
	fn func(lifecycle.Querier) error,
) error {
	m.mu.Lock()
	if _, err := m.connect(ctx); err != nil {
		m.mu.Unlock()
		return err
	}
	native := m.conn.native
	m.mu.Unlock()

	return native.run(ctx, fn)
}

func (p pgxNative) run(
	ctx context.Context,
	fn func(lifecycle.Querier) error,
) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(pgxQuerier{conn: conn})
}

func (p pgxNative) close() {
	p.pool.Close()
}

func (s sqlNative) run(
	ctx context.Context,
	fn func(lifecycle.Querier) error,
) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(sqlQuerier{conn: conn})
}

func (s sqlNative) close() {
	s.db.Close()
}

type pgxQuerier struct {
	conn *pgxpool.Conn
}

func (q pgxQuerier) Exec(
	ctx context.Context,
	query string,
	args ...any,
) (int64, error) {
	tag, err := q.conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q pgxQuerier) QueryRow(
	ctx context.Context,
	query string,
	args ...any,
) lifecycle.Row {
	return q.conn.QueryRow(ctx, query, args...)
}

type sqlQuerier struct {
	conn *sql.Conn
}

func (q sqlQuerier) Exec(
	ctx context.Context,
	query string,
	args ...any,
) (int64, error) {
	res, err := q.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q sqlQuerier) QueryRow(
	ctx context.Context,
	query string,
	args ...any,
) lifecycle.Row {
	return q.conn.QueryRowContext(ctx, query, args...)
}
