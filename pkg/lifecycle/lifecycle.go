// Package lifecycle defines the contract of the gncontent connection
// manager and the reports its operations return.
//
// Operations that have a reasonable fallback do not return errors for
// recoverable conditions. They return a Result, a report, or a status
// instead, so callers cannot mistake a recovered migration for a crash.
package lifecycle

import (
	"context"

	"gorm.io/gorm"
)

// State of a database manager.
type State int

const (
	// StateUnconfigured means no connection was opened yet.
	StateUnconfigured State = iota

	// StateConnected means the ORM engine and the native pool are open.
	StateConnected

	// StateDisconnected means connections were open and then closed.
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unconfigured"
	}
}

// Sessioner provides scoped ORM sessions. It is all the CRUD layer needs
// from the database manager.
type Sessioner interface {
	// Session runs fn with a session pinned to one pooled connection.
	// The connection is released when fn returns, fails or panics.
	Session(ctx context.Context, fn func(*gorm.DB) error) error

	// Transaction runs fn inside a transaction. The transaction is
	// rolled back if fn returns an error or panics, and committed
	// otherwise.
	Transaction(ctx context.Context, fn func(*gorm.DB) error) error
}

// Querier executes raw SQL on a native connection.
type Querier interface {
	// Exec runs a statement and returns the number of affected rows.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// QueryRow runs a query that returns at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// Row is a result of QueryRow.
type Row interface {
	Scan(dest ...any) error
}

// Manager owns the database of gncontent and its whole lifecycle.
type Manager interface {
	Sessioner

	// State returns the current connection state.
	State() State

	// Engine returns the canonical engine name.
	Engine() string

	// Name returns the resolved database name.
	Name() string

	// Connect opens the ORM engine and the native pool if they are not
	// open yet.
	Connect(ctx context.Context) (*gorm.DB, error)

	// Setup creates the database if needed, connects to it and, when
	// runMigrations is true, brings its schema to the latest version.
	Setup(ctx context.Context, runMigrations bool) (Result, error)

	// HealthCheck returns true if the database answers a trivial query.
	HealthCheck(ctx context.Context) bool

	// ValidateSchema compares the live schema with the models.
	ValidateSchema(ctx context.Context) (SchemaReport, error)

	// TestConnection opens a fresh connection, runs a trivial query and
	// closes the connection.
	TestConnection(ctx context.Context) ConnectionStatus

	// Backup saves a copy of the database to path. Empty path means
	// a timestamped file in the backups directory.
	Backup(ctx context.Context, path string) (BackupReport, error)

	// Restore replaces the database with a backup.
	Restore(ctx context.Context, path string) error

	// Purge deletes all rows from all tables except migration records
	// and the excluded tables.
	Purge(ctx context.Context, exclude ...string) error

	// Drop closes connections and removes the database.
	Drop(ctx context.Context) error

	// Reset drops the database and sets it up from scratch.
	Reset(ctx context.Context) (Result, error)

	// Native runs fn on a connection from the native pool.
	Native(ctx context.Context, fn func(Querier) error) error

	// Close releases all connections.
	Close() error
}
