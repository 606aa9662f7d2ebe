// Package iodb implements the database lifecycle of gncontent with GORM,
// pgx and golang-migrate. This is an impure I/O package that implements
// contracts defined in pkg/lifecycle.
//
// A manager owns two independent pools: a GORM engine for ORM sessions
// and a native pool (pgxpool for PostgreSQL, database/sql on modernc
// SQLite) for raw concurrent queries. Both are opened and closed
// together.
package iodb

import (
	"context"
	"database/sql"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gnames/gncontent/pkg/config"
	"github.com/gnames/gncontent/pkg/lifecycle"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

// adminDB is the PostgreSQL database used for creating and dropping
// gncontent databases.
const adminDB = "postgres"

// Manager implements lifecycle.Manager.
type Manager struct {
	engine string
	name   string
	dir    string
	head   string
	db     config.DatabaseConfig

	root     string
	runner   Runner
	progress bool
	log      *slog.Logger

	// mu guards state and conn. Operations that change state hold it for
	// their whole duration.
	mu    sync.Mutex
	state lifecycle.State

	// conn is either nil or has both the engine and the native pool.
	conn *connection
}

type connection struct {
	orm    *gorm.DB
	native nativePool
}

// nativePool is implemented by pgxpool for PostgreSQL and by
// database/sql for SQLite.
type nativePool interface {
	run(ctx context.Context, fn func(lifecycle.Querier) error) error
	close()
}

type pgxNative struct {
	pool *pgxpool.Pool
}

type sqlNative struct {
	db *sql.DB
}

// New creates a Manager from a resolved configuration. No connection is
// opened. Unsupported engine fails here, before any connection attempt.
func New(cfg config.Config, opts ...Option) (*Manager, error) {
	engine, err := config.EngineFor(cfg.Database.Type)
	if err != nil {
		return nil, InvalidEngineError(cfg.Database.Type)
	}

	res := &Manager{
		engine: engine,
		db:     cfg.Database,
		runner: execRunner{},
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(res)
	}

	if res.root == "" {
		if res.root, err = os.Getwd(); err != nil {
			res.root = "."
		}
	}

	res.head, err = migrationHead(engine)
	if err != nil {
		return nil, err
	}
	res.name = dbName(cfg.Database.Name, res.head, cfg.Global.Mode())

	res.dir = cfg.Database.Dir
	switch {
	case res.dir == "":
		res.dir = res.root
	case !filepath.IsAbs(res.dir):
		res.dir = filepath.Join(res.root, res.dir)
	}

	res.log = res.log.With("engine", engine, "database", res.name)
	return res, nil
}

// Engine returns EngineSQLite or EnginePostgreSQL.
func (m *Manager) Engine() string {
	return m.engine
}

// Name returns the database name in {root}_{head}_{mode} form.
func (m *Manager) Name() string {
	return m.name
}

// Dir returns the absolute directory for SQLite files and backups.
func (m *Manager) Dir() string {
	return m.dir
}

// Head returns the latest migration version known to the binary.
func (m *Manager) Head() string {
	return m.head
}

// State returns the current connection state.
func (m *Manager) State() lifecycle.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Path returns the SQLite database file. It is empty for PostgreSQL.
func (m *Manager) Path() string {
	if m.engine != config.EngineSQLite {
		return ""
	}
	return filepath.Join(m.dir, m.name+".db")
}

// URL returns the database URL. PostgreSQL credentials are escaped.
func (m *Manager) URL() string {
	if m.engine == config.EngineSQLite {
		return "sqlite:///" + m.Path()
	}
	return m.pgURL("postgresql", m.name, false)
}

// AsyncURL returns the URL for the native pgx driver. For SQLite it is
// the same as URL.
func (m *Manager) AsyncURL() string {
	if m.engine == config.EngineSQLite {
		return m.URL()
	}
	return m.pgURL("postgres", m.name, true)
}

func (m *Manager) pgURL(scheme, dbName string, withOpts bool) string {
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(m.db.User, m.db.Password),
		Host:   net.JoinHostPort(m.db.Host, strconv.Itoa(m.db.Port)),
		Path:   "/" + dbName,
	}
	if withOpts {
		u.RawQuery = "sslmode=disable"
	}
	return u.String()
}

// pgDSN returns a connection string for a PostgreSQL database.
func (m *Manager) pgDSN(dbName string) string {
	return m.pgURL("postgres", dbName, true)
}

// sqliteDSN returns a modernc connection string with foreign keys
// enforced.
func (m *Manager) sqliteDSN() string {
	return m.Path() + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Connect opens the ORM engine and the native pool if they are not
// open yet. Repeated calls return the same engine.
func (m *Manager) Connect(ctx context.Context) (*gorm.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connect(ctx)
}

func (m *Manager) connect(ctx context.Context) (*gorm.DB, error) {
	if m.conn != nil {
		return m.conn.orm, nil
	}

	conn, err := m.open(ctx)
	if err != nil {
		return nil, err
	}

	m.conn = conn
	m.state = lifecycle.StateConnected
	m.log.Debug("Database connected")
	return conn.orm, nil
}

// Close releases the engine and the native pool.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.close()
}

func (m *Manager) close() error {
	if m.conn == nil {
		return nil
	}

	var err error
	if sqlDB, dbErr := m.conn.orm.DB(); dbErr == nil {
		err = sqlDB.Close()
	}
	m.conn.native.close()
	m.conn = nil
	m.state = lifecycle.StateDisconnected
	m.log.Debug("Database disconnected")
	return err
}

var _ lifecycle.Manager = (*Manager)(nil)
