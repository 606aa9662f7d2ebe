// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"context"
	"net"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gnames/gncontent/pkg/config"
	"github.com/jackc/pgx/v5"
)

const (
	// TestDatabaseName is the database root used by all integration tests.
	// Together with the "test" mode it keeps tests away from development
	// and production databases.
	TestDatabaseName = "gncontent_test"
)

// SQLiteConfig returns a configuration for a SQLite database inside a
// temporary directory that is removed after the test.
func SQLiteConfig(t *testing.T) config.Config {
	t.Helper()

	res := config.New()
	res.Global.EnvMode = config.ModeTest
	res.Database = config.DatabaseConfig{
		Type: config.EngineSQLite,
		Name: TestDatabaseName,
		Dir:  t.TempDir(),
	}
	return res
}

// PostgresConfig returns a configuration for a PostgreSQL test database.
// Connection values come from DB_HOST, DB_PORT, DB_USER and DB_PASSWORD
// environment variables, or PostgreSQL defaults. The test is skipped in
// short mode or when the server does not answer.
func PostgresConfig(t *testing.T) config.Config {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}

	vals := config.EngineDefaults(config.EnginePostgreSQL)
	for _, k := range []string{
		config.KeyDBHost, config.KeyDBPort, config.KeyDBUser,
		config.KeyDBPassword,
	} {
		if v := os.Getenv(k); v != "" {
			vals[k] = v
		}
	}
	port, err := strconv.Atoi(vals[config.KeyDBPort])
	if err != nil {
		t.Fatalf("Invalid DB_PORT %q: %v", vals[config.KeyDBPort], err)
	}

	res := config.New()
	res.Global.EnvMode = config.ModeTest
	res.Database = config.DatabaseConfig{
		Type:     config.EnginePostgreSQL,
		Name:     TestDatabaseName,
		User:     vals[config.KeyDBUser],
		Password: vals[config.KeyDBPassword],
		Host:     vals[config.KeyDBHost],
		Port:     port,
	}

	if !reachable(res.Database) {
		t.Skipf("PostgreSQL is not reachable at %s:%d",
			res.Database.Host, res.Database.Port)
	}
	return res
}

func reachable(db config.DatabaseConfig) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:     "/postgres",
		RawQuery: "sslmode=disable",
	}
	conn, err := pgx.Connect(ctx, u.String())
	if err != nil {
		return false
	}
	conn.Close(ctx)
	return true
}

// SetupTempConfigDir creates a temporary home directory for a test and
// points HOME to it, so configuration and log files never touch the real
// ~/.config/gncontent.
//
// Returns the absolute path to the temporary home directory.
func SetupTempConfigDir(t *testing.T) string {
	t.Helper()

	res := t.TempDir()
	t.Setenv("HOME", res)
	return res
}
