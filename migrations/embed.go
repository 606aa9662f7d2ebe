// Package migrations embeds versioned SQL migrations into the binary.
//
// Migrations for each engine live in their own directory. Files follow
// golang-migrate naming: VERSION_name.up.sql and VERSION_name.down.sql.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// Directories with migrations for supported engines.
const (
	SQLiteDir     = "sqlite"
	PostgreSQLDir = "postgres"
)
