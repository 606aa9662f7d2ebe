/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gncontent/pkg/lifecycle"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// getSetupCmd returns the setup command.
func getSetupCmd() *cobra.Command {
	var noMigrate bool

	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Create database and bring its schema up to date",
		Long: `Setup prepares the database for use.

This command:
  1. Creates the SQLite directory, or the PostgreSQL database if absent
  2. Opens connections
  3. Applies versioned migrations

If migrations fail, the schema is created from models instead and
the failure is reported as a warning.

Running setup again on a ready database is safe.

Examples:
  gncontent setup
  gncontent setup --no-migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, !noMigrate)
		},
	}

	setupCmd.Flags().BoolVar(&noMigrate, "no-migrate", false,
		"connect without applying migrations")

	return setupCmd
}

func runSetup(cmd *cobra.Command, runMigrations bool) error {
	defer closeManager()
	start := time.Now()

	res, err := mgr.Setup(cmd.Context(), runMigrations)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	reportResult(res)

	gn.Info("Database <em>%s</em> is ready (%s)",
		mgr.Name(), gnfmt.TimeString(time.Since(start).Seconds()))
	return nil
}

// reportResult warns about failures that were recovered by a fallback.
func reportResult(res lifecycle.Result) {
	if !res.Recovered {
		return
	}
	gn.Warn("Migrations failed, schema was created from models instead")
	gn.PrintErrorMessage(res.Cause)
}

// getMigrateCmd returns the migrate command.
func getMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Migrate applies pending versioned migrations to the database.

Migrations are embedded into the binary. Applied migrations are recorded
in the schema_migrations table, so running migrate again is safe.

Examples:
  gncontent migrate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd)
		},
	}

	return migrateCmd
}

func runMigrate(cmd *cobra.Command) error {
	defer closeManager()

	res, err := mgr.Migrate(cmd.Context())
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	reportResult(res)

	v, dirty, err := mgr.MigrationVersion(cmd.Context())
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if dirty {
		gn.Warn("Migration <em>%d</em> did not finish", v)
		return nil
	}
	gn.Info("Schema is at version <em>%d</em>", v)
	return nil
}
