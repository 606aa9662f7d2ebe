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
	"errors"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getBackupCmd returns the backup command.
func getBackupCmd() *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup [path]",
		Short: "Save a backup of the database",
		Long: `Backup saves a copy of the database.

SQLite databases are copied as files. PostgreSQL databases are dumped as
plain SQL by pg_dump, which has to be installed.

Without a path the backup goes to DB_DIR/backups with a timestamp in its
name.

Examples:
  gncontent backup
  gncontent backup /tmp/content.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return runBackup(cmd, path)
		},
	}

	return backupCmd
}

func runBackup(cmd *cobra.Command, path string) error {
	defer closeManager()

	res, err := mgr.Backup(cmd.Context(), path)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if !res.OK {
		gn.Warn("Backup failed: %s", res.Message)
		return errors.New(res.Message)
	}

	gn.Info("Backup saved to <em>%s</em> (%s)",
		res.Path, humanize.Bytes(uint64(res.Size)))
	return nil
}

// getRestoreCmd returns the restore command.
func getRestoreCmd() *cobra.Command {
	var force bool

	restoreCmd := &cobra.Command{
		Use:   "restore <path>",
		Short: "Replace the database with a backup",
		Long: `Restore replaces the database with a backup made by the backup
command. PostgreSQL backups are loaded by psql, which has to be
installed.

Restore is not atomic. If it is interrupted, the database may be left
empty or partially loaded. Run restore again or reset in that case.

Use --force to skip confirmation.

Examples:
  gncontent restore sqlite_data/backups/app_2_development_20250101_120000.db
  gncontent restore --force /tmp/content.sql`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, args[0], force)
		},
	}

	restoreCmd.Flags().BoolVarP(&force, "force", "f", false,
		"restore without confirmation")

	return restoreCmd
}

func runRestore(cmd *cobra.Command, path string, force bool) error {
	defer closeManager()

	if !force && !confirm(cmd,
		"Restore will replace ALL data in <em>%s</em>.", mgr.Name()) {
		gn.Info("Aborted. No changes made.")
		return nil
	}

	if err := mgr.Restore(cmd.Context(), path); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Database <em>%s</em> restored from <em>%s</em>",
		mgr.Name(), path)
	return nil
}
