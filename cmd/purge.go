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
	"bufio"
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getPurgeCmd returns the purge command.
func getPurgeCmd() *cobra.Command {
	var (
		force   bool
		vacuum  bool
		exclude []string
	)

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all data but keep the schema",
		Long: `Purge deletes rows from all tables and keeps the schema.

Migration records are never deleted. Use --exclude to keep data of
other tables.

Purge is not atomic. If it is interrupted, some tables may be already
empty while others still have data.

Examples:
  gncontent purge
  gncontent purge --exclude prompts,providers
  gncontent purge -f --vacuum`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPurge(cmd, exclude, force, vacuum)
		},
	}

	purgeCmd.Flags().BoolVarP(&force, "force", "f", false,
		"purge without confirmation")
	purgeCmd.Flags().StringSliceVarP(&exclude, "exclude", "e", nil,
		"tables to keep intact")
	purgeCmd.Flags().BoolVar(&vacuum, "vacuum", false,
		"reclaim disk space after purge")

	return purgeCmd
}

func runPurge(
	cmd *cobra.Command,
	exclude []string,
	force, vacuum bool,
) error {
	defer closeManager()

	if !force && !confirm(cmd,
		"Purge will delete ALL data in <em>%s</em>.", mgr.Name()) {
		gn.Info("Aborted. No changes made.")
		return nil
	}

	if err := mgr.Purge(cmd.Context(), exclude...); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("All data deleted from <em>%s</em>", mgr.Name())

	if vacuum {
		if err := mgr.Vacuum(cmd.Context()); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}
	return nil
}

// getDropCmd returns the drop command.
func getDropCmd() *cobra.Command {
	var force bool

	dropCmd := &cobra.Command{
		Use:   "drop",
		Short: "Remove the database",
		Long: `Drop closes connections and removes the database. For SQLite
the database file is deleted, for PostgreSQL the database is dropped
after terminating other sessions.

Dropping a database that does not exist is not an error.

Examples:
  gncontent drop
  gncontent drop --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDrop(cmd, force)
		},
	}

	dropCmd.Flags().BoolVarP(&force, "force", "f", false,
		"drop without confirmation")

	return dropCmd
}

func runDrop(cmd *cobra.Command, force bool) error {
	defer closeManager()

	if !force && !confirm(cmd,
		"Drop will remove the database <em>%s</em>.", mgr.Name()) {
		gn.Info("Aborted. No changes made.")
		return nil
	}

	if err := mgr.Drop(cmd.Context()); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Database <em>%s</em> dropped", mgr.Name())
	return nil
}

// getResetCmd returns the reset command.
func getResetCmd() *cobra.Command {
	var force bool

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop the database and set it up again",
		Long: `Reset drops the database and sets it up from scratch with all
migrations applied. All data is lost.

Examples:
  gncontent reset
  gncontent reset --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReset(cmd, force)
		},
	}

	resetCmd.Flags().BoolVarP(&force, "force", "f", false,
		"reset without confirmation")

	return resetCmd
}

func runReset(cmd *cobra.Command, force bool) error {
	defer closeManager()

	if !force && !confirm(cmd,
		"Reset will remove ALL data in <em>%s</em>.", mgr.Name()) {
		gn.Info("Aborted. No changes made.")
		return nil
	}

	res, err := mgr.Reset(cmd.Context())
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	reportResult(res)

	gn.Info("Database <em>%s</em> was reset", mgr.Name())
	return nil
}

// confirm asks the user to continue a destructive operation. Input is
// read from the command's input, so tests can provide answers.
func confirm(cmd *cobra.Command, msg string, vars ...any) bool {
	gn.Warn(msg, vars...)
	fmt.Fprint(cmd.OutOrStdout(), "Do you want to continue? (yes/no): ")

	reader := bufio.NewReader(cmd.InOrStdin())
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		gn.Warn("Failed to read user input")
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y"
}
