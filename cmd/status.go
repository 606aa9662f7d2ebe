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
	"fmt"
	"net/url"

	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// status is the output of the status command.
type status struct {
	Engine     string `json:"engine"`
	Database   string `json:"database"`
	URL        string `json:"url"`
	Head       string `json:"migrationHead"`
	Version    uint   `json:"migrationVersion"`
	Dirty      bool   `json:"migrationDirty"`
	Connection any    `json:"connection"`
	Healthy    bool   `json:"healthy"`
}

// getStatusCmd returns the status command.
func getStatusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show database connection and migration status",
		Long: `Status tests the connection to the database and prints engine,
database name, migration versions and health as JSON.

The password in the URL is never printed.

Examples:
  gncontent status`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd)
		},
	}

	return statusCmd
}

func runStatus(cmd *cobra.Command) error {
	defer closeManager()
	ctx := cmd.Context()

	conn := mgr.TestConnection(ctx)
	res := status{
		Engine:     mgr.Engine(),
		Database:   mgr.Name(),
		URL:        redactURL(mgr.URL()),
		Head:       mgr.Head(),
		Connection: conn,
	}

	if conn.Success {
		res.Healthy = mgr.HealthCheck(ctx)
		v, dirty, err := mgr.MigrationVersion(ctx)
		if err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		res.Version, res.Dirty = v, dirty
	}

	return printJSON(cmd, res)
}

// redactURL hides the password of a database URL.
func redactURL(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return u.Redacted()
}

// getValidateCmd returns the validate command.
func getValidateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare the database schema with models",
		Long: `Validate compares live tables and columns with the models of
gncontent and prints missing tables, missing columns and type mismatches
as JSON. The command fails if the schema differs.

Examples:
  gncontent validate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd)
		},
	}

	return validateCmd
}

func runValidate(cmd *cobra.Command) error {
	defer closeManager()

	report, err := mgr.ValidateSchema(cmd.Context())
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = printJSON(cmd, report); err != nil {
		return err
	}
	if !report.Valid {
		gn.Warn("Database schema differs from models")
		return errors.New("schema is not valid")
	}
	return nil
}

// getConfigCmd returns the config command.
func getConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Config prints the configuration after merging the config file,
environment variables and defaults. Passwords and keys are masked.

Examples:
  gncontent config
  GNCONTENT_GLOBAL_ENV_MODE=prod gncontent config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, cfg.Redacted())
		},
	}

	return configCmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := gnfmt.GNjson{Pretty: true}
	res, err := enc.Encode(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(res))
	return nil
}
