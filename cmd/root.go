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
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gnames/gn"
	"github.com/gnames/gncontent/internal/iodb"
	"github.com/gnames/gncontent/internal/ioconfig"
	"github.com/gnames/gncontent/internal/iofs"
	"github.com/gnames/gncontent/internal/iologger"
	gncontent "github.com/gnames/gncontent/pkg"
	"github.com/gnames/gncontent/pkg/config"
	"github.com/spf13/cobra"
)

var (
	homeDir string
	cfgFile string
	cfg     config.Config
	mgr     *iodb.Manager
)

// getRootCmd returns the root command with all subcommands.
// Extracted as a function to facilitate testing.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf(
			"version: %s\nbuild:   %s", gncontent.Version, gncontent.Build,
		),
		Use:   "gncontent",
		Short: "GNcontent manages the database of a content backend",
		Long: `GNcontent manages the database lifecycle of an AI-assisted content
backend: topics, outlines, articles, sources, prompts, providers and jobs.

Supported engines:
  - SQLite (default), a file in DB_DIR
  - PostgreSQL

Configuration precedence (highest to lowest):
  1. Environment variables (GNCONTENT_<SECTION>_<KEY>)
  2. Engine section of the config file (SQLITE, POSTGRESQL)
  3. Other sections of the config file (GLOBAL, DATABASE, USER, AI)
  4. Built-in defaults

  Examples:
    GNCONTENT_DATABASE_DB_TYPE      sqlite or postgresql
    GNCONTENT_DATABASE_DB_HOST      PostgreSQL host
    GNCONTENT_GLOBAL_ENV_MODE       development, dev, production, prod
                                    or testing

The database name is {DB_NAME}_{migration version}_{mode}, so development,
test and production data never share a database.`,
		PersistentPreRunE: bootstrap,
		RunE:              runRoot,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "gncontent version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for gncontent")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.config/gncontent/gncontent.ini)")

	rootCmd.AddCommand(
		getSetupCmd(),
		getMigrateCmd(),
		getBackupCmd(),
		getRestoreCmd(),
		getPurgeCmd(),
		getDropCmd(),
		getResetCmd(),
		getStatusCmd(),
		getValidateCmd(),
		getConfigCmd(),
	)

	return rootCmd
}

// bootstrap prepares directories, logging, configuration and the
// database manager for every subcommand.
func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with defaults, the configuration is not known
	// yet.
	logDir := config.LogDir(homeDir)
	if err = iologger.Init(logDir, config.New().Global); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	path := cfgFile
	if path == "" {
		path = config.ConfigFilePath(homeDir)
	}

	if cfg, err = ioconfig.Load(path); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Reconfigure logging with user's settings.
	if err = iologger.Init(logDir, cfg.Global); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	mgr, err = iodb.New(cfg,
		iodb.OptProgress(true),
		iodb.OptLogger(slog.Default()),
	)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Database manager is ready",
		"engine", mgr.Engine(),
		"database", mgr.Name(),
	)
	return nil
}

func runRoot(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}

// closeManager releases database connections at the end of a command.
func closeManager() {
	if mgr == nil {
		return
	}
	if err := mgr.Close(); err != nil {
		slog.Warn("Cannot close database", "error", err)
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := getRootCmd().ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}
