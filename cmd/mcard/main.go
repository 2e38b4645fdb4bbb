// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for mcard using the Cobra
// library. The CLI is a thin consumer of the core: it configures the
// provider, opens the store and maps core errors to exit output; the hard
// invariants all live in the internal packages.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcardproject/mcard/internal/api"
	"github.com/mcardproject/mcard/internal/config"
	"github.com/mcardproject/mcard/internal/db"
	"github.com/mcardproject/mcard/internal/errs"
	"github.com/mcardproject/mcard/internal/i18n"
	"github.com/mcardproject/mcard/internal/logging"
)

var version = "dev" // this will be set by the linker

var (
	cfgFile   string
	langFlag  string
	debugFlag bool

	// svc is built in PersistentPreRunE once the store is open.
	svc *api.Service
)

// main is the entry point of the application.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		// The error is already printed by Cobra on failure.
		os.Exit(1)
	}
}

// newRootCmd creates and configures a new root cobra command. Fresh
// instances are also used for isolated testing.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcard",
		Short: "mcard is a content-addressable card store.",
		Long: `mcard stores content under the digest of its own bytes.
Identical content always lands on the same row, no matter how often or
from how many places it is saved; the hash is the only identity a card
has. Configuration comes from mcard.yaml and MCARD_* environment
variables, validated once at startup.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			i18n.Init(langFlag)
			logging.SetDebug(debugFlag)
			db.SetDebug(debugFlag)

			if skipsStore(cmd) {
				return nil
			}

			src := config.NewEnvSource(config.ModeProduction)
			src.ConfigFile = cfgFile
			snap, err := config.Configure(src)
			if err != nil {
				return errors.New(i18n.T("cli.error_configure", err))
			}
			if err := db.Init(snap); err != nil {
				return errors.New(i18n.T("cli.error_init_db", err))
			}
			logging.Debugf("store ready: engine=%s path=%s algorithm=%s", snap.Engine, snap.DBPath, snap.Hashing.Algorithm)
			svc = api.NewService(db.DefaultStore(), snap.Scheme)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := db.Shutdown(); err != nil {
				logging.Errorf("closing store: %v", err)
			}
			config.Reset()
		},
	}

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newHashCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newMaintenanceCmd())
	cmd.AddCommand(newInitConfigCmd())

	cmd.Version = version

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is mcard.yaml in the standard locations)")
	cmd.PersistentFlags().StringVar(&langFlag, "lang", "en", `output language ("en", "de")`)
	cmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	return cmd
}

// skipsStore reports whether a command runs without configuration or an
// open store.
func skipsStore(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "init-config", "hash", "help", "completion", "version":
		return true
	}
	return false
}

// exitError renders a core error for the terminal, keeping the taxonomy
// visible (not-found is reported as such rather than as a generic failure).
// hash is the identity the command was asked for.
func exitError(err error, hash string) error {
	if errors.Is(err, errs.ErrNotFound) {
		return errors.New(i18n.T("cli.not_found", hash))
	}
	return err
}

// newInitConfigCmd writes a starter configuration file.
func newInitConfigCmd() *cobra.Command {
	var system bool
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a default mcard.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteDefaultConfig(system)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.config_written", path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&system, "system", false, "write to the system-wide location instead of the user one")
	return cmd
}
