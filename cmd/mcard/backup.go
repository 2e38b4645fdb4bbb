// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcardproject/mcard/internal/backup"
	"github.com/mcardproject/mcard/internal/config"
	"github.com/mcardproject/mcard/internal/db"
	"github.com/mcardproject/mcard/internal/i18n"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export all cards to a compressed backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			n, err := backup.Export(db.DefaultStore(), f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli.export_done", n, args[0]))
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import cards from a backup file, skipping known content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			inserted, skipped, err := backup.Import(db.DefaultStore(), f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli.import_done", inserted, skipped, args[0]))
			return nil
		},
	}
}

func newMaintenanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maintenance",
		Short: "Run engine-specific maintenance (vacuum, optimize)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := config.Active()
			if err != nil {
				return err
			}
			// Maintenance wants the table idle; release the pool first.
			if err := db.Shutdown(); err != nil {
				return err
			}
			if err := db.RunMaintenance(snap.Engine, snap.DBPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli.maintenance_done", snap.Engine))
			return nil
		},
	}
}
