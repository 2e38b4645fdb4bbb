// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/mcardproject/mcard/internal/api"
	"github.com/mcardproject/mcard/internal/hashing"
	"github.com/mcardproject/mcard/internal/i18n"
)

// readInput returns the content for a path argument, with "-" meaning
// standard input.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newAddCmd() *cobra.Command {
	var asText bool
	cmd := &cobra.Command{
		Use:   "add <file|->",
		Short: "Store content and print its card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var resp api.CardResponse
			if asText || utf8.Valid(content) {
				resp, err = svc.CreateText(string(content))
			} else {
				resp, err = svc.Create(content)
			}
			if err != nil {
				return err
			}
			if resp.Created {
				fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli.added", resp.Hash, len(content)))
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli.exists", resp.Hash))
			}
			return printJSON(cmd, resp)
		},
	}
	cmd.Flags().BoolVar(&asText, "text", false, "force storing the input as text")
	return cmd
}

func newGetCmd() *cobra.Command {
	var describe bool
	cmd := &cobra.Command{
		Use:   "get <hash>",
		Short: "Fetch a card by content hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if describe {
				resp, err := svc.Describe(args[0])
				if err != nil {
					return exitError(err, args[0])
				}
				return printJSON(cmd, resp)
			}
			resp, err := svc.Fetch(args[0])
			if err != nil {
				return exitError(err, args[0])
			}
			return printJSON(cmd, resp)
		},
	}
	cmd.Flags().BoolVar(&describe, "describe", false, "include collaborator enrichment when available")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := svc.List()
			if err != nil {
				return err
			}
			if len(resp) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli.list_empty"))
			}
			return printJSON(cmd, resp)
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <hash>",
		Short: "Delete a card by content hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := svc.Delete(args[0])
			if err != nil {
				return exitError(err, args[0])
			}
			fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli.deleted", resp.Hash))
			return printJSON(cmd, resp)
		},
	}
}

// newHashCmd digests input without touching the store; it needs no
// configuration beyond the algorithm flag.
func newHashCmd() *cobra.Command {
	var algorithm string
	cmd := &cobra.Command{
		Use:   "hash <file|->",
		Short: "Print the content hash without storing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scheme, err := hashing.Resolve(algorithm)
			if err != nil {
				return err
			}
			content, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), scheme.Sum(content))
			return nil
		},
	}
	cmd.Flags().StringVar(&algorithm, "algorithm", "sha256", "digest algorithm")
	return cmd
}
