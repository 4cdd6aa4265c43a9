// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Command keyscopectl runs the keyword pipeline offline and manages the
// credential pool of a running server.
//
//	keyscopectl score --batch results.json --keyword 재테크
//	keyscopectl classify --text "주식 투자 방법"
//	keyscopectl catalog check --path catalog.yaml
//	keyscopectl token --secret "$JWT_SECRET"
//	keyscopectl keys status --api http://localhost:5000
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	catalogPath string
	apiURL      string
	token       string
}

func newRootCmd(out io.Writer) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "keyscopectl",
		Short:         "Keyword scoring and credential pool tool for Keyscope",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&flags.catalogPath, "catalog", "", "Catalog YAML (default: embedded tables)")
	root.PersistentFlags().StringVarP(&flags.apiURL, "api", "a", "http://localhost:5000", "Keyscope server base URL")
	root.PersistentFlags().StringVarP(&flags.token, "token", "t", os.Getenv("KEYSCOPE_TOKEN"), "Admin bearer token")

	root.AddCommand(
		newScoreCmd(flags),
		newClassifyCmd(flags),
		newTrendingCmd(flags),
		newCatalogCmd(flags),
		newTokenCmd(),
		newKeysCmd(flags),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// printJSON writes v indented to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
