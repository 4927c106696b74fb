// Marquee - Content-Based Movie Similarity Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/marquee/internal/api"
	movieimport "github.com/tomtom215/marquee/internal/import"
)

var csvPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run the similarity pipeline once over a catalog file",
	Long: `Loads the catalog CSV, persists movies and genres, computes the
similarity graph and stores the edges. A run that finds nothing to compute
ends as skipped and exits zero; failed and cancelled runs exit non-zero.`,
	PreRunE: loadConfig,
	RunE:    runImport,
}

func init() {
	importCmd.Flags().StringVar(&csvPath, "csv", "", "catalog CSV path (defaults to CATALOG_PATH)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	path := csvPath
	if path == "" {
		path = cfg.Import.CatalogPath
	}
	if path == "" {
		return errors.New("no catalog: pass --csv or set CATALOG_PATH")
	}

	s, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := newImporter(cfg, s).Run(ctx, path)
	if stats != nil {
		cmd.Println(stats.Summary())
	}

	switch {
	case err == nil:
		api.InvalidateDerived(cmd.Context(), s.db, s.cache)
		return nil
	case movieimport.IsSkipped(err):
		return nil
	default:
		return fmt.Errorf("import %s: %w", path, err)
	}
}
