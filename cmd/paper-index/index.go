// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soyoung-yu/paper-site/internal/catalog"
	"github.com/soyoung-yu/paper-site/internal/index"
	"github.com/soyoung-yu/paper-site/internal/observability"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the search payload and catalog affiliations from the PDFs",
	Long: `Index extracts the text of every paper in the catalog, finds its
title and affiliations, and rewrites both the search payload and the
catalog. Papers whose PDF cannot be read are logged and get an empty
affiliation list; they do not fail the run. A missing vocabulary or an
unreadable catalog aborts before any paper is processed.`,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	metrics := observability.NewMetrics()
	b, _, err := newBuilder(ctx, metrics)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(cfg.Paths.Catalog)
	if err != nil {
		return err
	}

	res, err := b.Build(ctx, cat)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintln(os.Stdout, "dry run: nothing written")
	} else {
		if err := index.WriteArtifacts(cfg.Paths.SearchIndex, cfg.Paths.Catalog, res); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "wrote %s (%d papers) and %s\n", cfg.Paths.SearchIndex, res.Payload.PaperCount, cfg.Paths.Catalog)
	}

	s := res.Summary
	fmt.Fprintf(os.Stdout, "\nindexed: %d, failed: %d, skipped: %d, affiliations: %d\n",
		s.Indexed, s.Failed, s.Skipped, s.Affiliations)
	writeMetrics(metrics)
	return nil
}

func init() {
	f := indexCmd.Flags()
	f.Int("workers", 0, "concurrent PDF extractions (default 1)")
	f.String("backend", "", "text extraction backend: reader or pdftotext (default reader)")
	f.String("pdftotext-image", "", "container image for the pdftotext backend")
	f.Bool("dry-run", false, "build the index without writing any file")

	bindLocal(indexCmd, map[string]string{
		"index.workers":         "workers",
		"index.backend":         "backend",
		"index.pdftotext_image": "pdftotext-image",
	})

	rootCmd.AddCommand(indexCmd)
}
