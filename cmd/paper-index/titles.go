// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soyoung-yu/paper-site/internal/catalog"
	"github.com/soyoung-yu/paper-site/internal/observability"
)

var titlesCmd = &cobra.Command{
	Use:   "titles [folder]",
	Short: "Re-extract paper titles into the catalog",
	Long: `Titles reads the first page of every paper (or only those in the given
folder slug) and overwrites the catalog title with the extracted one, even
when nothing plausible is found. A paper whose PDF cannot be read keeps its
previous title. Affiliations are not touched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTitles,
}

func runTitles(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	folder := ""
	if len(args) == 1 {
		folder = args[0]
	}

	metrics := observability.NewMetrics()
	b, _, err := newBuilder(ctx, metrics)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(cfg.Paths.Catalog)
	if err != nil {
		return err
	}

	updated, sum, err := b.RefreshTitles(ctx, cat, folder)
	if err != nil {
		return err
	}
	if err := catalog.Save(cfg.Paths.Catalog, updated); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nupdated: %d, kept: %d, failed: %d, skipped: %d\n",
		sum.Updated, sum.Kept, sum.Failed, sum.Skipped)
	writeMetrics(metrics)
	return nil
}

func init() {
	titlesCmd.Flags().Int("workers", 0, "concurrent PDF extractions (default 1)")
	titlesCmd.Flags().String("backend", "", "text extraction backend: reader or pdftotext")
	bindLocal(titlesCmd, map[string]string{
		"index.workers": "workers",
		"index.backend": "backend",
	})

	rootCmd.AddCommand(titlesCmd)
}
