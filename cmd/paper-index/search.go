// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soyoung-yu/paper-site/internal/index"
	"github.com/soyoung-yu/paper-site/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Filter the search payload like the site does",
	Long: `Search matches a case-insensitive query against the titles and bodies
in the search payload, optionally narrowed by folder slug and affiliation.
Results keep catalog order. With --facets, the affiliation filter options
and their paper counts are listed instead.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	aff, _ := f.GetString("affiliation")
	folder, _ := f.GetString("folder")
	limit, _ := f.GetInt("limit")
	jsonOutput, _ := f.GetBool("json")
	facets, _ := f.GetBool("facets")
	savePath, _ := f.GetString("save")
	loadPath, _ := f.GetString("load")

	payload, err := index.LoadPayload(cfg.Paths.SearchIndex)
	if err != nil {
		return err
	}

	if facets {
		records := payload.Papers
		if folder != "" {
			records = nil
			for _, r := range payload.Papers {
				if r.Folder == folder {
					records = append(records, r)
				}
			}
		}
		search.FormatFacets(search.Facets(records), os.Stdout)
		return nil
	}

	q := search.Query{Text: strings.Join(args, " "), Affiliation: aff, Folder: folder, Limit: limit}
	if loadPath != "" {
		qf, err := search.ReadQueryFile(loadPath)
		if err != nil {
			return err
		}
		q = qf.Query.ToQuery()
	}

	out := search.Run(payload, q)
	if savePath != "" {
		if err := search.WriteQueryFile(savePath, q, out, payload.GeneratedAt); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Query saved to %s\n", savePath)
	}
	if jsonOutput {
		return search.FormatJSON(out, os.Stdout)
	}
	search.FormatTable(out, os.Stdout)
	return nil
}

func init() {
	f := searchCmd.Flags()
	f.String("affiliation", "", "only papers with this affiliation (any spelling)")
	f.String("folder", "", "only papers in this folder slug")
	f.Int("limit", 0, "maximum results (0 = all)")
	f.Bool("json", false, "output results as JSON")
	f.Bool("facets", false, "list affiliation counts instead of papers")
	f.String("save", "", "save the query and its results to a YAML file")
	f.String("load", "", "rerun a query saved with --save")

	rootCmd.AddCommand(searchCmd)
}
