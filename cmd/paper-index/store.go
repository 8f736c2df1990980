// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soyoung-yu/paper-site/internal/index"
	"github.com/soyoung-yu/paper-site/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the SQLite paper store (ingest, query, export)",
	Long: `Store keeps the search payload in a SQLite database with full-text
search, so papers can be queried with ranking from the command line. Use
subcommands to load the payload, query it, or export it.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Replace the store content with the current search payload",
	RunE:  runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	payload, err := index.LoadPayload(cfg.Paths.SearchIndex)
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	sum, err := s.Ingest(cmd.Context(), payload)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "ingested: %d papers, %d affiliations (replaced %d) into %s\n",
		sum.Papers, sum.Affiliations, sum.Removed, s.Path())
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [query...]",
	Short: "Query the store with full-text search and filters",
	Long: `Query ranks papers whose title or body contains every query term,
weighting title matches above body matches. Without a query, papers
matching the filters are listed in catalog order.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	opts := storeOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --affiliation, or --folder")
	}

	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatStoreResults(results, jsonOutput)
}

func formatStoreResults(results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-24s  %-56s  %-20s  %s\n", "Rank", "ID", "Title", "Folder", "Affiliation")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))
	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-24s  %-56s  %-20s  %s\n",
			i+1, clip(r.ID, 24), clip(r.Title, 56), clip(r.FolderName, 20), strings.Join(r.Affiliation, ", "))
		if r.Snippet != "" {
			fmt.Fprintf(os.Stdout, "      %s\n", strings.Join(strings.Fields(r.Snippet), " "))
		}
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store to YAML or JSON",
	Long: `Export writes the stored papers (or a filtered subset) without their
body text to export.yaml or export.json in the store directory.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := storeOptsFromFlags(cmd, args)
	switch format {
	case "yaml", "":
		if err := s.ExportYAML(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(cfg.Store.Dir, "export.yaml"))
	case "json":
		if err := s.ExportJSON(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(cfg.Store.Dir, "export.json"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	return nil
}

// --- shared helpers ---

func storeOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	aff, _ := cmd.Flags().GetString("affiliation")
	folder, _ := cmd.Flags().GetString("folder")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:       queryText,
		Affiliation: aff,
		Folder:      folder,
		MaxResults:  limit,
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	storeCmd.PersistentFlags().String("store-dir", "", "directory holding papers.db and exports (default index)")
	storeCmd.PersistentFlags().Int("max-results", 0, "default maximum number of query results (default 20)")
	bindFlags(storeCmd.PersistentFlags(), map[string]string{
		"store.dir":         "store-dir",
		"store.max_results": "max-results",
	})

	for _, c := range []*cobra.Command{storeQueryCmd, storeExportCmd} {
		c.Flags().String("query", "", "full-text search query")
		c.Flags().String("affiliation", "", "filter by affiliation")
		c.Flags().String("folder", "", "filter by folder slug")
	}
	storeQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeQueryCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
