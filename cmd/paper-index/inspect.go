// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/soyoung-yu/paper-site/internal/affiliation"
	"github.com/soyoung-yu/paper-site/internal/pdftext"
	"github.com/soyoung-yu/paper-site/internal/textnorm"
	"github.com/soyoung-yu/paper-site/internal/title"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show what the indexer finds in one PDF or text file",
	Long: `Inspect runs title and affiliation extraction on a single document and
prints the result of each affiliation strategy, which helps when tuning the
vocabulary or synonyms. A .txt file is read as already-extracted text.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

// inspection is the JSON form of an inspect run.
type inspection struct {
	Path         string             `json:"path"`
	Pages        int                `json:"pages"`
	Chars        int                `json:"chars"`
	Title        string             `json:"title"`
	Affiliations affiliation.Detail `json:"affiliations"`
	Header       string             `json:"header"`
	Text         string             `json:"text,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]
	showText, _ := cmd.Flags().GetBool("text")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	ex, err := pdftext.New(ctx, cfg.Index)
	if err != nil {
		return err
	}
	doc, err := pdftext.TextFiles(ex).Extract(ctx, path)
	if err != nil {
		return err
	}

	text := textnorm.Normalize(doc.Text)
	in := inspection{
		Path:         path,
		Pages:        doc.Pages,
		Chars:        utf8.RuneCountInString(text),
		Title:        title.Extract(text),
		Affiliations: affiliation.NewExtractor(reg).ExtractDetailed(text),
		Header:       affiliation.HeaderText(strings.Split(text, "\n")),
	}
	if showText {
		in.Text = text
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(in)
	}

	w := os.Stdout
	fmt.Fprintf(w, "File:         %s\n", in.Path)
	fmt.Fprintf(w, "Pages:        %d\n", in.Pages)
	fmt.Fprintf(w, "Characters:   %d\n", in.Chars)
	fmt.Fprintf(w, "Title:        %s\n", in.Title)
	fmt.Fprintf(w, "Affiliations: %s\n", strings.Join(in.Affiliations.Labels, ", "))
	for _, s := range in.Affiliations.Strategies {
		fmt.Fprintf(w, "  %-10s %s\n", s.Name+":", strings.Join(s.Labels, ", "))
	}
	fmt.Fprintf(w, "\nHeader:\n%s\n", in.Header)
	if showText {
		fmt.Fprintf(w, "\nText:\n%s\n", in.Text)
	}
	return nil
}

func init() {
	inspectCmd.Flags().Bool("text", false, "also print the normalized text")
	inspectCmd.Flags().Bool("json", false, "output as JSON")
	inspectCmd.Flags().String("backend", "", "text extraction backend: reader or pdftotext")
	bindLocal(inspectCmd, map[string]string{"index.backend": "backend"})

	rootCmd.AddCommand(inspectCmd)
}
