// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReaderExtractor parses PDFs in-process with github.com/ledongthuc/pdf.
type ReaderExtractor struct {
	// MaxPages limits how many pages are read; zero reads all.
	MaxPages int
}

// NewReaderExtractor returns an extractor that reads every page.
func NewReaderExtractor() *ReaderExtractor {
	return &ReaderExtractor{}
}

// Extract reads the plain text of each page. Pages whose text cannot be
// decoded are left empty. The parser panics on some malformed files; the
// panic is returned as an error.
func (r *ReaderExtractor) Extract(ctx context.Context, path string) (doc Document, err error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	defer func() {
		if p := recover(); p != nil {
			doc, err = Document{}, fmt.Errorf("parsing %s: %v", path, p)
		}
	}()

	f, rd, err := pdf.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	n := rd.NumPage()
	if r.MaxPages > 0 && n > r.MaxPages {
		n = r.MaxPages
	}

	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		page := rd.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		pages = append(pages, text)
	}

	text := strings.Join(pages, PageBreak)
	if strings.TrimSpace(strings.ReplaceAll(text, "\f", "")) == "" {
		return Document{}, fmt.Errorf("%s: %w", path, ErrEmptyText)
	}
	return Document{Text: text, Pages: rd.NumPage()}, nil
}
