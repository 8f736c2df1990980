// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts raw text from PDF files with pluggable backends.
// Pages are separated by a form feed on its own line.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soyoung-yu/paper-site/internal/container"
	"github.com/soyoung-yu/paper-site/pkg/types"
)

// PageBreak separates the text of consecutive pages.
const PageBreak = "\n\f\n"

// ErrEmptyText is returned when a document yields no text at all, which
// usually means a scanned PDF without a text layer.
var ErrEmptyText = errors.New("no text extracted")

// Document is the extracted text of one file.
type Document struct {
	Text  string
	Pages int
}

// Extractor pulls raw text out of a document on disk. Implementations open
// and release any parser resources within a single call.
type Extractor interface {
	Extract(ctx context.Context, path string) (Document, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, path string) (Document, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, path string) (Document, error) {
	return f(ctx, path)
}

// New returns the extractor selected by cfg.Backend. The pdftotext backend
// needs a working docker or podman and the configured image.
func New(ctx context.Context, cfg types.IndexConfig) (Extractor, error) {
	switch cfg.Backend {
	case types.BackendReader, "":
		return NewReaderExtractor(), nil
	case types.BackendPdftotext:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewContainerExtractor(ctx, rt, cfg.PdftotextImage)
	default:
		return nil, fmt.Errorf("unknown extraction backend %q", cfg.Backend)
	}
}

// TextFiles wraps next so that .txt files are read verbatim. It lets a
// single document be inspected from text extracted elsewhere.
func TextFiles(next Extractor) Extractor {
	return ExtractorFunc(func(ctx context.Context, path string) (Document, error) {
		if !strings.EqualFold(filepath.Ext(path), ".txt") {
			return next.Extract(ctx, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return Document{}, fmt.Errorf("reading %s: %w", path, err)
		}
		text := string(data)
		if strings.TrimSpace(text) == "" {
			return Document{}, fmt.Errorf("%s: %w", path, ErrEmptyText)
		}
		return Document{Text: text, Pages: strings.Count(text, "\f") + 1}, nil
	})
}
