// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// Export is the document written by ExportYAML and ExportJSON.
type Export struct {
	GeneratedAt string        `json:"generated_at" yaml:"generated_at"`
	Papers      []QueryResult `json:"papers" yaml:"papers"`
}

const exportLimit = 1000000

// ExportYAML writes the papers matching opts to dir/export.yaml.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	doc, err := s.export(ctx, opts)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, exportFile), data, 0o644)
}

// ExportJSON writes the papers matching opts to dir/export.json.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	doc, err := s.export(ctx, opts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, "export.json"), data, 0o644)
}

func (s *Store) export(ctx context.Context, opts QueryOptions) (Export, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	doc := Export{Papers: results}
	generated, err := s.GeneratedAt(ctx)
	if err != nil {
		return Export{}, err
	}
	if !generated.IsZero() {
		doc.GeneratedAt = generated.Format(time.RFC3339)
	}
	return doc, nil
}
