// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// QueryFile is a saved search: the query, the hits it returned, and the
// facets of those hits. It lets a result list be shared or diffed between
// index runs.
type QueryFile struct {
	Query   QueryParams  `yaml:"query"`
	Hits    []Hit        `yaml:"hits"`
	Facets  []Facet      `yaml:"facets,omitempty"`
	Summary QuerySummary `yaml:"summary"`
}

// QueryParams stores the query in a serializable form.
type QueryParams struct {
	Text        string `yaml:"text,omitempty"`
	Affiliation string `yaml:"affiliation,omitempty"`
	Folder      string `yaml:"folder,omitempty"`
	Limit       int    `yaml:"limit,omitempty"`
}

// QuerySummary stores result counts and when the payload was built.
type QuerySummary struct {
	Scanned     int       `yaml:"scanned"`
	Total       int       `yaml:"total"`
	GeneratedAt time.Time `yaml:"generated_at"`
	SavedAt     time.Time `yaml:"saved_at"`
}

// WriteQueryFile saves a query and its output to a YAML file.
func WriteQueryFile(path string, q Query, out Output, generatedAt time.Time) error {
	qf := QueryFile{
		Query: QueryParams{
			Text:        q.Text,
			Affiliation: q.Affiliation,
			Folder:      q.Folder,
			Limit:       q.Limit,
		},
		Hits:   out.Hits,
		Facets: hitFacets(out.Hits),
		Summary: QuerySummary{
			Scanned:     out.Scanned,
			Total:       out.Total,
			GeneratedAt: generatedAt,
			SavedAt:     time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// ToQuery converts stored parameters back into a Query.
func (p QueryParams) ToQuery() Query {
	return Query{Text: p.Text, Affiliation: p.Affiliation, Folder: p.Folder, Limit: p.Limit}
}
