// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soyoung-yu/paper-site/internal/affiliation"
)

// QueryOptions holds parameters for store queries.
type QueryOptions struct {
	// Query is matched against titles and bodies. Each whitespace-separated
	// term must appear; terms are quoted, so FTS5 operators are not
	// interpreted.
	Query string

	// Affiliation filters by token; any spelling of a label works.
	Affiliation string

	// Folder filters by folder slug.
	Folder string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return strings.TrimSpace(q.Query) == "" && strings.TrimSpace(q.Affiliation) == "" && q.Folder == ""
}

// QueryResult is one paper returned by Retrieve. Body text is not loaded.
type QueryResult struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Filename    string   `json:"filename" yaml:"filename"`
	Folder      string   `json:"folder" yaml:"folder"`
	FolderName  string   `json:"folder_name" yaml:"folder_name"`
	Affiliation []string `json:"affiliation" yaml:"affiliation"`
	CharCount   int      `json:"char_count" yaml:"char_count"`
	PageCount   int      `json:"page_count,omitempty" yaml:"page_count,omitempty"`
	// Rank is the bm25 score of a full-text match; lower is better.
	Rank float64 `json:"rank,omitempty" yaml:"rank,omitempty"`
	// Snippet highlights the matched body terms with [ and ].
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// Retrieve queries the store. Full-text queries are ranked by bm25 with
// title matches weighted above body matches; filter-only queries list
// papers in catalog order.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		match  = ftsQuery(opts.Query)
		useFTS = match != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT p.id, p.title, p.filename, p.folder, p.folder_name, p.affiliation,
				p.char_count, p.page_count,
				bm25(papers_fts, 10.0, 1.0) AS score,
				snippet(papers_fts, 1, '[', ']', '...', 12)
			FROM papers_fts
			JOIN papers p ON p.rowid = papers_fts.rowid
			WHERE papers_fts MATCH ?`)
		args = append(args, match)
	} else {
		qb.WriteString(
			`SELECT p.id, p.title, p.filename, p.folder, p.folder_name, p.affiliation,
				p.char_count, p.page_count, 0 AS score, '' AS snippet
			FROM papers p
			WHERE 1=1`)
	}

	if opts.Folder != "" {
		qb.WriteString(` AND p.folder = ?`)
		args = append(args, opts.Folder)
	}

	if a := strings.TrimSpace(opts.Affiliation); a != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM paper_affiliations pa WHERE pa.paper_id = p.id AND pa.key = ?)`)
		args = append(args, affiliation.TokenKey(a))
	}

	if useFTS {
		qb.WriteString(` ORDER BY score, p.position`)
	} else {
		qb.WriteString(` ORDER BY p.position`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying store: %w", err)
	}
	defer rows.Close()

	results := []QueryResult{}
	for rows.Next() {
		var (
			qr      QueryResult
			affJSON string
			snippet sql.NullString
		)
		if err := rows.Scan(
			&qr.ID, &qr.Title, &qr.Filename, &qr.Folder, &qr.FolderName, &affJSON,
			&qr.CharCount, &qr.PageCount, &qr.Rank, &snippet,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal([]byte(affJSON), &qr.Affiliation); err != nil {
			return nil, fmt.Errorf("decoding affiliation of %s: %w", qr.ID, err)
		}
		qr.Snippet = snippet.String
		results = append(results, qr)
	}
	return results, rows.Err()
}

// ftsQuery quotes every term of q so user input is always a valid FTS5
// expression. Adjacent quoted strings are ANDed.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// Count returns the number of papers in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}
