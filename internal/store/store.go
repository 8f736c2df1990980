// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps the search payload in a SQLite database with an FTS5
// index over titles and bodies, so the catalog can be queried with ranking
// outside the browser. The database is rebuilt from the payload on every
// ingest.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/soyoung-yu/paper-site/internal/affiliation"
	"github.com/soyoung-yu/paper-site/pkg/types"
)

const (
	dbFile     = "papers.db"
	exportFile = "export.yaml"

	defaultMaxResults = 20
)

// Store manages the paper database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// Open opens or creates dir/papers.db and its schema.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, dbFile)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			filename TEXT NOT NULL,
			folder TEXT NOT NULL,
			folder_name TEXT NOT NULL,
			affiliation TEXT NOT NULL,
			body TEXT NOT NULL,
			char_count INTEGER NOT NULL,
			page_count INTEGER NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_folder ON papers(folder)`,
		`CREATE TABLE IF NOT EXISTS paper_affiliations (
			paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			key TEXT NOT NULL,
			label TEXT NOT NULL,
			PRIMARY KEY (paper_id, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_paper_affiliations_key ON paper_affiliations(key)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE papers_fts USING fts5(title, body, content=papers, content_rowid=rowid, tokenize='unicode61 remove_diacritics 2')`,
		`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
			INSERT INTO papers_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
		END`,
		`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
			INSERT INTO papers_fts(papers_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
		END`,
		`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
			INSERT INTO papers_fts(papers_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
			INSERT INTO papers_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from an ingest.
type IngestSummary struct {
	Papers       int
	Affiliations int
	// Removed is the number of papers that were in the store before.
	Removed int
}

// Ingest replaces the store content with payload in one transaction and
// then refreshes export.yaml.
func (s *Store) Ingest(ctx context.Context, payload types.SearchIndexPayload) (IngestSummary, error) {
	var summary IngestSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&summary.Removed); err != nil {
		return summary, fmt.Errorf("counting papers: %w", err)
	}
	for _, stmt := range []string{`DELETE FROM paper_affiliations`, `DELETE FROM papers`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return summary, fmt.Errorf("clearing store: %w", err)
		}
	}

	paperStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (id, title, filename, folder, folder_name, affiliation, body, char_count, page_count, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("preparing insert: %w", err)
	}
	defer paperStmt.Close()

	affStmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO paper_affiliations (paper_id, key, label) VALUES (?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("preparing insert: %w", err)
	}
	defer affStmt.Close()

	for i, rec := range payload.Papers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		aff := rec.Affiliation
		if aff == nil {
			aff = []string{}
		}
		affJSON, err := json.Marshal(aff)
		if err != nil {
			return summary, fmt.Errorf("encoding affiliation of %s: %w", rec.ID, err)
		}
		if _, err := paperStmt.ExecContext(ctx,
			rec.ID, rec.Title, rec.Filename, rec.Folder, rec.FolderName,
			string(affJSON), rec.Text, rec.CharCount, rec.PageCount, i,
		); err != nil {
			return summary, fmt.Errorf("inserting paper %s: %w", rec.ID, err)
		}
		for _, tok := range affiliation.Tokens(aff) {
			if _, err := affStmt.ExecContext(ctx, rec.ID, tok.Value, tok.Label); err != nil {
				return summary, fmt.Errorf("inserting affiliation of %s: %w", rec.ID, err)
			}
			summary.Affiliations++
		}
		summary.Papers++
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('generated_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		payload.GeneratedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return summary, fmt.Errorf("updating metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing ingest: %w", err)
	}

	if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
		return summary, fmt.Errorf("writing export: %w", err)
	}
	return summary, nil
}

// GeneratedAt returns the build time of the last ingested payload, or the
// zero time when nothing has been ingested.
func (s *Store) GeneratedAt(ctx context.Context) (time.Time, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'generated_at'`).Scan(&v)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading metadata: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing generated_at %q: %w", v, err)
	}
	return t, nil
}
