// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search filters the search payload the way the site does: a
// case-insensitive substring match on title or body, optionally narrowed to
// one folder and one affiliation token.
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/soyoung-yu/paper-site/internal/affiliation"
	"github.com/soyoung-yu/paper-site/internal/textnorm"
	"github.com/soyoung-yu/paper-site/pkg/types"
)

// snippetRadius is the number of runes kept on each side of a body match.
const snippetRadius = 60

// Query holds the filter parameters.
type Query struct {
	// Text is matched against titles and bodies after NormalizeQuery.
	Text string
	// Affiliation is a token value or any spelling of one.
	Affiliation string
	// Folder restricts results to one folder slug.
	Folder string
	// Limit caps the number of hits; 0 means no limit.
	Limit int
}

// IsEmpty reports whether the query filters nothing.
func (q Query) IsEmpty() bool {
	return NormalizeQuery(q.Text) == "" && strings.TrimSpace(q.Affiliation) == "" && q.Folder == ""
}

// Where a text query matched.
const (
	MatchTitle = "title"
	MatchText  = "text"
)

// Hit is one matching paper.
type Hit struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Folder      string   `json:"folder" yaml:"folder"`
	FolderName  string   `json:"folderName" yaml:"folder_name"`
	Filename    string   `json:"filename" yaml:"filename"`
	Affiliation []string `json:"affiliation" yaml:"affiliation"`
	// MatchedIn is "title", "text", or empty when no text query was given.
	MatchedIn string `json:"matchedIn,omitempty" yaml:"matched_in,omitempty"`
	// Snippet surrounds the first body match.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// Output holds the hits and how many papers were considered.
type Output struct {
	Hits    []Hit
	Scanned int
	// Total counts matches before Limit was applied.
	Total int
}

// NormalizeQuery lowercases s, trims it and collapses inner whitespace.
func NormalizeQuery(s string) string {
	return strings.ToLower(textnorm.CollapseSpaces(s))
}

// Run filters payload with q. Hits keep payload order.
func Run(payload types.SearchIndexPayload, q Query) Output {
	needle := NormalizeQuery(q.Text)
	affKey := ""
	if a := strings.TrimSpace(q.Affiliation); a != "" {
		affKey = affiliation.TokenKey(a)
	}

	out := Output{Hits: []Hit{}, Scanned: len(payload.Papers)}
	for _, rec := range payload.Papers {
		if q.Folder != "" && rec.Folder != q.Folder {
			continue
		}
		if affKey != "" && !hasToken(rec.Affiliation, affKey) {
			continue
		}
		hit := Hit{
			ID:          rec.ID,
			Title:       rec.Title,
			Folder:      rec.Folder,
			FolderName:  rec.FolderName,
			Filename:    rec.Filename,
			Affiliation: rec.Affiliation,
		}
		if needle != "" {
			switch {
			case strings.Contains(strings.ToLower(rec.Title), needle):
				hit.MatchedIn = MatchTitle
			default:
				snip, ok := snippet(rec.Text, needle)
				if !ok {
					continue
				}
				hit.MatchedIn = MatchText
				hit.Snippet = snip
			}
		}
		out.Total++
		if q.Limit > 0 && len(out.Hits) >= q.Limit {
			continue
		}
		out.Hits = append(out.Hits, hit)
	}
	return out
}

func hasToken(values []string, key string) bool {
	for _, t := range affiliation.Tokens(values) {
		if t.Value == key {
			return true
		}
	}
	return false
}

// snippet finds needle in the lowercased body and returns the surrounding
// text on one line.
func snippet(body, needle string) (string, bool) {
	lower := strings.ToLower(body)
	i := strings.Index(lower, needle)
	if i < 0 {
		return "", false
	}
	// Lowercasing can change byte lengths; fall back to the lowered text
	// when offsets no longer line up.
	src := body
	if len(lower) != len(body) {
		src = lower
	}
	start, end := i, i+len(needle)
	for n := 0; n < snippetRadius && start > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(src[:start])
		start -= size
	}
	for n := 0; n < snippetRadius && end < len(src); n++ {
		_, size := utf8.DecodeRuneInString(src[end:])
		end += size
	}
	s := textnorm.CollapseSpaces(strings.ReplaceAll(src[start:end], "\f", " "))
	if start > 0 {
		s = "..." + s
	}
	if end < len(src) {
		s += "..."
	}
	return s, true
}

// FormatTable writes hits as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Hits) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-24s  %-56s  %-24s  %s\n", "#", "ID", "Title", "Folder", "Affiliation")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for i, h := range out.Hits {
		fmt.Fprintf(w, "%-4d  %-24s  %-56s  %-24s  %s\n",
			i+1, truncate(h.ID, 24), truncate(h.Title, 56), truncate(h.FolderName, 24), strings.Join(h.Affiliation, ", "))
		if h.Snippet != "" {
			fmt.Fprintf(w, "      %s\n", h.Snippet)
		}
	}

	fmt.Fprintf(w, "\n%d of %d papers", len(out.Hits), out.Scanned)
	if out.Total > len(out.Hits) {
		fmt.Fprintf(w, " (%d more not shown)", out.Total-len(out.Hits))
	}
	fmt.Fprintln(w)
}

// FormatJSON writes hits as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Hits)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
