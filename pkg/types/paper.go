// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the catalog, search payload and configuration
// structures shared by the paper-index packages.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Catalog is the ordered folder list that drives both the front-end and the
// index builder (public/papers.json).
type Catalog []Folder

// Folder groups the papers of one session or year directory.
type Folder struct {
	// Folder is the directory slug under the papers root.
	Folder string
	// Name is the display name shown by the front-end.
	Name string
	// Year is optional; the front-end defaults it when absent.
	Year string
	Papers []CatalogPaper
	// Extra holds fields this tool does not interpret. They are written back
	// unchanged.
	Extra map[string]json.RawMessage

	numericYear bool
}

// CatalogPaper is one paper row of the catalog.
type CatalogPaper struct {
	ID       string
	Filename string
	Title    string
	// Affiliation holds canonical labels. Legacy catalogs store a single
	// delimited string; it is split at load time.
	Affiliation []string
	Extra       map[string]json.RawMessage

	// numericID is set when the catalog stored the id as a JSON number.
	numericID bool
}

// PaperCount returns the number of papers across all folders.
func (c Catalog) PaperCount() int {
	n := 0
	for _, f := range c {
		n += len(f.Papers)
	}
	return n
}

// legacyAffSplit matches the delimiters of pre-array affiliation strings.
var legacyAffSplit = regexp.MustCompile(`[,;/|]+`)

// SplitLegacyAffiliation turns a delimited affiliation string into trimmed,
// non-empty parts.
func SplitLegacyAffiliation(s string) []string {
	var out []string
	for _, part := range legacyAffSplit.Split(s, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// UnmarshalJSON decodes a paper row, resolving "filename"/"Filename",
// string-or-array affiliations, and numeric ids once at load time.
func (p *CatalogPaper) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	p.numericID = isNumber(raw["id"])
	if p.ID, err = takeScalar(raw, "id"); err != nil {
		return err
	}
	if p.Filename, err = takeScalar(raw, "filename"); err != nil {
		return err
	}
	legacy, err := takeScalar(raw, "Filename")
	if err != nil {
		return err
	}
	if p.Filename == "" {
		p.Filename = legacy
	}
	if p.Title, err = takeScalar(raw, "title"); err != nil {
		return err
	}

	if v, ok := raw["affiliation"]; ok {
		delete(raw, "affiliation")
		aff, err := decodeAffiliation(v)
		if err != nil {
			return fmt.Errorf("paper %q affiliation: %w", p.ID, err)
		}
		p.Affiliation = aff
	}

	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

// MarshalJSON writes known fields first, then Extra in key order.
func (p CatalogPaper) MarshalJSON() ([]byte, error) {
	aff := p.Affiliation
	if aff == nil {
		aff = []string{}
	}
	fields := []field{{"id", scalar(p.ID, p.numericID)}, {"filename", p.Filename}}
	if p.Title != "" {
		fields = append(fields, field{"title", p.Title})
	}
	fields = append(fields, field{"affiliation", aff})
	return writeObject(fields, p.Extra)
}

// UnmarshalJSON decodes a folder, keeping unknown fields in Extra.
func (f *Folder) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	f.numericYear = isNumber(raw["year"])
	if f.Folder, err = takeScalar(raw, "folder"); err != nil {
		return err
	}
	if f.Name, err = takeScalar(raw, "name"); err != nil {
		return err
	}
	if f.Year, err = takeScalar(raw, "year"); err != nil {
		return err
	}
	if v, ok := raw["papers"]; ok {
		delete(raw, "papers")
		if string(bytes.TrimSpace(v)) != "null" {
			if err := json.Unmarshal(v, &f.Papers); err != nil {
				return fmt.Errorf("folder %q papers: %w", f.Folder, err)
			}
		}
	}

	if len(raw) > 0 {
		f.Extra = raw
	}
	return nil
}

// MarshalJSON writes known fields first, then Extra in key order.
func (f Folder) MarshalJSON() ([]byte, error) {
	papers := f.Papers
	if papers == nil {
		papers = []CatalogPaper{}
	}
	fields := []field{{"folder", f.Folder}, {"name", f.Name}}
	if f.Year != "" {
		fields = append(fields, field{"year", scalar(f.Year, f.numericYear)})
	}
	fields = append(fields, field{"papers", papers})
	return writeObject(fields, f.Extra)
}

type field struct {
	key   string
	value any
}

func writeObject(fields []field, extra map[string]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(i int, key string, value []byte) {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := marshalRaw(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
	}

	for i, f := range fields {
		v, err := marshalRaw(f.value)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s: %w", f.key, err)
		}
		write(i, f.key, v)
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		write(len(fields)+i, k, extra[k])
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalRaw encodes v without escaping &, < and >, which are common in
// organization names.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// takeScalar removes key from raw and returns it as a string. Numbers are
// kept in their literal form; null and absent keys yield "".
func takeScalar(raw map[string]json.RawMessage, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", nil
	}
	delete(raw, key)

	v = bytes.TrimSpace(v)
	switch {
	case len(v) == 0 || string(v) == "null":
		return "", nil
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", fmt.Errorf("field %s: %w", key, err)
		}
		return s, nil
	case v[0] == '-' || (v[0] >= '0' && v[0] <= '9'):
		return string(v), nil
	default:
		return "", fmt.Errorf("field %s: expected string or number, got %s", key, v)
	}
}

func isNumber(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && (v[0] == '-' || (v[0] >= '0' && v[0] <= '9'))
}

// scalar returns s as a raw JSON number when it was loaded as one and is
// still a valid number literal, otherwise as a string.
func scalar(s string, numeric bool) any {
	if numeric {
		var n json.Number
		if json.Unmarshal([]byte(s), &n) == nil {
			return json.RawMessage(s)
		}
	}
	return s
}

func decodeAffiliation(v json.RawMessage) ([]string, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || string(v) == "null" {
		return nil, nil
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return SplitLegacyAffiliation(s), nil
	}
	var list []string
	if err := json.Unmarshal(v, &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list, nil
}

// PaperRecord is one entry of the search payload. Field names follow the
// front-end's expectations.
type PaperRecord struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Filename    string   `json:"filename" yaml:"filename"`
	Folder      string   `json:"folder" yaml:"folder"`
	FolderName  string   `json:"folderName" yaml:"folder_name"`
	Affiliation []string `json:"affiliation" yaml:"affiliation"`
	Text        string   `json:"text" yaml:"text"`
	CharCount   int      `json:"charCount" yaml:"char_count"`
	PageCount   int      `json:"pageCount,omitempty" yaml:"page_count,omitempty"`
}

// SearchIndexPayload is the full-text artifact (public/papers-search.json).
// It is rebuilt from scratch on every run.
type SearchIndexPayload struct {
	GeneratedAt time.Time     `json:"generatedAt" yaml:"generated_at"`
	PaperCount  int           `json:"paperCount" yaml:"paper_count"`
	Papers      []PaperRecord `json:"papers" yaml:"papers"`
}

// AffiliationToken is a normalized affiliation value with its display label.
type AffiliationToken struct {
	// Value is the normalized key used for equality.
	Value string `json:"value"`
	// Label is the human-readable form.
	Label string `json:"label"`
}
