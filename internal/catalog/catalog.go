// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads, validates and writes the paper catalog
// (public/papers.json).
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soyoung-yu/paper-site/pkg/types"
)

// ErrDuplicateID is returned when two catalog rows share an id.
var ErrDuplicateID = errors.New("duplicate paper id")

// Load reads and resolves the catalog at path.
func Load(path string) (types.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes catalog JSON and resolves defaults: rows without an id get
// "<folder>-<filename stem>", and duplicate ids are rejected.
func Parse(data []byte) (types.Catalog, error) {
	var cat types.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := Resolve(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// Resolve trims ids and filenames in place, derives missing ids, and
// returns ErrDuplicateID when two rows share an id.
func Resolve(cat types.Catalog) error {
	seen := make(map[string]string)
	for fi := range cat {
		f := &cat[fi]
		for pi := range f.Papers {
			p := &f.Papers[pi]
			p.ID = strings.TrimSpace(p.ID)
			p.Filename = strings.TrimSpace(p.Filename)
			if p.ID == "" {
				p.ID = DeriveID(f.Folder, p.Filename, pi)
			}
			if prev, ok := seen[p.ID]; ok {
				return fmt.Errorf("%w %q in folders %q and %q", ErrDuplicateID, p.ID, prev, f.Folder)
			}
			seen[p.ID] = f.Folder
		}
	}
	return nil
}

// DeriveID builds an id for a row that has none. Rows without a filename
// fall back to their position in the folder.
func DeriveID(folder, filename string, index int) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if stem == "" {
		stem = fmt.Sprintf("%d", index+1)
	}
	return Slugify(folder) + "-" + Slugify(stem)
}

// Clone returns a copy of cat whose folders, papers and affiliation slices
// can be modified without touching the original. Extra fields are shared.
func Clone(cat types.Catalog) types.Catalog {
	if cat == nil {
		return nil
	}
	out := make(types.Catalog, len(cat))
	for i, f := range cat {
		if f.Papers != nil {
			papers := make([]types.CatalogPaper, len(f.Papers))
			for j, p := range f.Papers {
				if p.Affiliation != nil {
					p.Affiliation = append([]string(nil), p.Affiliation...)
				}
				papers[j] = p
			}
			f.Papers = papers
		}
		out[i] = f
	}
	return out
}

// Save writes the catalog to path, replacing it atomically.
func Save(path string, cat types.Catalog) error {
	if cat == nil {
		cat = types.Catalog{}
	}
	return WriteJSON(path, cat)
}

// PDFPath returns the on-disk location of a paper, or "" when the row has no
// filename.
func PDFPath(papersDir string, folder types.Folder, paper types.CatalogPaper) string {
	if paper.Filename == "" {
		return ""
	}
	return filepath.Join(papersDir, folder.Folder, paper.Filename)
}

// Find returns the folder with the given slug.
func Find(cat types.Catalog, slug string) (types.Folder, bool) {
	for _, f := range cat {
		if f.Folder == slug {
			return f, true
		}
	}
	return types.Folder{}, false
}

// WriteJSON encodes v as indented JSON and replaces path atomically: the
// data goes to a temporary file in the same directory, which is then
// renamed over path.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return WriteFileAtomic(path, buf.Bytes())
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it
// into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
