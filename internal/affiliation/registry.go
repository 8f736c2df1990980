// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package affiliation resolves free-text organization names in paper headers
// to labels from a controlled vocabulary.
//
// A Registry is built once per run from the vocabulary file and is
// read-only afterwards; it is passed explicitly to every Extractor.
package affiliation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/soyoung-yu/paper-site/internal/textnorm"
)

// ErrEmptyVocabulary is returned when a vocabulary holds no names.
var ErrEmptyVocabulary = errors.New("vocabulary contains no names")

// CanonicalAffiliation is one vocabulary entry and the patterns that
// identify it in folded text.
type CanonicalAffiliation struct {
	Label   string
	Aliases []*regexp.Regexp
	key     string
}

// Matches reports whether any alias occurs in folded text.
func (c CanonicalAffiliation) Matches(folded string) bool {
	for _, re := range c.Aliases {
		if re.MatchString(folded) {
			return true
		}
	}
	return false
}

// Registry is the immutable set of canonical affiliations for a run.
type Registry struct {
	entries []CanonicalAffiliation
}

// NewRegistry builds matchers for names in the given order. Blank names are
// ignored and names whose key repeats an earlier one are dropped, so labels
// are unique by textnorm.Key.
func NewRegistry(names []string, synonyms Synonyms) *Registry {
	reg := &Registry{}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		label := strings.TrimSpace(name)
		key := textnorm.Key(label)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		entry := CanonicalAffiliation{Label: label, key: key}
		for _, alias := range append([]string{label}, synonyms.For(label)...) {
			if re := aliasPattern(alias); re != nil {
				entry.Aliases = append(entry.Aliases, re)
			}
		}
		reg.entries = append(reg.entries, entry)
	}
	return reg
}

// LoadRegistry reads a vocabulary file and builds a Registry. A missing,
// unreadable, or empty vocabulary is an error.
func LoadRegistry(path string, synonyms Synonyms) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary: %w", err)
	}
	defer f.Close()

	names, err := ParseVocabulary(f)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyVocabulary)
	}
	return NewRegistry(names, synonyms), nil
}

// ParseVocabulary returns the trimmed, non-blank lines of r.
func ParseVocabulary(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, sc.Err()
}

// Len returns the number of canonical affiliations.
func (r *Registry) Len() int { return len(r.entries) }

// Labels returns the canonical labels in registry order.
func (r *Registry) Labels() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Label
	}
	return out
}

// Match returns every canonical label with an alias occurring anywhere in
// text, in registry order. It never fails; no match yields an empty slice.
func (r *Registry) Match(text string) []string {
	out := []string{}
	if text == "" {
		return out
	}
	folded := textnorm.Fold(text)
	for _, e := range r.entries {
		if e.Matches(folded) {
			out = append(out, e.Label)
		}
	}
	return out
}

// MatchAll matches each entry in turn and returns the labels deduplicated
// by key, in first-matched order.
func (r *Registry) MatchAll(entries []string) []string {
	var all []string
	for _, entry := range entries {
		all = append(all, r.Match(entry)...)
	}
	return UniqueLabels(all)
}

// UniqueLabels drops labels whose textnorm.Key was already seen. The first
// occurrence keeps its position.
func UniqueLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		k := textnorm.Key(l)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, l)
	}
	return out
}

var ampersand = regexp.MustCompile(`\s*&\s*`)

// aliasPattern compiles an alias into a case-insensitive pattern over folded
// text. Runs of spaces and hyphens match any run of spaces and hyphens, "&"
// tolerates surrounding whitespace, and word boundaries are asserted only on
// edges that are ASCII word characters.
func aliasPattern(alias string) *regexp.Regexp {
	a := ampersand.ReplaceAllString(textnorm.Key(alias), "&")
	if a == "" {
		return nil
	}

	var b strings.Builder
	b.WriteString("(?i)")
	rs := []rune(a)
	if isWordRune(rs[0]) {
		b.WriteString(`\b`)
	}
	for i := 0; i < len(rs); {
		switch r := rs[i]; {
		case r == ' ' || r == '-':
			for i < len(rs) && (rs[i] == ' ' || rs[i] == '-') {
				i++
			}
			b.WriteString(`[\s\-]+`)
			continue
		case r == '&':
			b.WriteString(`\s*&\s*`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
		i++
	}
	if isWordRune(rs[len(rs)-1]) {
		b.WriteString(`\b`)
	}
	return regexp.MustCompile(b.String())
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
