// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rules holds named regular-expression predicates used by the
// heuristic extractors. Each table is an ordered Set so a single rule can be
// tested in isolation and a match can report which rule fired.
package rules

import (
	"regexp"
	"strings"
)

// Rule is one named line predicate.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// New compiles expr into a Rule. It panics on an invalid expression, so it
// is meant for package-level tables.
func New(name, expr string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(expr)}
}

// Match reports whether the rule matches s.
func (r Rule) Match(s string) bool {
	return r.Pattern.MatchString(s)
}

// Set is an ordered list of rules evaluated first to last.
type Set []Rule

// Any reports whether at least one rule matches s.
func (s Set) Any(text string) bool {
	_, ok := s.First(text)
	return ok
}

// First returns the first rule that matches text.
func (s Set) First(text string) (Rule, bool) {
	for _, r := range s {
		if r.Match(text) {
			return r, true
		}
	}
	return Rule{}, false
}

// Get returns the rule with the given name.
func (s Set) Get(name string) (Rule, bool) {
	for _, r := range s {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// PageDelimiter matches the page separator line some extractors emit
// between pages ("-- 2 of 7 --").
var PageDelimiter = New("page-delimiter", `(?i)^--\s*\d+\s+of\s+\d+\s*--$`)

// IsPageBreak reports whether a raw line marks a page boundary, either a
// form feed or a delimiter line.
func IsPageBreak(line string) bool {
	if strings.ContainsRune(line, '\f') {
		return true
	}
	return PageDelimiter.Match(strings.TrimSpace(line))
}
