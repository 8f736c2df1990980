// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textnorm canonicalizes raw PDF text and folds strings into
// comparison keys.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const softHyphen = "\u00ad"

var (
	// horizontalSpace matches runs of blanks that are not line breaks. \f is
	// excluded because it marks page boundaries.
	horizontalSpace = regexp.MustCompile(`[\t \p{Zs}]+`)
	spaceAroundLF   = regexp.MustCompile(` ?\n ?`)
	blankRun        = regexp.MustCompile(`\n{3,}`)
	anySpace        = regexp.MustCompile(`\s+`)
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n", softHyphen, "")

// Normalize canonicalizes whitespace in raw extracted text. Line endings
// become \n, soft hyphens are dropped, horizontal whitespace collapses to a
// single space, and three or more line feeds collapse to one blank line.
// Invalid UTF-8 is replaced with U+FFFD first.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := lineEndings.Replace(strings.ToValidUTF8(raw, "\uFFFD"))
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = spaceAroundLF.ReplaceAllString(s, "\n")
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// CollapseSpaces replaces every whitespace run (including line breaks) with
// one space and trims the result.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(anySpace.ReplaceAllString(s, " "))
}

var quoteFolder = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
)

// Fold removes diacritics, straightens curly quotes and lowercases s. The
// result is suitable for accent- and case-insensitive matching.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(quoteFolder.Replace(out))
}

// Key is the normalized identity of an affiliation label: folded, with
// whitespace collapsed. Two labels are the same affiliation iff their keys
// are equal.
func Key(s string) string {
	return CollapseSpaces(Fold(s))
}

// Alnum strips everything except ASCII letters and digits from a key. It is
// how synonym tables are addressed ("L'Oréal" -> "loreal").
func Alnum(key string) string {
	var b strings.Builder
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
