// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package title picks the most plausible title from the first page of a
// paper's extracted text.
package title

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/soyoung-yu/paper-site/internal/rules"
	"github.com/soyoung-yu/paper-site/internal/textnorm"
)

const (
	// MinLength is the shortest title, in runes, Extract will return.
	MinLength = 15
	// MaxLines bounds the physical lines joined into one title.
	MaxLines = 3
	// terminalLength is the length past which terminal punctuation ends a
	// title.
	terminalLength = 40
)

// Masthead lines name the conference, session, or track rather than the paper.
var Masthead = rules.Set{
	rules.New("conference", `(?i)ifscc`),
	rules.New("congress", `(?i)congress`),
	rules.New("confidential", `(?i)confidential`),
	rules.New("internal-use", `(?i)internal use`),
	rules.New("topic", `(?i)^topic\b`),
	rules.New("session", `(?i)^session\b`),
	rules.New("category", `(?i)^category\b`),
	rules.New("track", `(?i)^track\b`),
	rules.New("event", `(?i)^event\b`),
	rules.New("presentation", `(?i)^presentation\b`),
	rules.New("chair", `(?i)^chair\b`),
	rules.New("moderator", `(?i)^moderator\b`),
	rules.New("poster", `(?i)^poster\b`),
	rules.New("oral", `(?i)^oral\b`),
	rules.New("speaker", `(?i)^speaker\b`),
	rules.New("venue", `(?i)^venue\b`),
}

// SectionStop lines open the body of the paper.
var SectionStop = rules.Set{
	rules.New("abstract", `(?i)^abstract\b`),
	rules.New("introduction", `(?i)^introduction\b`),
	rules.New("background", `(?i)^background\b`),
	rules.New("materials", `(?i)^materials?\b`),
	rules.New("methods", `(?i)^methods?\b`),
	rules.New("results", `(?i)^results?\b`),
	rules.New("discussion", `(?i)^discussion\b`),
	rules.New("conclusion", `(?i)^conclusions?\b`),
	rules.New("keywords", `(?i)^keywords?\b`),
	rules.New("authors", `(?i)^authors?\b`),
}

// AuthorClues mark author or affiliation lines.
var AuthorClues = rules.Set{
	rules.New("email", `@`),
	rules.New("semicolon-capital", `;\s*[A-Z]`),
	rules.New("surname-initial", `\b[A-Z][a-z]+,\s*[A-Z]`),
	rules.New("footnote-number", `\b\d+\s*(?:;|,|\*|\))`),
	rules.New("name-footnote", `\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){2,}\s*\d`),
	rules.New("glued-footnote", `\b\p{Lu}\p{Ll}+\d{1,2}(?:\s*[,;*]|\s*$)`),
	rules.New("corresponding-author", `(?i)corresponding author`),
}

var (
	abstractWord = regexp.MustCompile(`(?i)\babstract\b`)
	blockBreak   = regexp.MustCompile(`\n\s*\n`)
	terminal     = regexp.MustCompile(`[.!?]"?$`)
)

// Extract returns the title of a paper from its raw text, or "" when no
// plausible title is found. A non-empty result is at least MinLength runes.
func Extract(raw string) string {
	blocks := Blocks(raw)
	for _, block := range blocks {
		if c := collect(block); acceptable(c) {
			return c
		}
	}
	return fallback(blocks)
}

// Blocks returns the trimmed, non-empty lines of each blank-line separated
// block on the first page, before the word "abstract".
func Blocks(raw string) [][]string {
	text := FirstPage(textnorm.Normalize(raw))
	if loc := abstractWord.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	var blocks [][]string
	for _, chunk := range blockBreak.Split(text, -1) {
		var lines []string
		for _, l := range strings.Split(chunk, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
		if len(lines) > 0 {
			blocks = append(blocks, lines)
		}
	}
	return blocks
}

// FirstPage returns normalized text up to the first page break.
func FirstPage(text string) string {
	text, _, _ = strings.Cut(text, "\f")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if rules.PageDelimiter.Match(strings.TrimSpace(l)) {
			return strings.Join(lines[:i], "\n")
		}
	}
	return text
}

func collect(lines []string) string {
	var parts []string
	for _, line := range lines {
		if len(parts) == 0 && Masthead.Any(line) {
			continue
		}
		if SectionStop.Any(line) {
			break
		}
		if len(parts) > 0 && AuthorClues.Any(line) {
			break
		}
		parts = append(parts, textnorm.CollapseSpaces(line))

		joined := strings.Join(parts, " ")
		if terminal.MatchString(joined) && utf8.RuneCountInString(joined) > terminalLength {
			break
		}
		if len(parts) >= MaxLines {
			break
		}
	}
	return clean(strings.Join(parts, " "))
}

func acceptable(candidate string) bool {
	return utf8.RuneCountInString(candidate) >= MinLength && !AuthorClues.Any(candidate)
}

func fallback(blocks [][]string) string {
	for _, block := range blocks {
		for _, line := range block {
			if Masthead.Any(line) {
				continue
			}
			if c := clean(line); utf8.RuneCountInString(c) >= MinLength {
				return c
			}
			return ""
		}
	}
	if len(blocks) > 0 {
		if c := clean(blocks[0][0]); utf8.RuneCountInString(c) >= MinLength {
			return c
		}
	}
	return ""
}

// clean collapses whitespace and drops leading numbering noise such as a
// session number glued to the title ("3Novel ..." -> "Novel ...").
func clean(s string) string {
	s = textnorm.CollapseSpaces(s)
	cut := 0
	for i, r := range s {
		if unicode.IsLetter(r) {
			cut = i
			break
		}
		if i > 0 && unicode.IsDigit(r) {
			cut = i
		}
	}
	return s[cut:]
}
