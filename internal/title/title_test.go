// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package title

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/soyoung-yu/paper-site/internal/rules"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "masthead and author lines",
			raw:  "IFSCC 2025 Congress\nSession 3: Hair\nNovel Method for Evaluating Water Content in Stratum Corneum\nJane Doe1, John Smith2\nAbstract: We propose...",
			want: "Novel Method for Evaluating Water Content in Stratum Corneum",
		},
		{
			name: "title over two lines",
			raw:  "Topic: Skin\n\nEffect of Ceramide Emulsions on\nBarrier Recovery in Dry Skin\nA. Kim; B. Lee\n\nAbstract",
			want: "Effect of Ceramide Emulsions on Barrier Recovery in Dry Skin",
		},
		{
			name: "stops at three lines",
			raw:  "A very long title that keeps going\nacross a second physical line\nand then a third line here\nand a fourth that is dropped",
			want: "A very long title that keeps going across a second physical line and then a third line here",
		},
		{
			name: "terminal punctuation ends title",
			raw:  "Can Peptides Really Reverse Visible Signs of Skin Ageing?\nSecond line that is not part of it",
			want: "Can Peptides Really Reverse Visible Signs of Skin Ageing?",
		},
		{
			name: "glued session number stripped",
			raw:  "12Novel Sunscreen Filters Based on Lignin\nJ. Park1, S. Choi2",
			want: "Novel Sunscreen Filters Based on Lignin",
		},
		{
			name: "lowercase letter and digit inside title",
			raw:  "Topical Delivery of Niacinamide (vitamin b3)\nA. Kim1; B. Lee2\n\nAbstract",
			want: "Topical Delivery of Niacinamide (vitamin b3)",
		},
		{
			name: "title ending in a unit",
			raw:  "Skin Barrier Response to Acidic Cleansers at pH5\nJ. Park1, S. Choi2",
			want: "Skin Barrier Response to Acidic Cleansers at pH5",
		},
		{
			name: "second page ignored",
			raw:  "Short\fA Title That Only Appears on Page Two",
			want: "",
		},
		{
			name: "page delimiter line",
			raw:  "Hydrogel Patches for Under Eye Puffiness\n-- 1 of 8 --\nRunning header",
			want: "Hydrogel Patches for Under Eye Puffiness",
		},
		{
			name: "section header first",
			raw:  "Introduction\nThis paper discusses hair.",
			want: "",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.raw); got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractFallback(t *testing.T) {
	// Every block's candidate looks like an author line, so the first
	// non-masthead line is returned.
	raw := "Poster Session B\n\nSmith, J and Kim, Y present new data\n\nLee, K; Park, H"
	got := Extract(raw)
	want := "Smith, J and Kim, Y present new data"
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtractLengthFloor(t *testing.T) {
	inputs := []string{
		"Short title\nJ. Doe1",
		"IFSCC\nCongress 2025",
		"Hi",
		"1.\n\nAbc",
		"Oral 5\n\nDoe, J",
		"Skin\n\nHair\n\nNails",
		strings.Repeat("x", 14),
	}
	for _, in := range inputs {
		got := Extract(in)
		if got != "" && utf8.RuneCountInString(got) < MinLength {
			t.Errorf("Extract(%q) = %q, shorter than %d runes", in, got, MinLength)
		}
	}
}

func TestBlocks(t *testing.T) {
	got := Blocks("Line one\n  Line two  \n\n\n\nLine three\nThe Abstract starts here")
	if len(got) != 2 {
		t.Fatalf("got %d blocks, want 2: %q", len(got), got)
	}
	if strings.Join(got[0], "|") != "Line one|Line two" {
		t.Errorf("block 0 = %q", got[0])
	}
	if strings.Join(got[1], "|") != "Line three|The" {
		t.Errorf("block 1 = %q", got[1])
	}
}

func TestRuleTables(t *testing.T) {
	tests := []struct {
		set   string
		line  string
		match string
	}{
		{"masthead", "IFSCC 2025 Congress", "conference"},
		{"masthead", "Category: Skin care", "category"},
		{"masthead", "CONFIDENTIAL", "confidential"},
		{"section", "Materials and Methods", "materials"},
		{"section", "Keywords: hair", "keywords"},
		{"author", "jane@example.com", "email"},
		{"author", "Kim, Y and Lee, K", "surname-initial"},
		{"author", "Jane Doe1, John Smith2", "glued-footnote"},
		{"author", "A. Kim1", "glued-footnote"},
		{"author", "Jane Alice Doe 1", "name-footnote"},
		{"author", "* Corresponding author", "corresponding-author"},
	}
	sets := map[string]rules.Set{
		"masthead": Masthead,
		"section":  SectionStop,
		"author":   AuthorClues,
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			r, ok := sets[tt.set].First(tt.line)
			if !ok {
				t.Fatalf("no %s rule matched %q", tt.set, tt.line)
			}
			if r.Name != tt.match {
				t.Errorf("%s rule for %q = %q, want %q", tt.set, tt.line, r.Name, tt.match)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct{ in, want string }{
		{"3Novel Method", "Novel Method"},
		{"12.  Title  Here", "Title Here"},
		{"Plain Title", "Plain Title"},
		{"— Étude des lipides", "Étude des lipides"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := clean(tt.in); got != tt.want {
			t.Errorf("clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
