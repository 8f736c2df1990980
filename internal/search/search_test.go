// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soyoung-yu/paper-site/pkg/types"
)

func testPayload() types.SearchIndexPayload {
	return types.SearchIndexPayload{
		GeneratedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PaperCount:  4,
		Papers: []types.PaperRecord{
			{ID: "h1", Title: "Ceramide Emulsions for Dry Scalp", Folder: "hair", FolderName: "Hair",
				Affiliation: []string{"Shiseido", "Kao"}, Text: "We studied ceramide delivery in vivo."},
			{ID: "h2", Title: "Hair Gloss Under Humidity", Folder: "hair", FolderName: "Hair",
				Affiliation: []string{"L'Oreal"}, Text: "Gloss was measured with a goniophotometer.\n\fSecond page about CERAMIDE content."},
			{ID: "s1", Title: "Barrier Recovery", Folder: "skin", FolderName: "Skin",
				Affiliation: []string{"Kao"}, Text: "Transepidermal water loss decreased."},
			{ID: "s2", Title: "", Folder: "skin", FolderName: "Skin", Affiliation: []string{}},
		},
	}
}

// --- Query ---

func TestNormalizeQuery(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Water   Content ", "water content"},
		{"CERAMIDE", "ceramide"},
		{"\t\n", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeQuery(tt.in); got != tt.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQueryIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"empty", Query{}, true},
		{"whitespace text", Query{Text: "   "}, true},
		{"limit only", Query{Limit: 3}, true},
		{"text", Query{Text: "hair"}, false},
		{"affiliation", Query{Affiliation: "Kao"}, false},
		{"folder", Query{Folder: "skin"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Run ---

func TestRun(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"no filter returns all", Query{}, []string{"h1", "h2", "s1", "s2"}},
		{"title match", Query{Text: "barrier"}, []string{"s1"}},
		{"body match in payload order", Query{Text: "  Ceramide "}, []string{"h1", "h2"}},
		{"folder", Query{Folder: "skin"}, []string{"s1", "s2"}},
		{"affiliation by label", Query{Affiliation: "Kao"}, []string{"h1", "s1"}},
		{"affiliation by accented spelling", Query{Affiliation: "L’Oréal"}, []string{"h2"}},
		{"affiliation and folder", Query{Affiliation: "kao", Folder: "hair"}, []string{"h1"}},
		{"text and affiliation", Query{Text: "water", Affiliation: "Kao"}, []string{"s1"}},
		{"limit", Query{Limit: 2}, []string{"h1", "h2"}},
		{"no match", Query{Text: "sunscreen"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Run(testPayload(), tt.query)
			got := make([]string, 0, len(out.Hits))
			for _, h := range out.Hits {
				got = append(got, h.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Run(%+v) ids = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestRunMatchedInAndSnippet(t *testing.T) {
	out := Run(testPayload(), Query{Text: "ceramide"})
	if len(out.Hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(out.Hits))
	}
	if out.Hits[0].MatchedIn != MatchTitle || out.Hits[0].Snippet != "" {
		t.Errorf("h1 matched in %q with snippet %q, want title match", out.Hits[0].MatchedIn, out.Hits[0].Snippet)
	}
	h2 := out.Hits[1]
	if h2.MatchedIn != MatchText {
		t.Errorf("h2 matched in %q, want %q", h2.MatchedIn, MatchText)
	}
	if !strings.Contains(h2.Snippet, "CERAMIDE") {
		t.Errorf("snippet %q does not contain the match", h2.Snippet)
	}
	if strings.ContainsAny(h2.Snippet, "\n\f") {
		t.Errorf("snippet %q spans lines", h2.Snippet)
	}
}

func TestRunLimitCountsTotal(t *testing.T) {
	out := Run(testPayload(), Query{Limit: 1})
	if out.Total != 4 || out.Scanned != 4 || len(out.Hits) != 1 {
		t.Errorf("Total=%d Scanned=%d hits=%d, want 4, 4, 1", out.Total, out.Scanned, len(out.Hits))
	}
}

func TestSnippet(t *testing.T) {
	body := strings.Repeat("a", 100) + " needle " + strings.Repeat("b", 100)
	got, ok := snippet(body, "needle")
	if !ok {
		t.Fatal("snippet not found")
	}
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Errorf("snippet %q is not elided on both sides", got)
	}
	if _, ok := snippet("short", "needle"); ok {
		t.Error("snippet found a missing needle")
	}
	if got, _ := snippet("needle", "needle"); got != "needle" {
		t.Errorf("snippet = %q, want %q", got, "needle")
	}
}

// --- Facets ---

func TestFacets(t *testing.T) {
	got := Facets(testPayload().Papers)
	want := []Facet{
		{Value: "kao", Label: "Kao", Count: 2},
		{Value: "l'oreal", Label: "L’Oréal", Count: 1},
		{Value: "shiseido", Label: "Shiseido", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d facets, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("facet %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFacetsCountPaperOnce(t *testing.T) {
	got := Facets([]types.PaperRecord{{Affiliation: []string{"Kao", "KAO", "kao, Chanel"}}})
	if len(got) != 2 || got[0].Count != 1 || got[1].Count != 1 {
		t.Errorf("Facets = %+v, want two facets counted once", got)
	}
}

func TestFacetsEmpty(t *testing.T) {
	if got := Facets(nil); got == nil || len(got) != 0 {
		t.Errorf("Facets(nil) = %#v, want empty slice", got)
	}
}

// --- Output ---

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Run(testPayload(), Query{Text: "ceramide", Limit: 1}), &buf)
	out := buf.String()
	for _, want := range []string{"h1", "Ceramide Emulsions", "Shiseido, Kao", "1 of 4 papers", "1 more not shown"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	FormatTable(Output{}, &buf)
	if !strings.Contains(buf.String(), "No papers found") {
		t.Errorf("empty table = %q", buf.String())
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatJSON(Run(testPayload(), Query{Affiliation: "L'Oreal"}), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "L'Oreal") {
		t.Errorf("JSON escaped the apostrophe: %s", buf.String())
	}
	var hits []Hit
	if err := json.Unmarshal(buf.Bytes(), &hits); err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "h2" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")
	q := Query{Text: "ceramide", Folder: "hair", Limit: 5}
	payload := testPayload()
	out := Run(payload, q)
	if err := WriteQueryFile(path, q, out, payload.GeneratedAt); err != nil {
		t.Fatal(err)
	}

	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if qf.Query.ToQuery() != q {
		t.Errorf("query = %+v, want %+v", qf.Query.ToQuery(), q)
	}
	if len(qf.Hits) != 2 || qf.Summary.Total != 2 || qf.Summary.Scanned != 4 {
		t.Errorf("hits=%d total=%d scanned=%d", len(qf.Hits), qf.Summary.Total, qf.Summary.Scanned)
	}
	if !qf.Summary.GeneratedAt.Equal(payload.GeneratedAt) {
		t.Errorf("generated_at = %v", qf.Summary.GeneratedAt)
	}
	if len(qf.Facets) == 0 {
		t.Error("facets not saved")
	}
}

func TestReadQueryFileMissing(t *testing.T) {
	if _, err := ReadQueryFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
