// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/soyoung-yu/paper-site/internal/affiliation"
	"github.com/soyoung-yu/paper-site/pkg/types"
)

// Facet is one affiliation filter option.
type Facet struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Facets counts papers per affiliation token. A paper counts once per
// token. Facets are ordered by count, then by label.
func Facets(records []types.PaperRecord) []Facet {
	index := make(map[string]int)
	out := []Facet{}
	for _, rec := range records {
		for _, tok := range affiliation.Tokens(rec.Affiliation) {
			if i, ok := index[tok.Value]; ok {
				out[i].Count++
				continue
			}
			index[tok.Value] = len(out)
			out = append(out, Facet{Value: tok.Value, Label: tok.Label, Count: 1})
		}
	}

	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return col.CompareString(out[i].Label, out[j].Label) < 0
	})
	return out
}

func hitFacets(hits []Hit) []Facet {
	records := make([]types.PaperRecord, len(hits))
	for i, h := range hits {
		records[i] = types.PaperRecord{Affiliation: h.Affiliation}
	}
	return Facets(records)
}

// FormatFacets writes one "Label (count)" line per facet.
func FormatFacets(facets []Facet, w io.Writer) {
	if len(facets) == 0 {
		fmt.Fprintln(w, "No affiliations recorded.")
		return
	}
	for _, f := range facets {
		fmt.Fprintf(w, "%-40s %4d  %s\n", f.Label, f.Count, f.Value)
	}
}
