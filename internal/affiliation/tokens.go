// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package affiliation

import (
	"github.com/soyoung-yu/paper-site/internal/textnorm"
	"github.com/soyoung-yu/paper-site/pkg/types"
)

// displayLabels maps a token key to the brand spelling shown to readers.
var displayLabels = map[string]string{
	"cosmax":       "COSMAX",
	"amorepacific": "AMOREPACIFIC",
	"shiseido":     "Shiseido",
	"kolma":        "Kolma",
	"l'oreal":      "L’Oréal",
	"l'occitane":   "L’Occitane",
	"estee lauder": "Estee Lauder",
	"chanel":       "Chanel",
	"lvmh":         "LVMH",
}

// DisplayLabel returns the brand spelling for key, or fallback when the key
// has none.
func DisplayLabel(key, fallback string) string {
	if l, ok := displayLabels[key]; ok {
		return l
	}
	return fallback
}

// Tokens turns affiliation strings into tokens. Each value may itself be a
// legacy list separated by , ; / or |. Tokens are deduplicated by key and
// keep first-seen order.
func Tokens(values []string) []types.AffiliationToken {
	out := []types.AffiliationToken{}
	seen := make(map[string]bool)
	for _, v := range values {
		for _, part := range types.SplitLegacyAffiliation(v) {
			key := textnorm.Key(part)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, types.AffiliationToken{
				Value: key,
				Label: DisplayLabel(key, textnorm.CollapseSpaces(part)),
			})
		}
	}
	return out
}

// TokenKey is the key a filter value is compared by.
func TokenKey(value string) string {
	return textnorm.Key(value)
}
