// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package affiliation

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/soyoung-yu/paper-site/internal/textnorm"
)

// Synonyms maps the stripped-alphanumeric key of a canonical name
// (textnorm.Alnum(textnorm.Key(label))) to extra spellings of the same
// organization.
type Synonyms map[string][]string

// defaultSynonyms covers groups known under several legal or brand names.
var defaultSynonyms = Synonyms{
	"loreal":       {"l'oreal", "loreal", "loreal usa", "loreal research and innovation", "loreal r&i"},
	"kolma":        {"kolma", "kolmar", "kolmar korea", "kolmar laboratories"},
	"cosmax":       {"cosmax", "cosmax bti", "cosmax usa", "cosmax china"},
	"amorepacific": {"amorepacific", "amore pacific", "amorepacific r&i center"},
	"lg":           {"lg", "lg h&h", "lg household", "lg household & health care", "lg household and health care"},
	"chanel":       {"chanel"},
	"pola":         {"pola", "pola orbis"},
	"pg":           {"p&g", "procter & gamble", "procter and gamble", "proctor & gamble", "proctor and gamble"},
	"kao":          {"kao"},
	"lvmh":         {"lvmh"},
	"esteelauder":  {"estee lauder", "estée lauder", "estee lauder companies", "elc"},
	"shiseido":     {"shiseido"},
}

// DefaultSynonyms returns a copy of the built-in synonym table.
func DefaultSynonyms() Synonyms {
	out := make(Synonyms, len(defaultSynonyms))
	for k, v := range defaultSynonyms {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// For returns the synonyms registered for a canonical label.
func (s Synonyms) For(label string) []string {
	return s[textnorm.Alnum(textnorm.Key(label))]
}

// Merge returns a table holding s plus every alias in extra. Keys in extra
// are normalized with textnorm.Alnum; duplicate aliases are dropped.
func (s Synonyms) Merge(extra Synonyms) Synonyms {
	out := make(Synonyms, len(s)+len(extra))
	for k, v := range s {
		out[k] = append([]string(nil), v...)
	}
	for k, aliases := range extra {
		key := textnorm.Alnum(textnorm.Key(k))
		seen := make(map[string]bool, len(out[key]))
		for _, a := range out[key] {
			seen[textnorm.Key(a)] = true
		}
		for _, a := range aliases {
			ak := textnorm.Key(a)
			if ak == "" || seen[ak] {
				continue
			}
			seen[ak] = true
			out[key] = append(out[key], a)
		}
	}
	return out
}

// LoadSynonyms reads a YAML mapping of canonical key to alias list and
// merges it over the built-in table. An empty path returns the defaults.
func LoadSynonyms(path string) (Synonyms, error) {
	base := DefaultSynonyms()
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading synonyms %s: %w", path, err)
	}
	var extra Synonyms
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parsing synonyms %s: %w", path, err)
	}
	return base.Merge(extra), nil
}
