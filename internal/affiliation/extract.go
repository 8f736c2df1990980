// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package affiliation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/soyoung-yu/paper-site/internal/rules"
	"github.com/soyoung-yu/paper-site/internal/textnorm"
)

// Scan window bounds, in lines of normalized text.
const (
	// MaxHeaderLines bounds both the header string and the block scan.
	MaxHeaderLines = 220
	// HeaderZone is the prefix of the scan window in which a keyword line
	// may open a new capture.
	HeaderZone = 150
)

// HeaderStop ends the header string used by the header and numbered
// strategies.
var HeaderStop = rules.Set{
	rules.New("numbered-section", `^\d+\.\s`),
	rules.New("keywords", `(?i)^keywords?\b`),
	rules.New("section-header", `(?i)^(abstract|introduction|background|materials?|methods?|results?|discussion|conclusions?)\b`),
	rules.PageDelimiter,
}

// BlockStop ends a capture in the block scan.
var BlockStop = rules.Set{
	rules.New("section-header", `(?i)^(abstract|keywords?|introduction|materials?|methods?|background)`),
	rules.New("numbered-section", `^\d+\.\s`),
	rules.New("corresponding-author", `(?i)^corresponding\s+author`),
	rules.New("contact-author", `(?i)^contact\s+author`),
}

// OrgKeywords marks a line as naming an organization.
var OrgKeywords = rules.Set{
	rules.New("university", `(?i)\buniversity\b`),
	rules.New("college", `(?i)\bcollege\b`),
	rules.New("academy", `(?i)\bacademy\b`),
	rules.New("school", `(?i)\bschool\b`),
	rules.New("department", `(?i)\bdepartment\b`),
	rules.New("dept", `(?i)\bdept\.`),
	rules.New("faculty", `(?i)\bfaculty\b`),
	rules.New("institute", `(?i)\binstitute\b`),
	rules.New("center", `(?i)\bcent(er|re)\b`),
	rules.New("laboratory", `(?i)\blaborator`),
	rules.New("research", `(?i)\bresearch\b`),
	rules.New("r&d", `(?i)\br&d\b`),
	rules.New("hospital", `(?i)\bhospital\b`),
	rules.New("clinic", `(?i)\bclinic\b`),
	rules.New("dermatology", `(?i)\bdermatolog`),
	rules.New("pharma", `(?i)\bpharma`),
	rules.New("biotech", `(?i)\bbiotech`),
	rules.New("company", `(?i)\bcompany\b`),
	rules.New("co", `(?i)\bco\.`),
	rules.New("corporation", `(?i)\bcorp(oration)?\b`),
	rules.New("inc", `(?i)\binc\b`),
	rules.New("ltd", `(?i)\b(ltd|limited)\b`),
	rules.New("institut", `(?i)\binstitut\b`),
	rules.New("industry", `(?i)\bindustr(y|ies)\b`),
	rules.New("group", `(?i)\bgroup\b`),
}

var (
	affiliationLabel  = rules.New("affiliation-label", `(?i)^affiliations?\b`)
	affiliationPrefix = regexp.MustCompile(`(?i)^affiliations?\s*\d*\s*[:;,-]?\s*`)
	numberedStart     = rules.New("numbered-affiliation", `^\d+\s*[A-Z]`)

	digitGlue     = regexp.MustCompile(`(\d)([A-Za-z(])`)
	numberMarker  = regexp.MustCompile(`(?:^|\s)(\d{1,2})\s*[A-Z(]`)
	gluedNumber   = regexp.MustCompile(`\d+\s*([A-Za-z])`)
	trailingSemis = regexp.MustCompile(`[;\s]+$`)
)

// Strategy is one way of locating affiliation text. Run returns canonical
// labels for lines of normalized text.
type Strategy struct {
	Name string
	Run  func(reg *Registry, lines []string) []string
}

// Strategies lists the extraction strategies in union order.
var Strategies = []Strategy{
	{Name: "header", Run: headerStrategy},
	{Name: "numbered", Run: numberedStrategy},
	{Name: "scan", Run: scanStrategy},
}

// StrategyResult is the output of a single strategy.
type StrategyResult struct {
	Name   string   `json:"name"`
	Labels []string `json:"labels"`
}

// Detail is the full output of ExtractDetailed.
type Detail struct {
	Labels     []string         `json:"labels"`
	Strategies []StrategyResult `json:"strategies"`
}

// Extractor finds canonical affiliations in raw document text.
type Extractor struct {
	reg *Registry
}

// NewExtractor returns an Extractor that matches against reg.
func NewExtractor(reg *Registry) *Extractor {
	return &Extractor{reg: reg}
}

// Registry returns the registry the extractor matches against.
func (e *Extractor) Registry() *Registry { return e.reg }

// Extract returns the union of all strategies, deduplicated by key in
// first-matched order. Text with no recognizable organization yields an
// empty, non-nil slice.
func (e *Extractor) Extract(raw string) []string {
	return e.ExtractDetailed(raw).Labels
}

// ExtractDetailed is Extract plus each strategy's own result.
func (e *Extractor) ExtractDetailed(raw string) Detail {
	d := Detail{Labels: []string{}}
	text := textnorm.Normalize(raw)
	if text == "" || e.reg == nil || e.reg.Len() == 0 {
		return d
	}
	lines := strings.Split(text, "\n")

	var all []string
	for _, s := range Strategies {
		labels := UniqueLabels(s.Run(e.reg, lines))
		d.Strategies = append(d.Strategies, StrategyResult{Name: s.Name, Labels: labels})
		all = append(all, labels...)
	}
	d.Labels = UniqueLabels(all)
	return d
}

// HeaderText joins the non-empty lines before the first header stop, page
// break, or MaxHeaderLines into one space-separated string.
func HeaderText(lines []string) string {
	var parts []string
	for i, raw := range lines {
		if i >= MaxHeaderLines || rules.IsPageBreak(raw) {
			break
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if HeaderStop.Any(line) {
			break
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

func headerStrategy(reg *Registry, lines []string) []string {
	return reg.Match(HeaderText(lines))
}

func numberedStrategy(reg *Registry, lines []string) []string {
	return reg.MatchAll(NumberedEntries(HeaderText(lines)))
}

// NumberedEntries splits a header string into numbered affiliation entries:
// every one or two digit number that starts a capitalized token opens a new
// entry, and the number itself is dropped. Header text without digits yields
// nil.
func NumberedEntries(header string) []string {
	if !strings.ContainsFunc(header, unicode.IsDigit) {
		return nil
	}
	prepared := textnorm.CollapseSpaces(digitGlue.ReplaceAllString(header, "${1} ${2}"))

	var segments []string
	last := 0
	for _, m := range numberMarker.FindAllStringSubmatchIndex(prepared, -1) {
		segments = append(segments, prepared[last:m[2]])
		last = m[2]
	}
	segments = append(segments, prepared[last:])

	var out []string
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg[0] < '0' || seg[0] > '9' {
			continue
		}
		sp := strings.IndexByte(seg, ' ')
		if sp < 0 {
			continue
		}
		if entry := trailingSemis.ReplaceAllString(seg[sp+1:], ""); entry != "" {
			out = append(out, strings.TrimSpace(entry))
		}
	}
	return out
}

func scanStrategy(reg *Registry, lines []string) []string {
	var labels []string
	for _, block := range ScanBlocks(lines) {
		labels = append(labels, reg.MatchAll(Explode(block))...)
	}
	return labels
}

func isNumberedCandidate(line string) bool {
	return numberedStart.Match(line) && strings.Contains(line, ",")
}

// ScanBlocks walks the scan window and returns the captured affiliation
// buffers in document order.
func ScanBlocks(lines []string) []string {
	var (
		blocks    []string
		buf       []string
		capturing bool
	)
	flush := func() {
		if len(buf) > 0 {
			blocks = append(blocks, strings.Join(buf, " "))
		}
		buf = nil
		capturing = false
	}

	for i, raw := range lines {
		if i >= MaxHeaderLines {
			break
		}
		withinHeader := i < HeaderZone
		if !withinHeader && !capturing {
			break
		}
		if rules.IsPageBreak(raw) {
			continue
		}
		line := textnorm.CollapseSpaces(raw)
		if line == "" {
			flush()
			continue
		}
		if BlockStop.Any(line) {
			flush()
			if len(blocks) > 0 {
				break
			}
			continue
		}

		numbered := isNumberedCandidate(line)
		switch {
		case affiliationLabel.Match(line):
			flush()
			capturing = true
			if rest := affiliationPrefix.ReplaceAllString(line, ""); rest != "" {
				buf = append(buf, rest)
			}
		case capturing && numbered:
			flush()
			capturing = true
			buf = append(buf, line)
		case capturing:
			buf = append(buf, line)
		case numbered || (withinHeader && OrgKeywords.Any(line) && strings.Contains(line, ",")):
			capturing = true
			buf = append(buf, line)
		}
	}
	flush()
	return blocks
}

// Explode splits one captured affiliation buffer into discrete entries:
// first on semicolons, then before every run of digits that is followed by
// a letter ("1University of X2Company Y" -> "University of X", "Company Y").
// Names containing digits followed by letters, such as "3M", are split too.
func Explode(entry string) []string {
	var out []string
	for _, part := range strings.Split(textnorm.CollapseSpaces(entry), ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		last := 0
		for _, m := range gluedNumber.FindAllStringSubmatchIndex(part, -1) {
			out = appendTrimmed(out, part[last:m[0]])
			last = m[2]
		}
		out = appendTrimmed(out, part[last:])
	}
	return out
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}
