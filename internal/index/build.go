// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds the full-text search payload and the updated catalog
// from the PDFs referenced by a catalog.
package index

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/soyoung-yu/paper-site/internal/affiliation"
	"github.com/soyoung-yu/paper-site/internal/catalog"
	"github.com/soyoung-yu/paper-site/internal/observability"
	"github.com/soyoung-yu/paper-site/internal/pdftext"
	"github.com/soyoung-yu/paper-site/internal/textnorm"
	"github.com/soyoung-yu/paper-site/internal/title"
	"github.com/soyoung-yu/paper-site/pkg/types"
)

// Outcome labels used in logs and metrics.
const (
	OutcomeIndexed = "indexed"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Summary counts the outcome of every catalog row in a build.
type Summary struct {
	Indexed int
	Failed  int
	Skipped int
	// Affiliations is the number of labels assigned across indexed papers.
	Affiliations int
}

// Total returns the number of rows processed.
func (s Summary) Total() int {
	return s.Indexed + s.Failed + s.Skipped
}

// HasFailures reports whether any PDF could not be read.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Result is the output of Build.
type Result struct {
	Payload types.SearchIndexPayload
	Catalog types.Catalog
	Summary Summary
}

// Options configures a Builder. Zero values select defaults.
type Options struct {
	// PapersDir holds one subdirectory per folder slug.
	PapersDir string
	// Workers bounds concurrent extraction; values below 1 mean 1.
	Workers int
	Logger  zerolog.Logger
	Metrics *observability.Metrics
	// Now stamps the payload; defaults to time.Now.
	Now func() time.Time
}

// Builder turns a catalog into a search payload. It holds no per-run state
// and may be reused.
type Builder struct {
	text    pdftext.Extractor
	aff     *affiliation.Extractor
	dir     string
	workers int
	log     zerolog.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewBuilder returns a Builder reading PDFs with text and matching
// affiliations with aff.
func NewBuilder(text pdftext.Extractor, aff *affiliation.Extractor, opts Options) *Builder {
	b := &Builder{
		text:    text,
		aff:     aff,
		dir:     opts.PapersDir,
		workers: max(opts.Workers, 1),
		log:     opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	if b.metrics == nil {
		b.metrics = observability.NewMetrics()
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// job is one catalog row with its position.
type job struct {
	folder types.Folder
	fi, pi int
}

// paperResult is what processing one row produced.
type paperResult struct {
	record  types.PaperRecord
	outcome string
}

func jobs(cat types.Catalog) []job {
	var out []job
	for fi, f := range cat {
		for pi := range f.Papers {
			out = append(out, job{folder: f, fi: fi, pi: pi})
		}
	}
	return out
}

// Build extracts every paper in cat and returns the new payload and a copy
// of cat whose affiliation fields hold the freshly computed labels. A paper
// whose PDF cannot be read gets an empty record and an empty catalog
// affiliation. Only cancellation and catalog errors fail the build.
// Records follow catalog order for any worker count.
func (b *Builder) Build(ctx context.Context, cat types.Catalog) (Result, error) {
	updated := catalog.Clone(cat)
	if err := catalog.Resolve(updated); err != nil {
		return Result{}, err
	}

	work := jobs(updated)
	results := make([]paperResult, len(work))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, j := range work {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := b.process(gctx, j.folder, j.folder.Papers[j.pi])
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("building index: %w", err)
	}

	res := Result{Catalog: updated}
	records := make([]types.PaperRecord, 0, len(work))
	for i, j := range work {
		r := results[i]
		records = append(records, r.record)
		updated[j.fi].Papers[j.pi].Affiliation = append([]string{}, r.record.Affiliation...)
		switch r.outcome {
		case OutcomeIndexed:
			res.Summary.Indexed++
			res.Summary.Affiliations += len(r.record.Affiliation)
		case OutcomeFailed:
			res.Summary.Failed++
		case OutcomeSkipped:
			res.Summary.Skipped++
		}
	}

	res.Payload = types.SearchIndexPayload{
		GeneratedAt: b.now().UTC(),
		PaperCount:  len(records),
		Papers:      records,
	}
	b.log.Info().
		Int("papers", res.Summary.Total()).
		Int("indexed", res.Summary.Indexed).
		Int("failed", res.Summary.Failed).
		Int("skipped", res.Summary.Skipped).
		Int("affiliations", res.Summary.Affiliations).
		Msg("index built")
	return res, nil
}

// process handles one row. Extraction failures are logged and reported
// through the outcome; the returned error is only set on cancellation.
func (b *Builder) process(ctx context.Context, folder types.Folder, paper types.CatalogPaper) (paperResult, error) {
	rec := types.PaperRecord{
		ID:          paper.ID,
		Title:       paper.Title,
		Filename:    paper.Filename,
		Folder:      folder.Folder,
		FolderName:  folderName(folder),
		Affiliation: []string{},
	}
	path := catalog.PDFPath(b.dir, folder, paper)
	log := observability.WithPaper(b.log, paper.ID, folder.Folder, path)

	if path == "" {
		log.Warn().Msg("catalog row has no filename")
		b.metrics.PapersProcessed.WithLabelValues(OutcomeSkipped).Inc()
		return paperResult{record: rec, outcome: OutcomeSkipped}, nil
	}

	start := time.Now()
	doc, err := b.text.Extract(ctx, path)
	b.metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return paperResult{}, ctxErr
		}
		log.Warn().Err(err).Msg("text extraction failed")
		b.metrics.PapersProcessed.WithLabelValues(OutcomeFailed).Inc()
		return paperResult{record: rec, outcome: OutcomeFailed}, nil
	}

	text := textnorm.Normalize(doc.Text)
	rec.Text = text
	rec.CharCount = utf8.RuneCountInString(text)
	rec.PageCount = doc.Pages
	rec.Affiliation = b.aff.Extract(text)
	if rec.Title == "" {
		rec.Title = title.Extract(text)
	}

	b.metrics.PapersProcessed.WithLabelValues(OutcomeIndexed).Inc()
	b.metrics.AffiliationsFound.Add(float64(len(rec.Affiliation)))
	b.metrics.AffiliationsPerPaper.Observe(float64(len(rec.Affiliation)))
	b.metrics.ExtractedChars.Observe(float64(rec.CharCount))
	log.Info().
		Int("chars", rec.CharCount).
		Int("pages", rec.PageCount).
		Strs("affiliations", rec.Affiliation).
		Msg("indexed")
	return paperResult{record: rec, outcome: OutcomeIndexed}, nil
}

func folderName(f types.Folder) string {
	if f.Name != "" {
		return f.Name
	}
	return f.Folder
}
