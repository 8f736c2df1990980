// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/soyoung-yu/paper-site/internal/catalog"
	"github.com/soyoung-yu/paper-site/internal/observability"
	"github.com/soyoung-yu/paper-site/internal/textnorm"
	"github.com/soyoung-yu/paper-site/internal/title"
	"github.com/soyoung-yu/paper-site/pkg/types"
)

// TitleSummary counts the outcome of a title refresh.
type TitleSummary struct {
	// Updated rows got a freshly extracted title, possibly empty.
	Updated int
	// Kept rows could not be read and kept their previous title.
	Kept int
	// Failed rows could not be read and had no previous title.
	Failed int
	// Skipped rows have no filename; their title is cleared.
	Skipped int
}

// Total returns the number of rows visited.
func (s TitleSummary) Total() int {
	return s.Updated + s.Kept + s.Failed + s.Skipped
}

// HasFailures reports whether any PDF could not be read.
func (s TitleSummary) HasFailures() bool {
	return s.Kept+s.Failed > 0
}

// RefreshTitles re-extracts the title of every paper in cat, or only those
// in the folder with slug onlyFolder when it is not empty. A successful
// extraction overwrites the catalog title even when it is empty; a failed
// one keeps the previous title. The returned catalog is a copy.
func (b *Builder) RefreshTitles(ctx context.Context, cat types.Catalog, onlyFolder string) (types.Catalog, TitleSummary, error) {
	updated := catalog.Clone(cat)
	if onlyFolder != "" {
		if _, ok := catalog.Find(updated, onlyFolder); !ok {
			return nil, TitleSummary{}, fmt.Errorf("folder %q not found in catalog", onlyFolder)
		}
	}

	var work []job
	for _, j := range jobs(updated) {
		if onlyFolder == "" || j.folder.Folder == onlyFolder {
			work = append(work, j)
		}
	}

	type titleResult struct {
		title string
		ok    bool
	}
	results := make([]titleResult, len(work))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, j := range work {
		g.Go(func() error {
			paper := j.folder.Papers[j.pi]
			path := catalog.PDFPath(b.dir, j.folder, paper)
			if path == "" {
				return nil
			}
			doc, err := b.text.Extract(gctx, path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log := observability.WithPaper(b.log, paper.ID, j.folder.Folder, path)
				log.Error().Err(err).Str("previous_title", paper.Title).Msg("title extraction failed")
				return nil
			}
			results[i] = titleResult{title: title.Extract(textnorm.Normalize(doc.Text)), ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, TitleSummary{}, fmt.Errorf("refreshing titles: %w", err)
	}

	var sum TitleSummary
	for i, j := range work {
		p := &updated[j.fi].Papers[j.pi]
		r := results[i]
		switch {
		case p.Filename == "":
			p.Title = ""
			sum.Skipped++
		case r.ok:
			p.Title = r.title
			sum.Updated++
			b.metrics.TitlesRefreshed.WithLabelValues("updated").Inc()
		case p.Title != "":
			sum.Kept++
			b.metrics.TitlesRefreshed.WithLabelValues("kept").Inc()
		default:
			sum.Failed++
			b.metrics.TitlesRefreshed.WithLabelValues("failed").Inc()
		}
	}

	b.log.Info().
		Int("updated", sum.Updated).
		Int("kept", sum.Kept).
		Int("failed", sum.Failed).
		Int("skipped", sum.Skipped).
		Msg("titles refreshed")
	return updated, sum, nil
}
