// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "paper_index"

// Metrics holds the counters of one batch run. Each instance has its own
// registry, so runs and tests do not share state.
type Metrics struct {
	registry *prometheus.Registry

	// PapersProcessed counts catalog rows by outcome: indexed, failed or
	// skipped.
	PapersProcessed *prometheus.CounterVec

	// AffiliationsFound counts canonical labels assigned across all papers.
	AffiliationsFound prometheus.Counter

	// AffiliationsPerPaper observes the number of labels per indexed paper.
	AffiliationsPerPaper prometheus.Histogram

	// ExtractionDuration observes PDF text extraction time in seconds.
	ExtractionDuration prometheus.Histogram

	// ExtractedChars observes the size of extracted text.
	ExtractedChars prometheus.Histogram

	// TitlesRefreshed counts title refresh outcomes: updated, kept or failed.
	TitlesRefreshed *prometheus.CounterVec
}

// NewMetrics registers the run metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		PapersProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_processed_total",
			Help:      "Catalog rows processed, by outcome.",
		}, []string{"outcome"}),
		AffiliationsFound: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "affiliations_found_total",
			Help:      "Canonical affiliation labels assigned.",
		}),
		AffiliationsPerPaper: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "affiliations_per_paper",
			Help:      "Canonical affiliation labels per indexed paper.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		}),
		ExtractionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "PDF text extraction time.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		ExtractedChars: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extracted_chars",
			Help:      "Characters of normalized text per paper.",
			Buckets:   prometheus.ExponentialBuckets(1000, 2, 10),
		}),
		TitlesRefreshed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "titles_refreshed_total",
			Help:      "Title refresh outcomes.",
		}, []string{"outcome"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes all metrics in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
