// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyoung-yu/paper-site/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewLoggerToJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, types.LoggingConfig{Level: "warn", Format: "json"})

	logger.Info().Msg("hidden")
	plog := WithPaper(logger, "p1", "Hair", "public/papers/Hair/a.pdf")
	plog.Warn().Msg("extraction failed")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "p1", entry["paper_id"])
	assert.Equal(t, "Hair", entry["folder"])
	assert.Equal(t, "extraction failed", entry["message"])
}

func TestNewLoggerToConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, types.LoggingConfig{Level: "info", Format: "console"})
	logger.Info().Int("papers", 3).Msg("index written")
	assert.Contains(t, buf.String(), "index written")
	assert.Contains(t, buf.String(), "papers=")
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.PapersProcessed.WithLabelValues("indexed").Add(2)
	m.PapersProcessed.WithLabelValues("failed").Inc()
	m.AffiliationsFound.Add(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PapersProcessed.WithLabelValues("indexed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AffiliationsFound))

	// A second instance starts from zero.
	assert.Equal(t, 0.0, testutil.ToFloat64(NewMetrics().AffiliationsFound))

	path := filepath.Join(t.TempDir(), "paper_index.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `paper_index_papers_processed_total{outcome="failed"} 1`)
	assert.Contains(t, string(data), "paper_index_affiliations_found_total 3")
}
