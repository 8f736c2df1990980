// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyoung-yu/paper-site/internal/affiliation"
	"github.com/soyoung-yu/paper-site/internal/catalog"
	"github.com/soyoung-yu/paper-site/pkg/types"
)

func TestRefreshTitles(t *testing.T) {
	docs := testDocs()
	docs["skin/blank.pdf"] = "Abstract\nNothing before the abstract."
	cat := testCatalog()
	cat[1].Papers = append(cat[1].Papers,
		types.CatalogPaper{ID: "s3", Filename: "blank.pdf", Title: "Stale Title"},
		types.CatalogPaper{ID: "s4", Filename: "missing.pdf"},
	)
	cat[1].Papers[1].Title = "Orphan Title"

	got, sum, err := newTestBuilder(&fakeText{docs: docs}, 2).RefreshTitles(context.Background(), cat, "")
	require.NoError(t, err)

	assert.Equal(t, TitleSummary{Updated: 3, Kept: 1, Failed: 1, Skipped: 1}, sum)
	assert.Equal(t, 6, sum.Total())
	assert.True(t, sum.HasFailures())

	assert.Equal(t, "Novel Method for Evaluating Water Content in Stratum Corneum", got[0].Papers[0].Title)
	assert.Equal(t, "Hair gloss under humidity", got[0].Papers[1].Title)
	assert.Equal(t, "Kept Title", got[1].Papers[0].Title)
	assert.Empty(t, got[1].Papers[1].Title)
	assert.Empty(t, got[1].Papers[2].Title, "successful extraction overwrites with empty")
	assert.Empty(t, got[1].Papers[3].Title)

	// Affiliations are not touched and the input is unchanged.
	assert.Equal(t, []string{"Kao"}, got[0].Papers[1].Affiliation)
	assert.Equal(t, "Stale Title", cat[1].Papers[2].Title)
}

func TestRefreshTitlesLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	reg := affiliation.NewRegistry([]string{"Chanel"}, nil)
	b := NewBuilder(&fakeText{docs: testDocs()}, affiliation.NewExtractor(reg), Options{
		PapersDir: papersDir,
		Logger:    zerolog.New(&buf),
	})

	got, sum, err := b.RefreshTitles(context.Background(), testCatalog(), "skin")
	require.NoError(t, err)
	assert.Equal(t, TitleSummary{Kept: 1, Skipped: 1}, sum)
	assert.Equal(t, "Kept Title", got[1].Papers[0].Title)

	var failure map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["message"] == "title extraction failed" {
			failure = entry
		}
	}
	require.NotNil(t, failure, "log: %s", buf.String())
	assert.Equal(t, "error", failure["level"])
	assert.Equal(t, "X", failure["paper_id"])
	assert.Equal(t, "skin", failure["folder"])
	assert.Equal(t, "Kept Title", failure["previous_title"])
	assert.Contains(t, failure["error"], "corrupt xref table")
}

func TestRefreshTitlesOneFolder(t *testing.T) {
	text := &fakeText{docs: testDocs()}
	got, sum, err := newTestBuilder(text, 1).RefreshTitles(context.Background(), testCatalog(), "hair")
	require.NoError(t, err)

	assert.Equal(t, TitleSummary{Updated: 2}, sum)
	assert.Equal(t, int64(2), text.calls.Load())
	assert.Equal(t, "Kept Title", got[1].Papers[0].Title)
}

func TestRefreshTitlesUnknownFolder(t *testing.T) {
	_, _, err := newTestBuilder(&fakeText{}, 1).RefreshTitles(context.Background(), testCatalog(), "nails")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nails"`)
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	payloadPath := filepath.Join(dir, "public", "papers-search.json")
	catalogPath := filepath.Join(dir, "public", "papers.json")

	res, err := newTestBuilder(&fakeText{docs: testDocs()}, 1).Build(context.Background(), testCatalog())
	require.NoError(t, err)
	require.NoError(t, WriteArtifacts(payloadPath, catalogPath, res))

	payload, err := LoadPayload(payloadPath)
	require.NoError(t, err)
	assert.Equal(t, res.Payload, payload)

	cat, err := catalog.Load(catalogPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"University of Tokyo", "Shiseido"}, cat[0].Papers[0].Affiliation)

	entries, err := os.ReadDir(filepath.Join(dir, "public"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files left behind")
}

func TestWriteArtifactsRejectsCountMismatch(t *testing.T) {
	dir := t.TempDir()
	res := Result{Payload: types.SearchIndexPayload{PaperCount: 2}}
	err := WriteArtifacts(filepath.Join(dir, "s.json"), filepath.Join(dir, "c.json"), res)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "c.json"))
	assert.True(t, os.IsNotExist(statErr))
}
