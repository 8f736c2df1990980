// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyoung-yu/paper-site/internal/catalog"
	"github.com/soyoung-yu/paper-site/pkg/types"
)

func writePayload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "papers-search.json")
	payload := types.SearchIndexPayload{
		GeneratedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PaperCount:  1,
		Papers: []types.PaperRecord{{
			ID: "p1", Title: "Ceramide Emulsions", Folder: "hair", FolderName: "Hair",
			Affiliation: []string{"Kao"}, Text: "body",
		}},
	}
	require.NoError(t, catalog.WriteJSON(path, payload))
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestSearchCommand(t *testing.T) {
	path := writePayload(t)
	save := filepath.Join(t.TempDir(), "q.yaml")

	require.NoError(t, execute(t, "--search-index", path, "search", "--affiliation", "kao", "--save", save, "ceramide"))
	assert.Equal(t, path, cfg.Paths.SearchIndex)

	_, err := os.Stat(save)
	assert.NoError(t, err)
}

func TestMissingPayloadFails(t *testing.T) {
	err := execute(t, "--search-index", filepath.Join(t.TempDir(), "none.json"), "search", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading search index")
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("PAPER_INDEX_INDEX_WORKERS", "0")
	err := execute(t, "--search-index", writePayload(t), "search", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Index.Workers")
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := loadConfig()
	require.NoError(t, err)
	d := types.DefaultConfig()
	assert.Equal(t, d.Index, c.Index)
	assert.Equal(t, d.Store, c.Store)
	assert.Equal(t, d.Paths.Vocabulary, c.Paths.Vocabulary)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "L’O...", clip("L’Oréal Paris", 6))
}
