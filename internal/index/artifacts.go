// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/soyoung-yu/paper-site/internal/catalog"
	"github.com/soyoung-yu/paper-site/pkg/types"
)

// WriteArtifacts replaces the search payload and the catalog. Each file is
// written atomically; the payload goes first so a failed run never leaves a
// catalog that is newer than its index.
func WriteArtifacts(payloadPath, catalogPath string, res Result) error {
	payload := res.Payload
	if payload.Papers == nil {
		payload.Papers = []types.PaperRecord{}
	}
	if payload.PaperCount != len(payload.Papers) {
		return fmt.Errorf("payload count %d does not match %d papers", payload.PaperCount, len(payload.Papers))
	}
	if err := catalog.WriteJSON(payloadPath, payload); err != nil {
		return fmt.Errorf("writing search index: %w", err)
	}
	if err := catalog.Save(catalogPath, res.Catalog); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}

// LoadPayload reads a search payload written by WriteArtifacts.
func LoadPayload(path string) (types.SearchIndexPayload, error) {
	var p types.SearchIndexPayload
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading search index: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parsing search index %s: %w", path, err)
	}
	return p, nil
}
