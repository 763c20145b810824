// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wiki-research/pkg/types"
)

// Export holds the full contents of the store.
type Export struct {
	History []types.HistoryEntry `json:"history" yaml:"history"`
	Saved   []types.SavedArticle `json:"saved" yaml:"saved"`
}

// ExportYAML writes the store to dataDir/export.yaml and returns the path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	export, err := s.export(ctx)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(export)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dataDir, "export.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the store to dataDir/export.json and returns the path.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	export, err := s.export(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dataDir, "export.json")
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) export(ctx context.Context) (Export, error) {
	history, err := s.History(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	saved, err := s.Saved(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	return Export{History: history, Saved: saved}, nil
}
