// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wiki-research/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T, maxHistory int) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{
		DataDir:    filepath.Join(t.TempDir(), "data"),
		MaxHistory: maxHistory,
	})
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { s.Close() })
	return s
}

func result(title string) types.ResearchResult {
	return types.ResearchResult{
		Query:         "q " + title,
		Title:         title,
		DisplayTitle:  title,
		Extract:       title + " extract",
		WikiURL:       "https://en.wikipedia.org/wiki/" + title,
		RelatedTitles: []string{},
		Timestamp:     "2026-04-30T08:00:00.000Z",
	}
}

func historyTitles(t *testing.T, s *Store) []string {
	t.Helper()
	entries, err := s.History(context.Background())
	require.NoError(t, err)
	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}
	return titles
}

// --- history ---

func TestNewStore_RequiresDataDir(t *testing.T) {
	_, err := NewStore(types.StoreConfig{})
	assert.Error(t, err)
}

func TestNewStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(types.StoreConfig{DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, s.AddHistory(context.Background(), result("Go")))
	require.NoError(t, s.Close())

	s2, err := NewStore(types.StoreConfig{DataDir: dir})
	require.NoError(t, err)
	defer s2.Close()
	assert.Equal(t, []string{"Go"}, historyTitles(t, s2))
}

func TestAddHistory_NewestFirst(t *testing.T) {
	s := testStore(t, 0)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		require.NoError(t, s.AddHistory(ctx, result(title)))
	}
	assert.Equal(t, []string{"C", "B", "A"}, historyTitles(t, s))

	entries, err := s.History(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, "q C", entries[0].Query)
	assert.Equal(t, "https://en.wikipedia.org/wiki/C", entries[0].WikiURL)
	assert.Equal(t, "2026-04-30T08:00:00.000Z", entries[0].Timestamp)
}

func TestAddHistory_DeduplicatesByTitle(t *testing.T) {
	s := testStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.AddHistory(ctx, result("A")))
	require.NoError(t, s.AddHistory(ctx, result("B")))
	again := result("A")
	again.Query = "second query"
	require.NoError(t, s.AddHistory(ctx, again))

	entries, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].Title)
	assert.Equal(t, "second query", entries[0].Query)
	assert.Equal(t, "B", entries[1].Title)
}

func TestAddHistory_Cap(t *testing.T) {
	s := testStore(t, 0)
	ctx := context.Background()

	for i := 0; i < DefaultMaxHistory+5; i++ {
		require.NoError(t, s.AddHistory(ctx, result(fmt.Sprintf("T%02d", i))))
	}
	titles := historyTitles(t, s)
	require.Len(t, titles, DefaultMaxHistory)
	assert.Equal(t, "T34", titles[0])
	assert.Equal(t, "T05", titles[len(titles)-1])
}

func TestAddHistory_CustomCap(t *testing.T) {
	s := testStore(t, 2)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		require.NoError(t, s.AddHistory(ctx, result(title)))
	}
	assert.Equal(t, []string{"C", "B"}, historyTitles(t, s))
}

func TestAddHistory_DefaultsTimestamp(t *testing.T) {
	s := testStore(t, 0)
	r := result("A")
	r.Timestamp = ""
	require.NoError(t, s.AddHistory(context.Background(), r))

	entries, err := s.History(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-05-01T12:00:00.000Z", entries[0].Timestamp)
}

func TestClearHistory(t *testing.T) {
	s := testStore(t, 0)
	ctx := context.Background()
	require.NoError(t, s.AddHistory(ctx, result("A")))

	require.NoError(t, s.ClearHistory(ctx))
	entries, err := s.History(ctx)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

// --- saved ---

func TestSave(t *testing.T) {
	s := testStore(t, 0)
	ctx := context.Background()

	ok, err := s.Save(ctx, result("A"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Save(ctx, result("A"))
	require.NoError(t, err)
	assert.False(t, ok, "second save of the same title is refused")

	saved, err := s.IsSaved(ctx, "A")
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = s.IsSaved(ctx, "B")
	require.NoError(t, err)
	assert.False(t, saved)

	articles, err := s.Saved(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "A extract", articles[0].Extract)
	assert.Equal(t, "2026-05-01T12:00:00.000Z", articles[0].Timestamp)
}

func TestSave_TruncatesExtract(t *testing.T) {
	s := testStore(t, 0)
	ctx := context.Background()

	r := result("Long")
	r.Extract = strings.Repeat("é", 250)
	_, err := s.Save(ctx, r)
	require.NoError(t, err)

	articles, err := s.Saved(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, len([]rune(articles[0].Extract)))
}

func TestSaved_NewestFirst(t *testing.T) {
	s := testStore(t, 0)
	ctx := context.Background()
	for _, title := range []string{"A", "B"} {
		_, err := s.Save(ctx, result(title))
		require.NoError(t, err)
	}

	articles, err := s.Saved(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "B", articles[0].Title)
	assert.Equal(t, "A", articles[1].Title)
}

func TestRemoveSaved(t *testing.T) {
	s := testStore(t, 0)
	ctx := context.Background()
	_, err := s.Save(ctx, result("A"))
	require.NoError(t, err)

	removed, err := s.RemoveSaved(ctx, "A")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveSaved(ctx, "A")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestClearSaved(t *testing.T) {
	s := testStore(t, 0)
	ctx := context.Background()
	_, err := s.Save(ctx, result("A"))
	require.NoError(t, err)

	require.NoError(t, s.ClearSaved(ctx))
	articles, err := s.Saved(ctx)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

// --- stats & export ---

func TestStats(t *testing.T) {
	s := testStore(t, 0)
	ctx := context.Background()

	for _, title := range []string{"Python", "Talk: Python", "Talk:Go", "Go"} {
		require.NoError(t, s.AddHistory(ctx, result(title)))
	}
	_, err := s.Save(ctx, result("Go"))
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.Stats{Queries: 4, Saved: 1, Topics: 3}, stats)
}

func TestExport(t *testing.T) {
	s := testStore(t, 0)
	ctx := context.Background()
	require.NoError(t, s.AddHistory(ctx, result("A")))
	_, err := s.Save(ctx, result("B"))
	require.NoError(t, err)

	yamlPath, err := s.ExportYAML(ctx)
	require.NoError(t, err)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML Export
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML.History, 1)
	assert.Equal(t, "A", fromYAML.History[0].Title)
	require.Len(t, fromYAML.Saved, 1)
	assert.Equal(t, "B", fromYAML.Saved[0].Title)

	jsonPath, err := s.ExportJSON(ctx)
	require.NoError(t, err)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON Export
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, fromYAML, fromJSON)
}
