// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wiki-research/internal/research"
	"github.com/pdiddy/wiki-research/internal/store"
	"github.com/pdiddy/wiki-research/internal/wiki"
	"github.com/pdiddy/wiki-research/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResearcher struct {
	results map[string]types.ResearchResult
	err     error
}

func (f *fakeResearcher) Research(_ context.Context, query string) (types.ResearchResult, error) {
	if query == "" {
		return types.ResearchResult{}, research.ErrEmptyQuery
	}
	if f.err != nil {
		return types.ResearchResult{}, f.err
	}
	r, ok := f.results[query]
	if !ok {
		return types.ResearchResult{}, fmt.Errorf("searching %q: %w", query, research.ErrNoResults)
	}
	return r, nil
}

type fakeSections struct {
	sections []types.Section
	err      error
}

func (f *fakeSections) Sections(_ context.Context, _ string) ([]types.Section, error) {
	return f.sections, f.err
}

func goResult() types.ResearchResult {
	return types.ResearchResult{
		Query:         "golang",
		Title:         "Go (programming language)",
		DisplayTitle:  "Go (programming language)",
		Extract:       "Go is a statically typed, compiled high-level programming language.",
		WikiURL:       "https://en.wikipedia.org/wiki/Go_(programming_language)",
		RelatedTitles: []string{"Robert Griesemer", "Rob Pike"},
		Timestamp:     "2026-04-30T08:00:00.000Z",
	}
}

func testServer(t *testing.T, r Researcher, sec SectionSource) (*Server, *store.Store) {
	t.Helper()
	st, err := store.NewStore(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(r, sec, st, types.ServeConfig{}, nil), st
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t, &fakeResearcher{}, &fakeSections{})
	rec := do(t, s.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"OK"`)
}

func TestResearch_Success(t *testing.T) {
	s, st := testServer(t, &fakeResearcher{results: map[string]types.ResearchResult{"golang": goResult()}}, &fakeSections{})

	rec := do(t, s.Handler(), http.MethodGet, "/api/research?q=golang", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "Go (programming language)", raw["title"])
	assert.Nil(t, raw["thumbnail"], "missing thumbnail is null")
	assert.Len(t, raw["relatedTitles"], 2)

	history, err := st.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Go (programming language)", history[0].Title)
}

func TestResearch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		err      error
		wantCode int
		wantErr  string
	}{
		{"empty query", "", nil, http.StatusBadRequest, "empty_query"},
		{"no results", "asdkjaslkdj99", nil, http.StatusNotFound, "no_results"},
		{"network", "python", fmt.Errorf("searching: %w", research.ErrNetwork), http.StatusBadGateway, "network"},
		{"unexpected", "python", fmt.Errorf("%w: %w", research.ErrUnexpected, &wiki.APIError{Status: 500}), http.StatusInternalServerError, "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, st := testServer(t, &fakeResearcher{err: tt.err}, &fakeSections{})

			rec := do(t, s.Handler(), http.MethodGet, "/api/research?q="+url.QueryEscape(tt.query), nil)
			assert.Equal(t, tt.wantCode, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantErr, body["error"])
			assert.NotEmpty(t, body["message"])

			history, err := st.History(context.Background())
			require.NoError(t, err)
			assert.Empty(t, history)
		})
	}
}

func TestSections(t *testing.T) {
	sec := &fakeSections{sections: []types.Section{{Index: "1", Level: 1, Number: "1", Title: "History", Anchor: "History"}}}
	s, _ := testServer(t, &fakeResearcher{}, sec)

	rec := do(t, s.Handler(), http.MethodGet, "/api/sections?title=Go", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"anchor":"History"`)

	rec = do(t, s.Handler(), http.MethodGet, "/api/sections", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSections_NetworkError(t *testing.T) {
	s, _ := testServer(t, &fakeResearcher{}, &fakeSections{err: fmt.Errorf("sections: %w", wiki.ErrNetwork)})

	rec := do(t, s.Handler(), http.MethodGet, "/api/sections?title=Go", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSavedLifecycle(t *testing.T) {
	s, _ := testServer(t, &fakeResearcher{}, &fakeSections{})
	h := s.Handler()

	body, err := json.Marshal(goResult())
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/api/saved", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/saved", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"saved":false`)

	rec = do(t, h, http.MethodGet, "/api/saved", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var saved []types.SavedArticle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.Len(t, saved, 1)
	assert.Equal(t, "Go (programming language)", saved[0].Title)

	rec = do(t, h, http.MethodDelete, "/api/saved/"+url.PathEscape("Go (programming language)"), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/saved/"+url.PathEscape("Go (programming language)"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveSaved_TitleWithSlash(t *testing.T) {
	s, st := testServer(t, &fakeResearcher{}, &fakeSections{})
	ctx := context.Background()

	_, err := st.Save(ctx, types.ResearchResult{Title: "AC/DC", WikiURL: "https://en.wikipedia.org/wiki/AC%2FDC"})
	require.NoError(t, err)

	rec := do(t, s.Handler(), http.MethodDelete, "/api/saved/"+url.PathEscape("AC/DC"), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	saved, err := st.IsSaved(ctx, "AC/DC")
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestSavedStatus(t *testing.T) {
	s, st := testServer(t, &fakeResearcher{}, &fakeSections{})
	h := s.Handler()

	_, err := st.Save(context.Background(), goResult())
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/api/saved/status?title="+url.QueryEscape("Go (programming language)"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"title":"Go (programming language)","saved":true}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/saved/status?title="+url.QueryEscape("OS/2"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"title":"OS/2","saved":false}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/saved/status", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSave_RejectsBadBody(t *testing.T) {
	s, _ := testServer(t, &fakeResearcher{}, &fakeSections{})

	rec := do(t, s.Handler(), http.MethodPost, "/api/saved", []byte(`{"query":"x"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s.Handler(), http.MethodPost, "/api/saved", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearAndStats(t *testing.T) {
	s, st := testServer(t, &fakeResearcher{}, &fakeSections{})
	h := s.Handler()
	ctx := context.Background()

	require.NoError(t, st.AddHistory(ctx, goResult()))
	_, err := st.Save(ctx, goResult())
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats types.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, types.Stats{Queries: 1, Saved: 1, Topics: 1}, stats)

	rec = do(t, h, http.MethodDelete, "/api/history", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/saved", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/history", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
	rec = do(t, h, http.MethodGet, "/api/saved", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	s, _ := testServer(t, &fakeResearcher{}, &fakeSections{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	st, err := store.NewStore(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	defer st.Close()

	s := New(&fakeResearcher{}, &fakeSections{}, st, types.ServeConfig{Addr: "127.0.0.1:0"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
