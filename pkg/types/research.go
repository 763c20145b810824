// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for wiki-research: the
// records that flow from the content source through the orchestrator to
// the store, the HTTP API, and the CLI.
package types

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for every timestamp the
// assistant produces (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// SearchCandidate is one keyword-search hit considered as the subject of a
// research result. It is never persisted.
type SearchCandidate struct {
	// Title is the exact article title as returned by the search endpoint.
	Title string `json:"title" yaml:"title"`

	// Snippet is the search excerpt. It may contain highlight markup.
	Snippet string `json:"snippet" yaml:"snippet"`
}

// ArticleSummary is the canonical shape of an article summary regardless of
// which summary endpoint produced it.
type ArticleSummary struct {
	Title        string `json:"title" yaml:"title"`
	DisplayTitle string `json:"display_title" yaml:"display_title"`

	// Extract may be empty; a blank extract means no usable summary.
	Extract string `json:"extract" yaml:"extract"`

	// ThumbnailURL is empty when the source offered no image.
	ThumbnailURL string `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`

	CanonicalURL string `json:"canonical_url" yaml:"canonical_url"`
}

// ResearchResult is the finished record handed to the store and the view
// layers. It is built once per successful research call and not modified
// afterwards.
type ResearchResult struct {
	Query         string   `json:"query" yaml:"query"`
	Title         string   `json:"title" yaml:"title"`
	DisplayTitle  string   `json:"displayTitle" yaml:"display_title"`
	Extract       string   `json:"extract" yaml:"extract"`
	ThumbnailURL  string   `json:"-" yaml:"thumbnail_url,omitempty"`
	WikiURL       string   `json:"wikiUrl" yaml:"wiki_url"`
	RelatedTitles []string `json:"relatedTitles" yaml:"related_titles"`
	Timestamp     string   `json:"timestamp" yaml:"timestamp"`
}

// researchResultJSON mirrors ResearchResult on the wire, where a missing
// thumbnail is an explicit null rather than an empty string.
type researchResultJSON struct {
	Query         string   `json:"query"`
	Title         string   `json:"title"`
	DisplayTitle  string   `json:"displayTitle"`
	Extract       string   `json:"extract"`
	Thumbnail     *string  `json:"thumbnail"`
	WikiURL       string   `json:"wikiUrl"`
	RelatedTitles []string `json:"relatedTitles"`
	Timestamp     string   `json:"timestamp"`
}

// MarshalJSON encodes the result with a null thumbnail when none is set and
// an empty (not null) related list.
func (r ResearchResult) MarshalJSON() ([]byte, error) {
	out := researchResultJSON{
		Query:         r.Query,
		Title:         r.Title,
		DisplayTitle:  r.DisplayTitle,
		Extract:       r.Extract,
		WikiURL:       r.WikiURL,
		RelatedTitles: r.RelatedTitles,
		Timestamp:     r.Timestamp,
	}
	if r.ThumbnailURL != "" {
		thumb := r.ThumbnailURL
		out.Thumbnail = &thumb
	}
	if out.RelatedTitles == nil {
		out.RelatedTitles = []string{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the wire shape produced by MarshalJSON.
func (r *ResearchResult) UnmarshalJSON(data []byte) error {
	var in researchResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = ResearchResult{
		Query:         in.Query,
		Title:         in.Title,
		DisplayTitle:  in.DisplayTitle,
		Extract:       in.Extract,
		WikiURL:       in.WikiURL,
		RelatedTitles: in.RelatedTitles,
		Timestamp:     in.Timestamp,
	}
	if in.Thumbnail != nil {
		r.ThumbnailURL = *in.Thumbnail
	}
	return nil
}

// Section is one heading of an article's table of contents.
type Section struct {
	Index  string `json:"index" yaml:"index"`
	Level  int    `json:"level" yaml:"level"`
	Number string `json:"number" yaml:"number"`
	Title  string `json:"title" yaml:"title"`
	Anchor string `json:"anchor" yaml:"anchor"`
}

// HistoryEntry records one completed research call.
type HistoryEntry struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Query     string `json:"query" yaml:"query"`
	WikiURL   string `json:"wikiUrl" yaml:"wiki_url"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// SavedArticle is a bookmarked research result with a shortened extract.
type SavedArticle struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Query     string `json:"query" yaml:"query"`
	WikiURL   string `json:"wikiUrl" yaml:"wiki_url"`
	Extract   string `json:"extract" yaml:"extract"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// Stats summarizes the history and saved lists.
type Stats struct {
	Queries int `json:"queries" yaml:"queries"`
	Saved   int `json:"saved" yaml:"saved"`
	Topics  int `json:"topics" yaml:"topics"`
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
