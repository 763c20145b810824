// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/wiki-research/pkg/types"
)

// ArticleBase prefixes escaped titles to form canonical article URLs.
const ArticleBase = "https://en.wikipedia.org/wiki/"

// Payload is a raw summary response. It is either a RichSummary from the
// REST summary endpoint or a BasicSummary from the extracts query.
type Payload interface {
	payload()
}

// RichSummary is the REST v1 page summary shape.
type RichSummary struct {
	Title        string      `json:"title"`
	DisplayTitle string      `json:"displaytitle"`
	Extract      string      `json:"extract"`
	Thumbnail    *Thumbnail  `json:"thumbnail"`
	ContentURLs  ContentURLs `json:"content_urls"`
}

// Thumbnail is the lead image of a rich summary.
type Thumbnail struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ContentURLs holds the per-platform page links of a rich summary.
type ContentURLs struct {
	Desktop PageURLs `json:"desktop"`
}

// PageURLs holds the links for one platform.
type PageURLs struct {
	Page string `json:"page"`
}

// BasicSummary is one page object from the extracts query. Missing and
// Invalid are present only when the API flags the page.
type BasicSummary struct {
	PageID  int             `json:"pageid"`
	Title   string          `json:"title"`
	Extract string          `json:"extract"`
	FullURL string          `json:"fullurl"`
	Missing json.RawMessage `json:"missing,omitempty"`
	Invalid json.RawMessage `json:"invalid,omitempty"`
}

func (RichSummary) payload()  {}
func (BasicSummary) payload() {}

// IsMissing reports whether the page carries a missing or invalid marker.
func (b BasicSummary) IsMissing() bool {
	return len(b.Missing) > 0 || len(b.Invalid) > 0
}

// Normalize converts either payload variant to the canonical summary.
func Normalize(p Payload, fallbackTitle string) (types.ArticleSummary, error) {
	switch v := p.(type) {
	case RichSummary:
		return NormalizeRich(v), nil
	case *RichSummary:
		return NormalizeRich(*v), nil
	case BasicSummary:
		return NormalizeBasic(v, fallbackTitle)
	case *BasicSummary:
		return NormalizeBasic(*v, fallbackTitle)
	default:
		return types.ArticleSummary{}, fmt.Errorf("unknown summary payload %T", p)
	}
}

// NormalizeRich converts a REST summary. DisplayTitle keeps the source's
// markup; callers that need plain text pass it through StripMarkup.
func NormalizeRich(raw RichSummary) types.ArticleSummary {
	s := types.ArticleSummary{
		Title:        raw.Title,
		DisplayTitle: raw.DisplayTitle,
		Extract:      raw.Extract,
		CanonicalURL: raw.ContentURLs.Desktop.Page,
	}
	if s.DisplayTitle == "" {
		s.DisplayTitle = s.Title
	}
	if raw.Thumbnail != nil {
		s.ThumbnailURL = raw.Thumbnail.Source
	}
	if s.CanonicalURL == "" && s.Title != "" {
		s.CanonicalURL = ArticleURL(s.Title)
	}
	return s
}

// NormalizeBasic converts an extracts-query page. A page flagged missing
// yields ErrNotFound. The basic shape never carries a thumbnail.
func NormalizeBasic(raw BasicSummary, fallbackTitle string) (types.ArticleSummary, error) {
	if raw.IsMissing() {
		return types.ArticleSummary{}, fmt.Errorf("%q: %w", fallbackTitle, ErrNotFound)
	}

	title := raw.Title
	if title == "" {
		title = fallbackTitle
	}
	canonical := raw.FullURL
	if canonical == "" {
		canonical = ArticleURL(fallbackTitle)
	}
	return types.ArticleSummary{
		Title:        title,
		DisplayTitle: title,
		Extract:      raw.Extract,
		CanonicalURL: canonical,
	}, nil
}

// StripMarkup returns the visible text of an HTML fragment: tags are
// dropped, entities decoded, and script/style bodies skipped. The result
// is trimmed of surrounding whitespace.
func StripMarkup(markup string) string {
	if !strings.ContainsAny(markup, "<&") {
		return strings.TrimSpace(markup)
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	hidden := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way keep what was read.
			return strings.TrimSpace(b.String())
		case html.TextToken:
			if hidden == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if isHiddenTag(string(name)) {
				hidden++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if isHiddenTag(string(name)) && hidden > 0 {
				hidden--
			}
		}
	}
}

func isHiddenTag(name string) bool {
	return name == "script" || name == "style"
}

// TitleSlug converts a title to its URL form: spaces become underscores
// and the result is path-escaped.
func TitleSlug(title string) string {
	return url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// ArticleURL builds the canonical desktop URL for title.
func ArticleURL(title string) string {
	return ArticleBase + TitleSlug(title)
}
