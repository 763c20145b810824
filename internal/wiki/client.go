// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wiki wraps the encyclopedia's read-only endpoints: keyword
// search, article summary (rich with basic fallback), related links, and
// section outlines. Every call is a single GET with no retry; failures are
// classified as ErrNetwork, *APIError, or ErrNotFound.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/wiki-research/internal/httputil"
	"github.com/pdiddy/wiki-research/pkg/types"
)

const (
	// DefaultAPIBase is the MediaWiki action API endpoint.
	DefaultAPIBase = "https://en.wikipedia.org/w/api.php"

	// DefaultRESTBase is the REST v1 root.
	DefaultRESTBase = "https://en.wikipedia.org/api/rest_v1"

	// SearchLimit is the number of candidates requested from search.
	SearchLimit = 5

	// LinksLimit is the number of linked titles requested for related pages.
	LinksLimit = 15

	// mainNamespace restricts links to articles.
	mainNamespace = "0"
)

// Client queries the content source. The zero value is not usable; build
// one with NewClient. A Client holds no per-call state and is safe for
// concurrent use.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	APIBase   string
	RESTBase  string
}

// NewClient returns a client configured from cfg, filling in the public
// endpoints for any base left empty.
func NewClient(cfg types.SourceConfig) *Client {
	c := &Client{
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		UserAgent: cfg.UserAgent,
		APIBase:   cfg.APIBase,
		RESTBase:  strings.TrimRight(cfg.RESTBase, "/"),
	}
	if c.APIBase == "" {
		c.APIBase = DefaultAPIBase
	}
	if c.RESTBase == "" {
		c.RESTBase = DefaultRESTBase
	}
	return c
}

// Search returns up to SearchLimit candidates for query in ranked order.
// A successful response with no matches yields an empty slice and no error.
func (c *Client) Search(ctx context.Context, query string) ([]types.SearchCandidate, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {strconv.Itoa(SearchLimit)},
		"format":   {"json"},
	}

	var resp searchResponse
	if err := c.get(ctx, c.APIBase+"?"+params.Encode(), &resp); err != nil {
		return nil, classify("search", err)
	}

	candidates := make([]types.SearchCandidate, 0, len(resp.Query.Search))
	for _, hit := range resp.Query.Search {
		candidates = append(candidates, types.SearchCandidate{
			Title:   hit.Title,
			Snippet: hit.Snippet,
		})
	}
	return candidates, nil
}

// Summary returns the canonical summary for title. It tries the rich REST
// summary first and falls back to the basic extracts query when the rich
// call fails or yields a blank extract. Only the fallback's outcome is
// reported; a page flagged missing there returns ErrNotFound.
func (c *Client) Summary(ctx context.Context, title string) (types.ArticleSummary, error) {
	if rich, err := c.richSummary(ctx, title); err == nil {
		if s, err := Normalize(rich, title); err == nil && strings.TrimSpace(s.Extract) != "" {
			return s, nil
		}
	}

	basic, err := c.basicSummary(ctx, title)
	if err != nil {
		return types.ArticleSummary{}, err
	}
	return Normalize(basic, title)
}

func (c *Client) richSummary(ctx context.Context, title string) (RichSummary, error) {
	var raw RichSummary
	err := c.get(ctx, c.RESTBase+"/page/summary/"+TitleSlug(title), &raw)
	return raw, classify("rich summary", err)
}

func (c *Client) basicSummary(ctx context.Context, title string) (BasicSummary, error) {
	params := url.Values{
		"action":      {"query"},
		"titles":      {title},
		"prop":        {"extracts|info"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"inprop":      {"url"},
		"redirects":   {"1"},
		"format":      {"json"},
	}

	var resp basicResponse
	if err := c.get(ctx, c.APIBase+"?"+params.Encode(), &resp); err != nil {
		return BasicSummary{}, classify("basic summary", err)
	}

	page, ok := firstPage(resp.Query.Pages)
	if !ok {
		return BasicSummary{}, fmt.Errorf("basic summary %q: %w", title, ErrNotFound)
	}
	return page, nil
}

// Related returns up to LinksLimit article titles linked from title, in
// source order. It never fails: any error yields an empty slice.
func (c *Client) Related(ctx context.Context, title string) []string {
	params := url.Values{
		"action":      {"query"},
		"titles":      {title},
		"prop":        {"links"},
		"pllimit":     {strconv.Itoa(LinksLimit)},
		"plnamespace": {mainNamespace},
		"format":      {"json"},
	}

	var resp linksResponse
	if err := c.get(ctx, c.APIBase+"?"+params.Encode(), &resp); err != nil {
		return []string{}
	}

	page, ok := firstPage(resp.Query.Pages)
	if !ok {
		return []string{}
	}
	titles := make([]string, 0, len(page.Links))
	for _, l := range page.Links {
		if l.Title != "" {
			titles = append(titles, l.Title)
		}
	}
	return titles
}

// Sections returns the table of contents of title. An HTTP error status or
// an API-level error yields an empty outline; only transport failures and
// malformed bodies are reported.
func (c *Client) Sections(ctx context.Context, title string) ([]types.Section, error) {
	params := url.Values{
		"action":             {"parse"},
		"page":               {title},
		"prop":               {"sections"},
		"disableeditsection": {"1"},
		"redirects":          {"1"},
		"format":             {"json"},
	}

	var resp parseResponse
	err := c.get(ctx, c.APIBase+"?"+params.Encode(), &resp)
	if err != nil {
		cerr := classify("sections", err)
		var apiErr *APIError
		if errors.As(cerr, &apiErr) {
			return []types.Section{}, nil
		}
		return nil, cerr
	}

	sections := make([]types.Section, 0, len(resp.Parse.Sections))
	for _, s := range resp.Parse.Sections {
		sections = append(sections, types.Section{
			Index:  s.Index,
			Level:  s.TOCLevel,
			Number: s.Number,
			Title:  StripMarkup(s.Line),
			Anchor: s.Anchor,
		})
	}
	return sections, nil
}

func (c *Client) get(ctx context.Context, rawURL string, dst any) error {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	return httputil.GetJSON(ctx, client, rawURL, c.UserAgent, dst)
}

// firstPage picks the page from a pages map keyed by page ID. Queries here
// name a single title, so the map normally has one entry; keys are sorted
// so the choice is stable otherwise.
func firstPage[T any](pages map[string]T) (T, bool) {
	var zero T
	if len(pages) == 0 {
		return zero, false
	}
	keys := make([]string, 0, len(pages))
	for k := range pages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return pages[keys[0]], true
}

// Action API JSON structures.
type searchResponse struct {
	Query struct {
		Search []searchHit `json:"search"`
	} `json:"query"`
}

type searchHit struct {
	NS      int    `json:"ns"`
	Title   string `json:"title"`
	PageID  int    `json:"pageid"`
	Snippet string `json:"snippet"`
}

type basicResponse struct {
	Query struct {
		Pages map[string]BasicSummary `json:"pages"`
	} `json:"query"`
}

type linksResponse struct {
	Query struct {
		Pages map[string]linksPage `json:"pages"`
	} `json:"query"`
}

type linksPage struct {
	Title string     `json:"title"`
	Links []pageLink `json:"links"`
}

type pageLink struct {
	NS    int    `json:"ns"`
	Title string `json:"title"`
}

type parseResponse struct {
	Parse struct {
		Title    string         `json:"title"`
		Sections []parseSection `json:"sections"`
	} `json:"parse"`
}

type parseSection struct {
	TOCLevel int    `json:"toclevel"`
	Level    string `json:"level"`
	Line     string `json:"line"`
	Number   string `json:"number"`
	Index    string `json:"index"`
	Anchor   string `json:"anchor"`
}
