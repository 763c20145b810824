// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research turns a free-text query into one ResearchResult by
// driving the content source through search, summary with fallback, and
// related-link lookup. Per-candidate failures are recovered locally; only
// empty queries, no-results, unreachable sources, and unexpected failures
// reach the caller.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/wiki-research/internal/wiki"
	"github.com/pdiddy/wiki-research/pkg/types"
)

const (
	// MaxCandidates is the number of ranked search hits tried for a summary.
	MaxCandidates = 3

	// MaxRelated caps RelatedTitles on the result.
	MaxRelated = 10

	// SubstantialExtractLen is the trimmed extract length above which a
	// summary ends the candidate loop. It is a tunable heuristic kept at
	// 30 for compatibility; shorter extracts are accepted but the next
	// candidate is still tried.
	SubstantialExtractLen = 30

	// NoSummaryPlaceholder is the extract used when neither a summary nor
	// the search snippet yields any text.
	NoSummaryPlaceholder = "No summary available for this article."
)

var (
	// ErrEmptyQuery is returned for blank queries before any network call.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrNoResults means search succeeded but matched nothing.
	ErrNoResults = errors.New("no matching articles")

	// ErrNetwork means the content source could not be reached. It is the
	// same sentinel the wiki client uses.
	ErrNetwork = wiki.ErrNetwork

	// ErrUnexpected wraps any other failure of the search step.
	ErrUnexpected = errors.New("research failed")
)

// Source is the content source the orchestrator drives. *wiki.Client
// satisfies it.
type Source interface {
	Search(ctx context.Context, query string) ([]types.SearchCandidate, error)
	Summary(ctx context.Context, title string) (types.ArticleSummary, error)
	Related(ctx context.Context, title string) []string
}

// Researcher runs research calls against a Source. It holds no per-call
// state, so one Researcher may serve concurrent calls.
type Researcher struct {
	source Source
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Researcher.
type Option func(*Researcher)

// WithLogger sets the logger used for per-candidate diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(r *Researcher) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides the clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Researcher) {
		if now != nil {
			r.now = now
		}
	}
}

// New returns a Researcher over src.
func New(src Source, opts ...Option) *Researcher {
	r := &Researcher{
		source: src,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// accepted is the candidate whose summary currently backs the result.
type accepted struct {
	candidate types.SearchCandidate
	summary   types.ArticleSummary
}

func (a *accepted) usable() bool {
	return a != nil && strings.TrimSpace(a.summary.Extract) != ""
}

// Research searches for query, picks a summary from the top candidates,
// falls back to the top search snippet when no summary has text, attaches
// related titles, and returns the assembled result.
func (r *Researcher) Research(ctx context.Context, query string) (types.ResearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.ResearchResult{}, ErrEmptyQuery
	}

	candidates, err := r.source.Search(ctx, query)
	if err != nil {
		if errors.Is(err, wiki.ErrNetwork) {
			r.logger.Debug("search transport failure", zap.String("query", query), zap.Error(err))
			return types.ResearchResult{}, fmt.Errorf("searching %q: %w", query, ErrNetwork)
		}
		return types.ResearchResult{}, fmt.Errorf("%w: searching %q: %w", ErrUnexpected, query, err)
	}
	if len(candidates) == 0 {
		return types.ResearchResult{}, fmt.Errorf("searching %q: %w", query, ErrNoResults)
	}

	best := r.pickSummary(ctx, candidates)
	if !best.usable() {
		r.logger.Info("no usable summary, using search snippet",
			zap.String("query", query), zap.String("title", candidates[0].Title))
		best = degraded(candidates[0])
	}

	usedTitle := best.candidate.Title
	related := r.source.Related(ctx, usedTitle)

	return r.assemble(query, best, related), nil
}

// pickSummary fetches summaries for up to MaxCandidates candidates in rank
// order. Each success replaces the current best unless it has no text and
// the current best does. The loop ends at the first substantial extract.
func (r *Researcher) pickSummary(ctx context.Context, candidates []types.SearchCandidate) *accepted {
	var best *accepted
	for i, c := range candidates[:min(len(candidates), MaxCandidates)] {
		summary, err := r.source.Summary(ctx, c.Title)
		if err != nil {
			r.logger.Debug("candidate summary failed",
				zap.Int("rank", i+1), zap.String("title", c.Title), zap.Error(err))
			continue
		}

		next := &accepted{candidate: c, summary: summary}
		if next.usable() || !best.usable() {
			best = next
		}

		n := utf8.RuneCountInString(strings.TrimSpace(summary.Extract))
		r.logger.Debug("candidate summary accepted",
			zap.Int("rank", i+1), zap.String("title", c.Title), zap.Int("extract_len", n))
		if n > SubstantialExtractLen {
			break
		}
	}
	return best
}

// degraded synthesizes a summary from a search candidate alone.
func degraded(c types.SearchCandidate) *accepted {
	extract := wiki.StripMarkup(c.Snippet)
	if extract == "" {
		extract = NoSummaryPlaceholder
	}
	return &accepted{
		candidate: c,
		summary: types.ArticleSummary{
			Title:        c.Title,
			DisplayTitle: c.Title,
			Extract:      extract,
			CanonicalURL: wiki.ArticleURL(c.Title),
		},
	}
}

func (r *Researcher) assemble(query string, best *accepted, related []string) types.ResearchResult {
	s := best.summary
	usedTitle := best.candidate.Title

	title := firstNonEmpty(s.Title, usedTitle)
	extract := s.Extract
	if extract == "" {
		extract = firstNonEmpty(wiki.StripMarkup(best.candidate.Snippet), NoSummaryPlaceholder)
	}
	wikiURL := s.CanonicalURL
	if wikiURL == "" {
		wikiURL = wiki.ArticleURL(usedTitle)
	}

	n := min(len(related), MaxRelated)
	titles := make([]string, n)
	copy(titles, related[:n])

	return types.ResearchResult{
		Query:         query,
		Title:         title,
		DisplayTitle:  firstNonEmpty(s.DisplayTitle, title),
		Extract:       extract,
		ThumbnailURL:  s.ThumbnailURL,
		WikiURL:       wikiURL,
		RelatedTitles: titles,
		Timestamp:     types.FormatTimestamp(r.now()),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
