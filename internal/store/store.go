// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists research history and saved articles in SQLite.
// History keeps the newest entries first, one per title, capped at
// MaxHistory; saved articles are unique by title.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/wiki-research/pkg/types"
)

const (
	dbFile = "wikiresearch.db"

	// DefaultMaxHistory is the history cap when the config leaves it unset.
	DefaultMaxHistory = 30

	// savedExtractLen is the number of characters of the extract kept on a
	// saved article.
	savedExtractLen = 200
)

// Store manages the history and saved-article SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxHistory int
	now        func() time.Time
}

// NewStore opens or creates the database at dataDir/wikiresearch.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("store data directory is not set")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxHistory: maxHistory,
		now:        time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS history (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL UNIQUE,
			query TEXT NOT NULL,
			wiki_url TEXT NOT NULL,
			timestamp TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS saved (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL UNIQUE,
			query TEXT NOT NULL,
			wiki_url TEXT NOT NULL,
			extract TEXT NOT NULL,
			timestamp TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// AddHistory records result as the newest history entry. An older entry
// with the same title is replaced, and entries beyond the cap are dropped.
func (s *Store) AddHistory(ctx context.Context, result types.ResearchResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history WHERE title = ?`, result.Title); err != nil {
		return fmt.Errorf("removing duplicate history entry: %w", err)
	}

	timestamp := result.Timestamp
	if timestamp == "" {
		timestamp = types.FormatTimestamp(s.now())
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO history (id, title, query, wiki_url, timestamp) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), result.Title, result.Query, result.WikiURL, timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM history WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)`,
		s.maxHistory,
	)
	if err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}

	return tx.Commit()
}

// History returns history entries, newest first.
func (s *Store) History(ctx context.Context) ([]types.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, query, wiki_url, timestamp FROM history ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := []types.HistoryEntry{}
	for rows.Next() {
		var e types.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Query, &e.WikiURL, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearHistory removes every history entry.
func (s *Store) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Save bookmarks result. It reports false without error when an article
// with the same title is already saved.
func (s *Store) Save(ctx context.Context, result types.ResearchResult) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO saved (id, title, query, wiki_url, extract, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(title) DO NOTHING`,
		uuid.NewString(), result.Title, result.Query, result.WikiURL,
		truncateRunes(result.Extract, savedExtractLen), types.FormatTimestamp(s.now()),
	)
	if err != nil {
		return false, fmt.Errorf("saving article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("saving article: %w", err)
	}
	return n > 0, nil
}

// Saved returns saved articles, most recently saved first.
func (s *Store) Saved(ctx context.Context) ([]types.SavedArticle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, query, wiki_url, extract, timestamp FROM saved ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying saved articles: %w", err)
	}
	defer rows.Close()

	articles := []types.SavedArticle{}
	for rows.Next() {
		var a types.SavedArticle
		if err := rows.Scan(&a.ID, &a.Title, &a.Query, &a.WikiURL, &a.Extract, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning saved row: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// RemoveSaved deletes the saved article with title and reports whether
// one existed.
func (s *Store) RemoveSaved(ctx context.Context, title string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved WHERE title = ?`, title)
	if err != nil {
		return false, fmt.Errorf("removing saved article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("removing saved article: %w", err)
	}
	return n > 0, nil
}

// ClearSaved removes every saved article.
func (s *Store) ClearSaved(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saved`); err != nil {
		return fmt.Errorf("clearing saved articles: %w", err)
	}
	return nil
}

// IsSaved reports whether an article with title is saved.
func (s *Store) IsSaved(ctx context.Context, title string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM saved WHERE title = ?`, title).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking saved article: %w", err)
	}
	return n > 0, nil
}

// Stats counts history entries, saved articles, and distinct topics. A
// topic is the part of a history title before the first colon.
func (s *Store) Stats(ctx context.Context) (types.Stats, error) {
	history, err := s.History(ctx)
	if err != nil {
		return types.Stats{}, err
	}

	var stats types.Stats
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM saved`).Scan(&stats.Saved); err != nil {
		return types.Stats{}, fmt.Errorf("counting saved articles: %w", err)
	}

	topics := make(map[string]struct{}, len(history))
	for _, h := range history {
		topic, _, _ := strings.Cut(h.Title, ":")
		topics[strings.TrimSpace(topic)] = struct{}{}
	}
	stats.Queries = len(history)
	stats.Topics = len(topics)
	return stats, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
