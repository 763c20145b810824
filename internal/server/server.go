// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes research, history, and saved articles as a JSON
// HTTP API for browser front ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/wiki-research/internal/research"
	"github.com/pdiddy/wiki-research/internal/store"
	"github.com/pdiddy/wiki-research/pkg/types"
)

const (
	defaultAddr            = ":8080"
	defaultShutdownTimeout = 10 * time.Second
)

// Researcher runs one research call.
type Researcher interface {
	Research(ctx context.Context, query string) (types.ResearchResult, error)
}

// SectionSource looks up an article outline.
type SectionSource interface {
	Sections(ctx context.Context, title string) ([]types.Section, error)
}

// Server wires the HTTP routes to the researcher and the store.
type Server struct {
	researcher Researcher
	sections   SectionSource
	store      *store.Store
	cfg        types.ServeConfig
	logger     *zap.Logger
}

// New returns a Server. A nil logger discards logs.
func New(r Researcher, sections SectionSource, st *store.Store, cfg types.ServeConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &Server{researcher: r, sections: sections, store: st, cfg: cfg, logger: logger}
}

// Handler builds the gin engine with all routes registered.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	// Titles such as "AC/DC" arrive as one escaped path segment.
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.Use(gin.Recovery(), s.requestLogger())

	corsCfg := cors.Config{
		AllowOrigins:  s.cfg.AllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "wiki-research"})
	})

	api := router.Group("/api")
	api.GET("/research", s.handleResearch)
	api.GET("/sections", s.handleSections)
	api.GET("/history", s.handleHistory)
	api.DELETE("/history", s.handleClearHistory)
	api.GET("/saved", s.handleSaved)
	api.GET("/saved/status", s.handleSavedStatus)
	api.POST("/saved", s.handleSave)
	api.DELETE("/saved", s.handleClearSaved)
	api.DELETE("/saved/:title", s.handleRemoveSaved)
	api.GET("/stats", s.handleStats)

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting wiki-research API", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down wiki-research API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) handleResearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	result, err := s.researcher.Research(c.Request.Context(), query)
	if err != nil {
		s.logger.Warn("research failed", zap.String("query", query), zap.Error(err))
		c.JSON(researchStatus(err), gin.H{
			"error":   errorCode(err),
			"message": research.UserMessage(err, query),
		})
		return
	}

	if err := s.store.AddHistory(c.Request.Context(), result); err != nil {
		s.logger.Warn("recording history failed", zap.String("title", result.Title), zap.Error(err))
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSections(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "Query parameter 'title' is required"})
		return
	}
	sections, err := s.sections.Sections(c.Request.Context(), title)
	if err != nil {
		s.logger.Warn("sections lookup failed", zap.String("title", title), zap.Error(err))
		c.JSON(researchStatus(err), gin.H{"error": errorCode(err), "message": research.UserMessage(err, title)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title, "sections": sections})
}

func (s *Server) handleHistory(c *gin.Context) {
	entries, err := s.store.History(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleClearHistory(c *gin.Context) {
	if err := s.store.ClearHistory(c.Request.Context()); err != nil {
		s.internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSaved(c *gin.Context) {
	articles, err := s.store.Saved(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (s *Server) handleSave(c *gin.Context) {
	var result types.ResearchResult
	if err := c.ShouldBindJSON(&result); err != nil || strings.TrimSpace(result.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "Body must be a research result with a title"})
		return
	}

	saved, err := s.store.Save(c.Request.Context(), result)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if !saved {
		c.JSON(http.StatusOK, gin.H{"saved": false, "title": result.Title})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"saved": true, "title": result.Title})
}

func (s *Server) handleSavedStatus(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "Query parameter 'title' is required"})
		return
	}
	saved, err := s.store.IsSaved(c.Request.Context(), title)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title, "saved": saved})
}

func (s *Server) handleRemoveSaved(c *gin.Context) {
	removed, err := s.store.RemoveSaved(c.Request.Context(), c.Param("title"))
	if err != nil {
		s.internalError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Article is not saved"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClearSaved(c *gin.Context) {
	if err := s.store.ClearSaved(c.Request.Context()); err != nil {
		s.internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "Something went wrong. Please try again."})
}

func researchStatus(err error) int {
	switch {
	case errors.Is(err, research.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, research.ErrNoResults):
		return http.StatusNotFound
	case errors.Is(err, research.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, research.ErrEmptyQuery):
		return "empty_query"
	case errors.Is(err, research.ErrNoResults):
		return "no_results"
	case errors.Is(err, research.ErrNetwork):
		return "network"
	default:
		return "unexpected"
	}
}
