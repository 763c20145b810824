// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/wiki-research/internal/httputil"
)

var (
	// ErrNetwork means the content source could not be reached at all.
	ErrNetwork = errors.New("could not reach the content source")

	// ErrNotFound means the source explicitly marked the page as missing.
	ErrNotFound = errors.New("article not found")
)

// APIError reports a non-success HTTP status from the content source.
type APIError struct {
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content source returned HTTP %d", e.Status)
}

// IsNotFound reports whether err is a missing-page marker or an HTTP 404.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// classify maps httputil failures onto the content source taxonomy.
// Errors of any other kind (malformed bodies, request construction) are
// returned unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *httputil.StatusError
	switch {
	case errors.As(err, &se):
		return fmt.Errorf("%s: %w", op, &APIError{Status: se.StatusCode})
	case errors.Is(err, httputil.ErrTransport):
		return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
