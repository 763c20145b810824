// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across components.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrTransport marks failures where no HTTP response was received at all
// (DNS, refused connection, TLS, cancelled context).
var ErrTransport = errors.New("transport failure")

// StatusError reports a response with a non-2xx status code.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned HTTP %d", e.URL, e.StatusCode)
}

// GetJSON issues a single GET for rawURL and decodes a 2xx JSON body into
// dst. It never retries. Transport failures wrap ErrTransport together with
// the underlying cause; non-2xx responses return a *StatusError after the
// body has been drained.
func GetJSON(ctx context.Context, client *http.Client, rawURL, userAgent string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("parsing response from %s: %w", rawURL, err)
	}
	return nil
}
