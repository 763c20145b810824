// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"errors"
	"fmt"

	"github.com/pdiddy/wiki-research/internal/wiki"
)

// UserMessage turns a Research error into guidance for the end user.
func UserMessage(err error, query string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return "Enter a topic to research."
	case errors.Is(err, ErrNoResults):
		return fmt.Sprintf("No Wikipedia articles found for %q. Try rephrasing or use a broader term.", query)
	case errors.Is(err, ErrNetwork):
		return "Could not reach Wikipedia. Check your network connection or proxy settings and try again."
	case wiki.IsNotFound(err):
		return "The article could not be loaded. Try a different search term."
	default:
		return fmt.Sprintf("Something went wrong: %v. Please try again.", err)
	}
}
