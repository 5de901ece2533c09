// Package source fetches raw library documents by library and item UUID.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgallion1/libgest/internal/libdoc"
)

// Fetcher returns the raw serialized source of one library document.
type Fetcher interface {
	FetchSource(ctx context.Context, ref libdoc.LibraryRef, kind libdoc.Kind) (string, error)
}

// ErrNotFound is returned when the document does not exist at the source.
var ErrNotFound = errors.New("source not found")

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
