package pipeline

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/dgallion1/libgest/internal/source"
)

// MaxRetries bounds the fetch attempts per document.
const MaxRetries = 3

const (
	fetchBackoffBase     = 500 * time.Millisecond
	rateLimitBackoffBase = 2 * time.Second
	fetchBackoffCap      = 8 * time.Second
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *source.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns the wait before retrying a document fetch after attempt n
// (0-indexed) failed with err. A rate-limited source starts from a longer
// base. Up to half the base is added as jitter.
func Backoff(attempt int, err error) time.Duration {
	base := fetchBackoffBase
	var retryErr *source.RetryableError
	if errors.As(err, &retryErr) && retryErr.StatusCode == http.StatusTooManyRequests {
		base = rateLimitBackoffBase
	}
	base <<= uint(min(attempt, 8))
	if base > fetchBackoffCap {
		base = fetchBackoffCap
	}
	return base + time.Duration(rand.Int64N(int64(base)/2))
}
