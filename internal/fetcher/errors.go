package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Fetch failure classifications. All three fold into a single per-site
// failure outcome; the distinction exists so error messages tell the
// operator what actually went wrong.
var (
	// ErrTimeout indicates the fetch exceeded its per-request timeout,
	// either waiting for the response or while reading the body.
	ErrTimeout = errors.New("fetch timed out")

	// ErrConnection indicates a network-level failure: DNS resolution,
	// connection refused, reset, and similar.
	ErrConnection = errors.New("connection failed")

	// ErrDecode indicates the response body could not be decoded to text.
	ErrDecode = errors.New("response decode failed")
)

// classify wraps a raw transport error with the matching sentinel so
// callers can use errors.Is while the message keeps the underlying detail.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %s", ErrConnection, err)
}
