package readkit

import (
	"context"
	"time"

	"evalview/internal/adapters/remotezip"
)

// OpenWithin opens url with a fallback timeout when ctx carries no deadline
// callers with their own deadline keep it untouched; d <= 0 means no fallback
func OpenWithin(ctx context.Context, d time.Duration, op Opener, url string) (*remotezip.Archive, error) {
	if _, ok := ctx.Deadline(); !ok && d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return op.Open(ctx, url)
}
