package readkit

import (
	"context"

	"evalview/internal/adapters/remotezip"
)

// OpenHook runs after a successful open with the resolved archive
type OpenHook func(ctx context.Context, a *remotezip.Archive) error

// WithOpenHooks wraps an Opener and runs hooks after every successful open
// a hook error fails the open so callers never see a half vetted archive
func WithOpenHooks(inner Opener, hooks ...OpenHook) Opener {
	return hookedOpener{inner: inner, hooks: hooks}
}

type hookedOpener struct {
	inner Opener
	hooks []OpenHook
}

// Open delegates to inner then runs all hooks in order
func (h hookedOpener) Open(ctx context.Context, url string) (*remotezip.Archive, error) {
	a, err := h.inner.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	for _, hk := range h.hooks {
		if err := hk(ctx, a); err != nil {
			return nil, err
		}
	}
	return a, nil
}
