// Package readkit provides common types and helpers for archive backed read repos
package readkit

import (
	"context"

	"evalview/internal/adapters/remotezip"
)

// Opener resolves a log URL to an opened archive
// implementations may cache, retry, or decorate the open path
type Opener interface {
	Open(ctx context.Context, url string) (*remotezip.Archive, error)
}

// OpenerFunc lets you create an Opener from a function
type OpenerFunc func(ctx context.Context, url string) (*remotezip.Archive, error)

// Open calls the underlying function
func (f OpenerFunc) Open(ctx context.Context, url string) (*remotezip.Archive, error) {
	return f(ctx, url)
}

// WithArchive opens url through op and hands the archive to fn
// archives hold no resources, so there is nothing to release afterwards
func WithArchive(ctx context.Context, op Opener, url string, fn func(a *remotezip.Archive) error) error {
	a, err := op.Open(ctx, url)
	if err != nil {
		return err
	}
	return fn(a)
}
