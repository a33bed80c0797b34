package readkit

import (
	"context"
	"testing"
	"time"

	"evalview/internal/adapters/remotezip"
)

func TestOpenWithin_AddsDeadlineWhenMissing(t *testing.T) {
	t.Parallel()

	var sawDeadline bool
	op := OpenerFunc(func(ctx context.Context, _ string) (*remotezip.Archive, error) {
		_, sawDeadline = ctx.Deadline()
		return &remotezip.Archive{}, nil
	})

	_, err := OpenWithin(context.Background(), 5*time.Second, op, "https://logs.test/run.eval")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawDeadline {
		t.Fatalf("expected OpenWithin to add a deadline for a background context")
	}
}

func TestOpenWithin_ZeroFallbackLeavesContextBare(t *testing.T) {
	t.Parallel()

	var sawDeadline bool
	op := OpenerFunc(func(ctx context.Context, _ string) (*remotezip.Archive, error) {
		_, sawDeadline = ctx.Deadline()
		return &remotezip.Archive{}, nil
	})

	_, err := OpenWithin(context.Background(), 0, op, "https://logs.test/run.eval")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawDeadline {
		t.Fatalf("zero fallback must not impose a deadline")
	}
}

func TestOpenWithin_KeepsExistingDeadline(t *testing.T) {
	t.Parallel()

	want := time.Now().Add(time.Hour)
	ctx, cancel := context.WithDeadline(context.Background(), want)
	defer cancel()

	var got time.Time
	op := OpenerFunc(func(ctx context.Context, _ string) (*remotezip.Archive, error) {
		got, _ = ctx.Deadline()
		return &remotezip.Archive{}, nil
	})

	// fallback is much shorter than the caller deadline; the caller's must win
	_, err := OpenWithin(ctx, time.Millisecond, op, "https://logs.test/run.eval")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("deadline changed: got %v want %v", got, want)
	}
}
