package domain

import (
	"context"
	"encoding/json"

	"evalview/internal/core/evallog"
)

// ReaderPort defines the read surface for eval log archives
type ReaderPort interface {
	// ReadHeader returns the run header, synthesized from the journal when the
	// run never finished
	ReadHeader(ctx context.Context, file string) (evallog.Header, error)

	// ReadSummary returns the header plus every sample summary in (epoch, id)
	// order
	ReadSummary(ctx context.Context, file string) (evallog.Summary, error)

	// ReadSample returns one sample body as recorded by the eval writer
	ReadSample(ctx context.Context, file, id string, epoch int) (json.RawMessage, error)

	// ReadFullLog assembles the header and every sample body
	ReadFullLog(ctx context.Context, file string) (evallog.Log, error)

	// Entries lists archive members without fetching any payloads
	Entries(ctx context.Context, file string) (Listing, error)

	// Invalidate drops any cached handle for the URL
	Invalidate(file string) InvalidateResult

	// Purge drops every cached handle
	Purge() PurgeResult
}
