package module

import (
	"context"
	"encoding/json"

	"evalview/internal/core/evallog"
	logviewdom "evalview/internal/services/logview/domain"
	logviewsvc "evalview/internal/services/logview/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptReaderPort adapts the logview service to the domain port interface
type adaptReaderPort struct{ svc logviewsvc.Service }

// ReadHeader implements the domain ReaderPort interface
func (a adaptReaderPort) ReadHeader(ctx context.Context, file string) (evallog.Header, error) {
	return a.svc.ReadHeader(ctx, file)
}

// ReadSummary implements the domain ReaderPort interface
func (a adaptReaderPort) ReadSummary(ctx context.Context, file string) (evallog.Summary, error) {
	return a.svc.ReadSummary(ctx, file)
}

// ReadSample implements the domain ReaderPort interface
func (a adaptReaderPort) ReadSample(ctx context.Context, file, id string, epoch int) (json.RawMessage, error) {
	return a.svc.ReadSample(ctx, file, id, epoch)
}

// ReadFullLog implements the domain ReaderPort interface
func (a adaptReaderPort) ReadFullLog(ctx context.Context, file string) (evallog.Log, error) {
	return a.svc.ReadFullLog(ctx, file)
}

// Entries implements the domain ReaderPort interface
func (a adaptReaderPort) Entries(ctx context.Context, file string) (logviewdom.Listing, error) {
	return a.svc.Entries(ctx, file)
}

// Invalidate implements the domain ReaderPort interface
func (a adaptReaderPort) Invalidate(file string) logviewdom.InvalidateResult {
	return a.svc.Invalidate(file)
}

// Purge implements the domain ReaderPort interface
func (a adaptReaderPort) Purge() logviewdom.PurgeResult {
	return a.svc.Purge()
}
