// Package http provides http transport for logview
package http

import (
	stdhttp "net/http"

	"evalview/internal/modkit/httpkit"
	perr "evalview/internal/platform/errors"
	"evalview/internal/platform/logger"
	"evalview/internal/services/logview/domain"
	svc "evalview/internal/services/logview/service"
)

// Register mounts logview endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.GetQuery[domain.LogQuery](r, "/header", h.header)
	httpkit.GetQuery[domain.LogQuery](r, "/summary", h.summary)
	httpkit.GetQuery[domain.SampleQuery](r, "/sample", h.sample)
	httpkit.GetQuery[domain.LogQuery](r, "/full", h.full)
	httpkit.GetQuery[domain.LogQuery](r, "/entries", h.entries)
	httpkit.PostJSON[domain.InvalidateInput](r, "/invalidate", h.invalidate)
	httpkit.Post(r, "/purge", h.purge)
}

type handlers struct{ svc svc.Service }

func (h *handlers) header(r *stdhttp.Request, in domain.LogQuery) (any, error) {
	ctx := logger.WithLogFile(r.Context(), in.File)
	return h.svc.ReadHeader(ctx, in.File)
}

func (h *handlers) summary(r *stdhttp.Request, in domain.LogQuery) (any, error) {
	ctx := logger.WithLogFile(r.Context(), in.File)
	return h.svc.ReadSummary(ctx, in.File)
}

func (h *handlers) sample(r *stdhttp.Request, in domain.SampleQuery) (any, error) {
	ctx := logger.WithLogFile(r.Context(), in.File)
	return h.svc.ReadSample(ctx, in.File, in.ID, in.Epoch)
}

func (h *handlers) full(r *stdhttp.Request, in domain.LogQuery) (any, error) {
	ctx := logger.WithLogFile(r.Context(), in.File)
	return h.svc.ReadFullLog(ctx, in.File)
}

func (h *handlers) entries(r *stdhttp.Request, in domain.LogQuery) (any, error) {
	ctx := logger.WithLogFile(r.Context(), in.File)
	return h.svc.Entries(ctx, in.File)
}

func (h *handlers) invalidate(r *stdhttp.Request, in domain.InvalidateInput) (any, error) {
	if in.File == "" {
		return nil, perr.InvalidArgf("file is required")
	}
	return h.svc.Invalidate(in.File), nil
}

func (h *handlers) purge(r *stdhttp.Request) (any, error) {
	return h.svc.Purge(), nil
}
