package main

import (
	"context"

	"evalview/internal/platform/config"
	"evalview/internal/platform/logger"
	phttp "evalview/internal/platform/net/http"

	"evalview/internal/services/api"
)

func main() {
	// service-scoped config (EVALVIEW_*)
	root := config.New()
	cfg := root.Prefix("EVALVIEW_")

	// bring up logging early
	l := logger.Get()

	// http server (reads EVALVIEW_API_PORT)
	srv := phttp.NewServer(cfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         cfg,
			Logger:         l,
			EnableProfiler: cfg.MayBool("PROFILER", false),
		},
	)

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
