// Package api provides the HTTP API for the view server
package api

import (
	"evalview/internal/platform/config"
	"evalview/internal/platform/logger"
	phttp "evalview/internal/platform/net/http"
	"evalview/internal/platform/net/middleware"

	"evalview/internal/modkit"
	"evalview/internal/modkit/httpkit"
	"evalview/internal/modkit/module"

	metamod "evalview/internal/services/api/meta/module"
	logsmod "evalview/internal/services/logview/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Logger         *logger.Logger
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	mods := []module.Module{
		metamod.New(deps),
		logsmod.New(deps),
	}

	// root level liveness, outside the versioned tree
	r.Use(middleware.Heartbeat("/healthz"))

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
