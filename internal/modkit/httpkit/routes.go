package httpkit

import "net/http"

// MountUnder mounts a subrouter at a module's prefix (e.g. /logs) and
// applies its per-module middlewares before any route registers
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}
