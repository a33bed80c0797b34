// Package module wires logview into the API using modkit
package module

import (
	"context"
	"net/http"

	"evalview/internal/adapters/remotezip"
	modkit "evalview/internal/modkit"
	"evalview/internal/modkit/httpkit"
	"evalview/internal/modkit/readkit"
	"evalview/internal/platform/net/middleware"
	str "evalview/internal/platform/strings"
	logviewhttp "evalview/internal/services/logview/http"
	logviewrepo "evalview/internal/services/logview/repo"
	logviewsvc "evalview/internal/services/logview/service"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc  logviewsvc.Service
	auth middleware.AuthPort
}

// New constructs a logview module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("logs"), modkit.WithPrefix("/logs")}, opts...)...)

	o := FromConfig(deps.Cfg)
	t := remotezip.NewHTTPTransport(remotezip.Options{
		Client:    &http.Client{Timeout: o.Timeout},
		UserAgent: o.UserAgent,
	})
	direct := readkit.OpenerFunc(func(ctx context.Context, url string) (*remotezip.Archive, error) {
		return remotezip.Open(ctx, t, url)
	})
	cache := logviewsvc.NewCache(direct, logviewsvc.CacheOptions{Size: o.CacheSize, TTL: o.CacheTTL})
	svc := logviewsvc.New(cache, logviewrepo.NewZip(), logviewsvc.Options{
		MaxSampleBytes: o.MaxSampleBytes,
		Concurrency:    o.Concurrency,
		OpenTimeout:    o.OpenTimeout,
	})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
		auth:      middleware.BearerToken{Token: o.AuthToken},
	}
	m.ports = adaptReaderPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		httpkit.Protected(r, m.auth, func(gr httpkit.Router) {
			logviewhttp.Register(gr, m.svc)
		})
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
