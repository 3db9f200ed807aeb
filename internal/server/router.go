// Package server composes the global middleware stack, mounts feature routers
// by path prefix and runs the HTTP listener.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mtlprog/cartservice/internal/config"
	"github.com/mtlprog/cartservice/internal/middleware"
)

// Route delegates every request under Prefix to Handler.
type Route struct {
	Prefix  string
	Handler http.Handler
}

// RouterOptions configures the global middleware stack.
type RouterOptions struct {
	Logger      *slog.Logger
	CORSOrigins []string
	BodyLimit   int64
	Metrics     *middleware.Metrics // optional
}

// NewRouter builds the request pipeline and mounts routes.
// Paths outside every prefix get the router's default 404.
func NewRouter(opts RouterOptions, routes ...Route) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.BodyLimit
	if limit <= 0 {
		limit = config.DefaultBodyLimit
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Handler)
	}
	// Inside the logger and metrics so a recovered panic is recorded as a 500.
	r.Use(chimw.Recoverer)
	r.Use(middleware.NewCORS(opts.CORSOrigins).Handler)
	r.Use(middleware.JSONBody(limit))
	r.Use(middleware.URLEncodedBody(limit))

	for _, route := range routes {
		r.Mount(route.Prefix, route.Handler)
	}

	return r
}
