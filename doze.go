// Package doze serves HTTP requests through a per-request adapter that adds
// content negotiation, file extension based content typing and session
// delegation to the standard *http.Request, and dispatches them through an
// interchangeable router adapter.
package doze

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/iaconlabs/doze/request"
	"github.com/iaconlabs/doze/router"
)

// ErrNoRouter is returned by New when no router adapter is given.
var ErrNoRouter = errors.New("doze: no router")

// Ensure Application implements the Router interface.
var _ router.Router = &Application{}

// Application wraps a router adapter. For each inbound request it builds a
// *request.Request, attaches it to the request context and dispatches on the
// routing path, so routes never see a recognised file extension.
type Application struct {
	cfg    *request.Config
	router router.Router
	logger *slog.Logger
}

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Application. cfg is validated and shared by every request;
// it must not be modified afterwards.
func New(cfg *request.Config, adp router.Router, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if adp == nil {
		return nil, ErrNoRouter
	}

	app := &Application{
		cfg:    cfg,
		router: adp,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app, nil
}

// Config returns the request configuration shared by all requests.
func (a *Application) Config() *request.Config {
	return a.cfg
}

// ServeHTTP builds the request adapter and dispatches to the router.
func (a *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := request.New(a.cfg, r)
	routed := r.WithContext(request.NewContext(r.Context(), req))

	path, ext, hasExt := req.RoutingPathAndExtension()
	if path != r.URL.Path {
		u := *r.URL
		u.Path = path
		u.RawPath = ""
		routed.URL = &u
	}

	a.logger.DebugContext(r.Context(), "dispatching request",
		slog.String("method", req.NormalizedMethod()),
		slog.String("path", path),
		slog.String("extension", ext),
		slog.Bool("has_extension", hasExt),
	)

	a.router.ServeHTTP(w, routed)
}

// GET registers a GET route through the adapter.
func (a *Application) GET(path string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.router.GET(path, h, m...)
}

// POST registers a POST route through the adapter.
func (a *Application) POST(path string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.router.POST(path, h, m...)
}

// PUT registers a PUT route through the adapter.
func (a *Application) PUT(path string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.router.PUT(path, h, m...)
}

// DELETE registers a DELETE route through the adapter.
func (a *Application) DELETE(path string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.router.DELETE(path, h, m...)
}

// OPTIONS registers an OPTIONS route through the adapter.
func (a *Application) OPTIONS(path string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.router.OPTIONS(path, h, m...)
}

// ANY registers a route for every method through the adapter.
func (a *Application) ANY(path string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.router.ANY(path, h, m...)
}

// Handle registers h for method through the adapter.
func (a *Application) Handle(method, path string, h http.Handler, m ...func(http.Handler) http.Handler) {
	a.router.Handle(method, path, h, m...)
}

// HandleFunc registers h for method through the adapter.
func (a *Application) HandleFunc(method, path string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.router.HandleFunc(method, path, h, m...)
}

// Use adds middlewares to the internal adapter.
func (a *Application) Use(mws ...func(http.Handler) http.Handler) {
	a.router.Use(mws...)
}

// Param retrieves a path parameter through the adapter's logic.
func (a *Application) Param(r *http.Request, key string) string {
	return a.router.Param(r, key)
}

// Group creates a new prefixed group using the adapter's implementation.
// Requests must still enter through the Application to get their adapter.
func (a *Application) Group(prefix string) router.Router {
	return a.router.Group(prefix)
}

// Engine returns the raw underlying dispatch engine.
func (a *Application) Engine() any {
	return a.router.Engine()
}
