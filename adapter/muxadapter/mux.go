// Package muxadapter implements router.Router on top of http.ServeMux.
package muxadapter

import (
	"net/http"
	"strings"

	"github.com/iaconlabs/doze/adapter"
	"github.com/iaconlabs/doze/router"
)

const replazor = "___replazor___"

// PathParamCleaner defines the strategy for encoding parameter names that
// might contain invalid characters for ServeMux (like dots).
type PathParamCleaner struct {
	encode func(string) string
}

// MuxConfig holds configuration for the ServeMux adapter.
type MuxConfig struct {
	PathParamCleaner PathParamCleaner
}

// NewDefaultMuxConfig returns a configuration with no path cleaning.
func NewDefaultMuxConfig() *MuxConfig {
	return &MuxConfig{PathParamCleaner: PathParamCleaner{
		encode: func(s string) string { return s },
	}}
}

// SimpleCleanerMuxConfig returns a config that replaces dots with a safe placeholder.
func SimpleCleanerMuxConfig() *MuxConfig {
	return &MuxConfig{PathParamCleaner: PathParamCleaner{
		encode: func(s string) string {
			return strings.ReplaceAll(s, ".", replazor)
		},
	}}
}

// MuxAdapter implements router.Router using [http.ServeMux].
type MuxAdapter struct {
	mux         *http.ServeMux
	prefix      string
	middlewares []func(http.Handler) http.Handler
	cfg         *MuxConfig
}

var _ router.Router = (*MuxAdapter)(nil)

// NewMuxAdapter creates a new adapter. If cfg is nil, defaults are used.
func NewMuxAdapter(cfg *MuxConfig) *MuxAdapter {
	if cfg == nil {
		cfg = NewDefaultMuxConfig()
	}
	return &MuxAdapter{
		mux: http.NewServeMux(),
		cfg: cfg,
	}
}

// Param retrieves a path parameter captured for r.
func (a *MuxAdapter) Param(r *http.Request, key string) string {
	state, _ := adapter.StateFrom(r)
	return state.Lookup(key)
}

// GET registers a GET route. ServeMux also routes HEAD requests to it.
func (a *MuxAdapter) GET(path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
	a.register(http.MethodGet, path, h, mws...)
}

// POST registers a POST route.
func (a *MuxAdapter) POST(path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
	a.register(http.MethodPost, path, h, mws...)
}

// PUT registers a PUT route.
func (a *MuxAdapter) PUT(path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
	a.register(http.MethodPut, path, h, mws...)
}

// DELETE registers a DELETE route.
func (a *MuxAdapter) DELETE(path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
	a.register(http.MethodDelete, path, h, mws...)
}

// OPTIONS registers an OPTIONS route.
func (a *MuxAdapter) OPTIONS(path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
	a.register(http.MethodOptions, path, h, mws...)
}

// ANY registers a route matching every method.
func (a *MuxAdapter) ANY(path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
	a.register("", path, h, mws...)
}

// Handle registers h for an arbitrary method, including non standard ones.
func (a *MuxAdapter) Handle(method, path string, h http.Handler, mws ...func(http.Handler) http.Handler) {
	a.register(method, path, h, mws...)
}

// HandleFunc is Handle for plain functions.
func (a *MuxAdapter) HandleFunc(method, path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
	a.register(method, path, h, mws...)
}

// Group returns an adapter sharing the same ServeMux under prefix. The
// group starts with a copy of the current middlewares.
func (a *MuxAdapter) Group(prefix string) router.Router {
	mwsCopy := make([]func(http.Handler) http.Handler, len(a.middlewares))
	copy(mwsCopy, a.middlewares)
	return &MuxAdapter{
		mux:         a.mux,
		prefix:      adapter.JoinPaths(a.prefix, prefix),
		middlewares: mwsCopy,
		cfg:         a.cfg,
	}
}

// Use adds middlewares to routes registered afterwards.
func (a *MuxAdapter) Use(mws ...func(http.Handler) http.Handler) {
	a.middlewares = append(a.middlewares, mws...)
}

// ServeHTTP dispatches r with an empty parameter state.
func (a *MuxAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, adapter.WithParams(r, nil))
}

// Engine returns the underlying *http.ServeMux.
func (a *MuxAdapter) Engine() any { return a.mux }

func (a *MuxAdapter) register(method, path string, h http.Handler, routeMws ...func(http.Handler) http.Handler) {
	translatedPath, keys := adapter.TranslatePath(path, a.cfg.PathParamCleaner.encode)
	pattern := adapter.JoinPaths(a.prefix, translatedPath)
	if method != "" {
		pattern = method + " " + pattern
	}

	finalHandler := h
	for i := len(routeMws) - 1; i >= 0; i-- {
		finalHandler = routeMws[i](finalHandler)
	}
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		finalHandler = a.middlewares[i](finalHandler)
	}

	a.mux.Handle(pattern, a.wrapState(finalHandler, keys))
}

// wrapState copies the ServeMux path values into the adapter state before
// the middleware onion runs.
func (a *MuxAdapter) wrapState(onion http.Handler, keys []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := make(map[string]string, len(keys))
		for _, k := range keys {
			if val := r.PathValue(a.cfg.PathParamCleaner.encode(k)); val != "" {
				params[k] = val
			}
		}
		onion.ServeHTTP(w, adapter.WithParams(r, params))
	})
}
