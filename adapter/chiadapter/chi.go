// Package chiadapter implements router.Router on top of the go-chi router.
package chiadapter

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iaconlabs/doze/adapter"
	"github.com/iaconlabs/doze/router"
)

// ChiAdapter implements router.Router using the chi v5 router.
type ChiAdapter struct {
	mux         *chi.Mux
	prefix      string
	middlewares []func(http.Handler) http.Handler // local to the adapter or group
}

var _ router.Router = (*ChiAdapter)(nil)

// NewChiAdapter initializes a new adapter with an empty chi router.
func NewChiAdapter() *ChiAdapter {
	return &ChiAdapter{
		mux: chi.NewRouter(),
	}
}

// Param retrieves a path parameter captured for r.
func (a *ChiAdapter) Param(r *http.Request, key string) string {
	state, _ := adapter.StateFrom(r)
	return state.Lookup(key)
}

// ServeHTTP dispatches requests to the chi multiplexer.
func (a *ChiAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, adapter.WithParams(r, nil))
}

// Use adds middlewares to the local stack. They are not installed with
// chi's own Use so that groups stay isolated.
func (a *ChiAdapter) Use(mws ...func(http.Handler) http.Handler) {
	a.middlewares = append(a.middlewares, mws...)
}

// Group returns a new adapter instance for the specified prefix.
func (a *ChiAdapter) Group(prefix string) router.Router {
	mwsCopy := make([]func(http.Handler) http.Handler, len(a.middlewares))
	copy(mwsCopy, a.middlewares)

	return &ChiAdapter{
		mux:         a.mux,
		prefix:      adapter.JoinPaths(a.prefix, prefix),
		middlewares: mwsCopy,
	}
}

// GET registers a GET route and the matching HEAD route.
func (a *ChiAdapter) GET(p string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.register(http.MethodGet, p, h, m...)
	a.register(http.MethodHead, p, h, m...)
}

func (a *ChiAdapter) POST(p string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.register(http.MethodPost, p, h, m...)
}

func (a *ChiAdapter) PUT(p string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.register(http.MethodPut, p, h, m...)
}

func (a *ChiAdapter) DELETE(p string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.register(http.MethodDelete, p, h, m...)
}

func (a *ChiAdapter) OPTIONS(p string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.register(http.MethodOptions, p, h, m...)
}

// ANY registers a route matching every method.
func (a *ChiAdapter) ANY(p string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.register("", p, h, m...)
}

// Handle registers h for method. Methods chi does not know, such as PURGE,
// are registered with chi first.
func (a *ChiAdapter) Handle(method, p string, h http.Handler, m ...func(http.Handler) http.Handler) {
	chi.RegisterMethod(strings.ToUpper(method))
	a.register(strings.ToUpper(method), p, h, m...)
}

func (a *ChiAdapter) HandleFunc(method, p string, h http.HandlerFunc, m ...func(http.Handler) http.Handler) {
	a.Handle(method, p, h, m...)
}

// Engine returns the underlying *chi.Mux.
func (a *ChiAdapter) Engine() any { return a.mux }

// chiParam is a route parameter as chi names it, paired with the key it is
// published under.
type chiParam struct {
	chiName string
	key     string
}

// transformPath converts ":name.ext" segments into chi's "{name}" and a
// trailing "*rest" into chi's "*".
func transformPath(path string) (string, []chiParam) {
	if before, after, found := strings.Cut(path, "*"); found {
		name := after
		if name == "" {
			name = "any"
		}
		pattern, ps := transformSegments(before)
		return pattern + "*", append(ps, chiParam{chiName: "*", key: name})
	}

	return transformSegments(path)
}

func transformSegments(path string) (string, []chiParam) {
	var params []chiParam
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		name, found := strings.CutPrefix(seg, ":")
		if !found {
			continue
		}
		base, _, _ := strings.Cut(name, ".")
		segments[i] = "{" + base + "}"
		params = append(params, chiParam{chiName: base, key: name})
	}
	return strings.Join(segments, "/"), params
}

// wrapState copies the chi URL parameters into the adapter state before the
// middleware onion runs.
func (a *ChiAdapter) wrapState(onion http.Handler, params []chiParam) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values := make(map[string]string, len(params))
		for _, p := range params {
			if val := chi.URLParam(r, p.chiName); val != "" {
				values[p.key] = val
			}
		}
		onion.ServeHTTP(w, adapter.WithParams(r, values))
	})
}

func (a *ChiAdapter) register(method, path string, h http.Handler, routeMws ...func(http.Handler) http.Handler) {
	chiPath, params := transformPath(path)
	fullPath := adapter.JoinPaths(a.prefix, chiPath)

	// Route middlewares are the innermost layer, group ones wrap them.
	finalHandler := h
	for i := len(routeMws) - 1; i >= 0; i-- {
		finalHandler = routeMws[i](finalHandler)
	}
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		finalHandler = a.middlewares[i](finalHandler)
	}

	if method == "" {
		a.mux.Handle(fullPath, a.wrapState(finalHandler, params))
		return
	}
	a.mux.Method(method, fullPath, a.wrapState(finalHandler, params))
}
