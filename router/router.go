// Package router defines the dispatch contract doze applications route
// through, and the context keys shared by adapters and middleware.
package router

import (
	"net/http"
)

// ctxKey is a private type for context keys to avoid collisions with other packages.
type ctxKey string

const (
	// StateKey provides access to the adapter.State holding path parameters.
	StateKey ctxKey = "___doze_state___"
	// RequestKey holds the *request.Request built for the inbound request.
	RequestKey ctxKey = "___doze_request___"
	// ValidationKey is used to store validated data structures after middleware processing.
	ValidationKey ctxKey = "___doze_validation___"
	// NegotiatedKey holds the response media type chosen by the Accepts middleware.
	NegotiatedKey ctxKey = "___doze_negotiated___"
	// RequestIDKey holds the request id assigned by the RequestID middleware.
	RequestIDKey ctxKey = "___doze_request_id___"
)

// Router is implemented by dispatch adapters. Routes are matched against
// the routing path of a request, i.e. with any recognised file extension
// already removed.
type Router interface {
	http.Handler

	// GET registers a new GET route with optional middlewares. HEAD requests are routed to it too.
	GET(path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler)
	// POST registers a new POST route with optional middlewares.
	POST(path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler)
	// PUT registers a new PUT route with optional middlewares.
	PUT(path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler)
	// DELETE registers a new DELETE route with optional middlewares.
	DELETE(path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler)
	// OPTIONS registers a new OPTIONS route with optional middlewares.
	OPTIONS(path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler)
	// ANY registers the handler for every method.
	ANY(path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler)

	Handle(method, path string, h http.Handler, mws ...func(http.Handler) http.Handler)
	HandleFunc(method, path string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler)

	// Use adds middlewares applied to routes registered afterwards.
	Use(mws ...func(http.Handler) http.Handler)
	// Param retrieves a path parameter by its key from the given request.
	Param(r *http.Request, key string) string
	// Group creates a new route group with a common prefix.
	Group(prefix string) Router
	// Engine returns the underlying dispatch engine.
	Engine() any
}
