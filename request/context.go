package request

import (
	"context"
	"net/http"

	"github.com/iaconlabs/doze/router"
)

// NewContext returns a copy of ctx carrying req.
func NewContext(ctx context.Context, req *Request) context.Context {
	return context.WithValue(ctx, router.RequestKey, req)
}

// FromContext returns the Request stored in ctx, if any.
func FromContext(ctx context.Context) (*Request, bool) {
	req, ok := ctx.Value(router.RequestKey).(*Request)
	return req, ok
}

// FromRequest returns the Request an Application attached to r.
func FromRequest(r *http.Request) (*Request, bool) {
	return FromContext(r.Context())
}
