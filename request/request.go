// Package request wraps an inbound *http.Request with the derived views a
// routing and content negotiation layer needs: normalized method, media
// type and entity of the body, the authentication session, and the routing
// path with its optional file extension.
//
// Every derived value is computed at most once per Request, and a value
// found absent is remembered as absent. A Request serves exactly one
// inbound request and is not safe for concurrent use.
package request

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/iaconlabs/doze/mediatype"
	"github.com/iaconlabs/doze/negotiator"
)

type contentType struct {
	name   string
	params map[string]string
}

type routing struct {
	path      string
	extension string
	hasExt    bool
}

// Request is the per-request adapter.
type Request struct {
	raw *http.Request
	cfg *Config

	contentType   memo[contentType]
	mediaType     memo[*mediatype.MediaType]
	entity        memo[*mediatype.Entity]
	session       memo[any]
	authenticated memo[bool]
	routing       memo[routing]
}

// New wraps r. cfg is shared and must outlive the request; it is expected
// to have passed Config.Validate.
func New(cfg *Config, r *http.Request) *Request {
	return &Request{raw: r, cfg: cfg}
}

// HTTP returns the wrapped request.
func (r *Request) HTTP() *http.Request { return r.raw }

// Header returns the request headers.
func (r *Request) Header() http.Header { return r.raw.Header }

// Context returns the context of the wrapped request.
func (r *Request) Context() context.Context { return r.raw.Context() }

// Method returns the raw request method.
func (r *Request) Method() string { return r.raw.Method }

// NormalizedMethod returns the method in lower case, reporting HEAD as
// "get". Use IsGetOrHead or Method to tell the two apart.
func (r *Request) NormalizedMethod() string {
	if r.raw.Method == http.MethodHead {
		return "get"
	}
	return strings.ToLower(r.raw.Method)
}

// IsGetOrHead reports whether the raw method is exactly GET or HEAD.
func (r *Request) IsGetOrHead() bool {
	return r.raw.Method == http.MethodGet || r.raw.Method == http.MethodHead
}

// IsOptions reports whether the raw method is exactly OPTIONS.
func (r *Request) IsOptions() bool {
	return r.raw.Method == http.MethodOptions
}

// ContentType returns the Content-Type header as sent by the client.
func (r *Request) ContentType() string {
	return r.raw.Header.Get("Content-Type")
}

func (r *Request) parsedContentType() (contentType, bool) {
	return r.contentType.get(func() (contentType, bool) {
		name, params := mediatype.Normalize(r.ContentType())
		return contentType{name: name, params: params}, name != ""
	})
}

// MediaTypeParams returns the parameters of the Content-Type header.
func (r *Request) MediaTypeParams() map[string]string {
	ct, _ := r.parsedContentType()
	return ct.params
}

// Charset returns the charset parameter of the Content-Type header.
func (r *Request) Charset() string {
	ct, _ := r.parsedContentType()
	return ct.params["charset"]
}

// ContentLength returns the declared body length, or -1 when none was
// declared. A malformed Content-Length header counts as not declared.
func (r *Request) ContentLength() int64 {
	if v := r.raw.Header.Get("Content-Length"); v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || n < 0 {
			return -1
		}
		return n
	}
	if r.raw.ContentLength > 0 {
		return r.raw.ContentLength
	}
	return -1
}

// MediaType returns the registered media type of the request body. A
// missing Content-Type and an unregistered one both report false.
func (r *Request) MediaType() (*mediatype.MediaType, bool) {
	return r.mediaType.get(func() (*mediatype.MediaType, bool) {
		ct, ok := r.parsedContentType()
		if !ok {
			return nil, false
		}
		return r.cfg.MediaTypes.Lookup(ct.name)
	})
}

// Entity returns the request body as an entity of its media type, or false
// when the body has no registered media type. The body is handed to the
// entity once and read lazily by it, so repeated calls never re-read input.
func (r *Request) Entity() (*mediatype.Entity, bool) {
	return r.entity.get(func() (*mediatype.Entity, bool) {
		mt, ok := r.MediaType()
		if !ok {
			return nil, false
		}
		return mt.NewEntity(mediatype.EntityOptions{
			Stream:   r.raw.Body,
			Length:   r.ContentLength(),
			Encoding: r.Charset(),
			Params:   r.MediaTypeParams(),
		}), true
	})
}

// Session returns the session the configured SessionFromContext finds in
// the request context. The function is called at most once per Request.
func (r *Request) Session() (any, bool) {
	return r.session.get(func() (any, bool) {
		s, ok := r.cfg.SessionFromContext(r.raw.Context())
		return s, ok && s != nil
	})
}

// SessionAuthenticated reports whether there is a session and the
// configured SessionAuthenticated predicate accepts it. The predicate is
// not called when there is no session.
func (r *Request) SessionAuthenticated() bool {
	v, _ := r.authenticated.get(func() (bool, bool) {
		s, ok := r.Session()
		if !ok {
			return false, true
		}
		return r.cfg.SessionAuthenticated(s), true
	})
	return v
}

// DecodedPath returns the percent-decoded request path without its query.
func (r *Request) DecodedPath() string {
	if r.cfg.PathResolver != nil {
		if p, ok := r.cfg.PathResolver(r.raw); ok {
			return p
		}
	}
	p, _ := DefaultPathResolver(r.raw)
	return p
}

// RoutingPathAndExtension splits the decoded path into the path used for
// route matching and an optional file extension. An extension is only
// recognised when MediaTypeExtensions is enabled and the path ends in a dot
// followed by lower-case letters, digits, '-' or '_'.
func (r *Request) RoutingPathAndExtension() (string, string, bool) {
	rt, _ := r.routing.get(func() (routing, bool) {
		path := r.DecodedPath()
		if !r.cfg.MediaTypeExtensions {
			return routing{path: path}, true
		}
		base, ext, ok := splitExtension(path)
		return routing{path: base, extension: ext, hasExt: ok}, true
	})
	return rt.path, rt.extension, rt.hasExt
}

// RoutingPath returns the decoded path minus any recognised extension.
func (r *Request) RoutingPath() string {
	path, _, _ := r.RoutingPathAndExtension()
	return path
}

// Extension returns the recognised file extension, without the dot.
func (r *Request) Extension() (string, bool) {
	_, ext, ok := r.RoutingPathAndExtension()
	return ext, ok
}

// Negotiator returns a content negotiator bound to this request. With
// ignoreUnacceptable set, an Accept header that matches nothing on offer is
// ignored instead of producing negotiator.ErrNotAcceptable.
func (r *Request) Negotiator(ignoreUnacceptable bool) *negotiator.Negotiator {
	return negotiator.New(r, r.cfg.MediaTypes, ignoreUnacceptable)
}

// MediaTypes returns the registry the request resolves media types with.
func (r *Request) MediaTypes() *mediatype.Registry {
	return r.cfg.MediaTypes
}
