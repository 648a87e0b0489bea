package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/iaconlabs/doze/mediatype"
	"github.com/iaconlabs/doze/request"
)

type sessionKey struct{}

func testConfig() *request.Config {
	return &request.Config{
		MediaTypeExtensions: true,
		MediaTypes:          mediatype.DefaultRegistry(),
		SessionFromContext: func(ctx context.Context) (any, bool) {
			s, ok := ctx.Value(sessionKey{}).(string)
			return s, ok
		},
		SessionAuthenticated: func(s any) bool { return s == "valid" },
	}
}

// attach builds the request adapter the way an Application does.
func attach(r *http.Request) *http.Request {
	req := request.New(testConfig(), r)
	return r.WithContext(request.NewContext(r.Context(), req))
}

func newRequest(method, target, contentType, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rd)
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}
