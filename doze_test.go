package doze_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iaconlabs/doze"
	"github.com/iaconlabs/doze/adapter"
	"github.com/iaconlabs/doze/adapter/muxadapter"
	"github.com/iaconlabs/doze/mediatype"
	"github.com/iaconlabs/doze/request"
	"github.com/iaconlabs/doze/router"
)

func noSession(context.Context) (any, bool) { return nil, false }
func never(any) bool                      { return false }

func testConfig(extensions bool) *request.Config {
	return &request.Config{
		MediaTypeExtensions:  extensions,
		SessionFromContext:   noSession,
		SessionAuthenticated: never,
		MediaTypes:           mediatype.DefaultRegistry(),
	}
}

func newApp(t *testing.T, extensions bool) *doze.Application {
	t.Helper()
	app, err := doze.New(testConfig(extensions), muxadapter.NewMuxAdapter(muxadapter.SimpleCleanerMuxConfig()))
	require.NoError(t, err)
	return app
}

func TestApplication_Contract(t *testing.T) {
	adapter.RunRouterContract(t, func() router.Router {
		return newApp(t, true)
	})
}

func TestNew_Errors(t *testing.T) {
	_, err := doze.New(testConfig(true), nil)
	assert.ErrorIs(t, err, doze.ErrNoRouter)

	cfg := testConfig(true)
	cfg.SessionFromContext = nil
	_, err = doze.New(cfg, muxadapter.NewMuxAdapter(nil))
	assert.ErrorIs(t, err, request.ErrInvalidConfig)

	_, err = doze.New(nil, muxadapter.NewMuxAdapter(nil))
	assert.True(t, errors.Is(err, request.ErrInvalidConfig))
}

func TestApplication_ExtensionRouting(t *testing.T) {
	cases := []struct {
		name       string
		extensions bool
		target     string
		wantCode   int
		wantBody   string
	}{
		{"extension stripped before matching", true, "/users/42.json", http.StatusOK, "42|json|/users/42.json"},
		{"no extension", true, "/users/42", http.StatusOK, "42||/users/42"},
		{"extensions disabled", false, "/users/42.json", http.StatusOK, "42.json||/users/42.json"},
		{"dot in the middle stays", true, "/users/a.b.json", http.StatusOK, "a.b|json|/users/a.b.json"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp(t, tc.extensions)
			app.GET("/users/:id", func(w http.ResponseWriter, r *http.Request) {
				req, ok := request.FromRequest(r)
				require.True(t, ok)
				ext, _ := req.Extension()
				_, _ = w.Write([]byte(app.Param(r, "id") + "|" + ext + "|" + req.DecodedPath()))
			})

			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))

			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Equal(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestApplication_HeadUsesGetRoute(t *testing.T) {
	app := newApp(t, true)
	app.GET("/report", func(w http.ResponseWriter, r *http.Request) {
		req, _ := request.FromRequest(r)
		w.Header().Set("X-Method", req.NormalizedMethod())
	})

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/report.json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "get", rec.Header().Get("X-Method"))
}

func TestApplication_RequestAdapterIsShared(t *testing.T) {
	app := newApp(t, true)

	var fromMiddleware *request.Request
	app.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromMiddleware, _ = request.FromRequest(r)
			next.ServeHTTP(w, r)
		})
	})
	app.GET("/ping", func(_ http.ResponseWriter, r *http.Request) {
		req, _ := request.FromRequest(r)
		assert.Same(t, fromMiddleware, req)
	})

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NotNil(t, fromMiddleware)
}

func TestApplication_Accessors(t *testing.T) {
	cfg := testConfig(true)
	app, err := doze.New(cfg, muxadapter.NewMuxAdapter(nil), doze.WithLogger(nil))
	require.NoError(t, err)

	assert.Same(t, cfg, app.Config())
	assert.IsType(t, &http.ServeMux{}, app.Engine())
}
