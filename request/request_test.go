package request_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iaconlabs/doze/mediatype"
	"github.com/iaconlabs/doze/request"
)

type sessionKey struct{}

// counters records how often the configured callables run.
type counters struct {
	sessions int
	auths    int
}

func newConfig(extensions bool, c *counters) *request.Config {
	return &request.Config{
		MediaTypeExtensions: extensions,
		MediaTypes:          mediatype.DefaultRegistry(),
		SessionFromContext: func(ctx context.Context) (any, bool) {
			c.sessions++
			s, ok := ctx.Value(sessionKey{}).(string)
			return s, ok
		},
		SessionAuthenticated: func(s any) bool {
			c.auths++
			return s == "valid"
		},
	}
}

type countingBody struct {
	r     io.Reader
	reads int
}

func (b *countingBody) Read(p []byte) (int, error) {
	b.reads++
	return b.r.Read(p)
}

func (b *countingBody) Close() error { return nil }

func TestNormalizedMethod(t *testing.T) {
	cases := map[string]string{
		http.MethodGet:     "get",
		http.MethodHead:    "get",
		http.MethodPost:    "post",
		http.MethodPut:     "put",
		http.MethodDelete:  "delete",
		http.MethodOptions: "options",
		http.MethodPatch:   "patch",
	}

	cfg := newConfig(false, &counters{})
	for method, want := range cases {
		t.Run(method, func(t *testing.T) {
			req := request.New(cfg, httptest.NewRequest(method, "/", nil))
			assert.Equal(t, want, req.NormalizedMethod())
			assert.Equal(t, method, req.Method())
		})
	}
}

func TestMethodPredicates(t *testing.T) {
	cfg := newConfig(false, &counters{})

	cases := []struct {
		method    string
		getOrHead bool
		options   bool
	}{
		{"GET", true, false},
		{"HEAD", true, false},
		{"OPTIONS", false, true},
		{"POST", false, false},
		{"get", false, false},
		{"options", false, false},
	}

	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Method = tc.method
		req := request.New(cfg, r)
		assert.Equal(t, tc.getOrHead, req.IsGetOrHead(), tc.method)
		assert.Equal(t, tc.options, req.IsOptions(), tc.method)
	}
}

func TestRoutingPathAndExtension(t *testing.T) {
	cases := []struct {
		name       string
		extensions bool
		target     string
		path       string
		ext        string
		hasExt     bool
	}{
		{"disabled keeps the extension", false, "/a/b.json", "/a/b.json", "", false},
		{"enabled splits the extension", true, "/a/b.json", "/a/b", "json", true},
		{"enabled without extension", true, "/a/b", "/a/b", "", false},
		{"upper case is not an extension", true, "/a/b.JSON", "/a/b.JSON", "", false},
		{"only the last dot counts", true, "/a/b.tar.gz", "/a/b.tar", "gz", true},
		{"hyphen underscore and digits", true, "/feed.atom_v-2", "/feed", "atom_v-2", true},
		{"dot in a directory", true, "/a.b/c", "/a.b/c", "", false},
		{"query string is ignored", true, "/a/b.xml?format=json", "/a/b", "xml", true},
		{"percent decoded before splitting", true, "/caf%C3%A9.json", "/café", "json", true},
		{"trailing dot", true, "/a/b.", "/a/b.", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := request.New(newConfig(tc.extensions, &counters{}), httptest.NewRequest(http.MethodGet, tc.target, nil))

			path, ext, ok := req.RoutingPathAndExtension()
			assert.Equal(t, tc.path, path)
			assert.Equal(t, tc.ext, ext)
			assert.Equal(t, tc.hasExt, ok)

			assert.Equal(t, tc.path, req.RoutingPath())
			gotExt, gotOK := req.Extension()
			assert.Equal(t, tc.ext, gotExt)
			assert.Equal(t, tc.hasExt, gotOK)
		})
	}
}

func TestRoutingPath_NoSuffixIsUnchanged(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		req := request.New(newConfig(enabled, &counters{}), httptest.NewRequest(http.MethodGet, "/users/42/posts", nil))
		assert.Equal(t, req.DecodedPath(), req.RoutingPath())
	}
}

func TestRoutingPath_IsMemoized(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/a/b.json", nil)
	req := request.New(newConfig(true, &counters{}), r)
	require.Equal(t, "/a/b", req.RoutingPath())

	r.URL.Path = "/changed"
	assert.Equal(t, "/a/b", req.RoutingPath())
	assert.Equal(t, "/changed", req.DecodedPath())
}

func TestMediaType(t *testing.T) {
	cfg := newConfig(false, &counters{})

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	r.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req := request.New(cfg, r)

	mt, ok := req.MediaType()
	require.True(t, ok)
	assert.Equal(t, mediatype.JSON, mt.Name)
	assert.Equal(t, "UTF-8", req.Charset())
	assert.Equal(t, map[string]string{"charset": "UTF-8"}, req.MediaTypeParams())

	r.Header.Set("Content-Type", "text/plain")
	again, ok := req.MediaType()
	require.True(t, ok)
	assert.Same(t, mt, again, "the lookup is memoized")
}

func TestMediaType_AbsentIsMemoized(t *testing.T) {
	cfg := newConfig(false, &counters{})

	t.Run("missing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		req := request.New(cfg, r)

		_, ok := req.MediaType()
		require.False(t, ok)

		r.Header.Set("Content-Type", "application/json")
		_, ok = req.MediaType()
		assert.False(t, ok)
	})

	t.Run("unregistered", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Content-Type", "application/x-unknown")
		req := request.New(cfg, r)

		_, ok := req.MediaType()
		assert.False(t, ok)
		assert.Equal(t, "application/x-unknown", req.ContentType())

		_, ok = req.Entity()
		assert.False(t, ok)
	})
}

func TestEntity_ReadsInputOnce(t *testing.T) {
	body := &countingBody{r: strings.NewReader(`{"name":"doze"}`)}
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Body = body
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Content-Length", "15")
	req := request.New(newConfig(false, &counters{}), r)

	first, ok := req.Entity()
	require.True(t, ok)
	assert.Equal(t, int64(15), first.Length())
	assert.Equal(t, 0, body.reads, "the entity reads lazily")

	var v struct{ Name string }
	require.NoError(t, first.Decode(&v))
	assert.Equal(t, "doze", v.Name)
	reads := body.reads

	second, ok := req.Entity()
	require.True(t, ok)
	assert.Same(t, first, second)

	data, err := second.Bytes()
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"doze"}`, string(data))
	assert.Equal(t, reads, body.reads)
}

func TestContentLength(t *testing.T) {
	cfg := newConfig(false, &counters{})

	cases := []struct {
		name   string
		header string
		body   string
		want   int64
	}{
		{"declared", "3", "abc", 3},
		{"malformed counts as absent", "three", "abc", -1},
		{"negative counts as absent", "-4", "abc", -1},
		{"from the transport", "", "abcd", 4},
		{"no body", "", "", -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			r := httptest.NewRequest(http.MethodPost, "/", body)
			if tc.header != "" {
				r.Header.Set("Content-Length", tc.header)
			}
			assert.Equal(t, tc.want, request.New(cfg, r).ContentLength())
		})
	}
}

func TestSession(t *testing.T) {
	t.Run("present and authenticated", func(t *testing.T) {
		c := &counters{}
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, "valid"))
		req := request.New(newConfig(false, c), r)

		s, ok := req.Session()
		require.True(t, ok)
		assert.Equal(t, "valid", s)
		_, _ = req.Session()

		assert.True(t, req.SessionAuthenticated())
		assert.True(t, req.SessionAuthenticated())

		assert.Equal(t, 1, c.sessions)
		assert.Equal(t, 1, c.auths)
	})

	t.Run("present but rejected", func(t *testing.T) {
		c := &counters{}
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, "expired"))
		req := request.New(newConfig(false, c), r)

		assert.False(t, req.SessionAuthenticated())
		assert.False(t, req.SessionAuthenticated())
		assert.Equal(t, 1, c.auths, "a false result is memoized")
	})

	t.Run("absent", func(t *testing.T) {
		c := &counters{}
		req := request.New(newConfig(false, c), httptest.NewRequest(http.MethodGet, "/", nil))

		_, ok := req.Session()
		assert.False(t, ok)
		_, ok = req.Session()
		assert.False(t, ok)

		assert.False(t, req.SessionAuthenticated())
		assert.Equal(t, 1, c.sessions)
		assert.Equal(t, 0, c.auths, "the predicate never sees a missing session")
	})
}

func TestNegotiator_UsesExtension(t *testing.T) {
	cfg := newConfig(true, &counters{})
	r := httptest.NewRequest(http.MethodGet, "/report.json", nil)
	r.Header.Set("Accept", "text/html")
	req := request.New(cfg, r)

	n := req.Negotiator(false)
	html, _ := cfg.MediaTypes.Lookup(mediatype.HTML)
	json, _ := cfg.MediaTypes.Lookup(mediatype.JSON)

	got, err := n.ChooseMediaType(html, json)
	require.NoError(t, err)
	assert.Same(t, json, got)
	assert.False(t, n.IgnoresUnacceptable())
	assert.True(t, req.Negotiator(true).IgnoresUnacceptable())
}

func TestContextRoundTrip(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := request.FromRequest(r)
	require.False(t, ok)

	req := request.New(newConfig(false, &counters{}), r)
	r = r.WithContext(request.NewContext(r.Context(), req))

	got, ok := request.FromRequest(r)
	require.True(t, ok)
	assert.Same(t, req, got)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, newConfig(false, &counters{}).Validate())

	cfg := newConfig(false, &counters{})
	cfg.SessionFromContext = nil
	require.ErrorIs(t, cfg.Validate(), request.ErrInvalidConfig)

	cfg = newConfig(false, &counters{})
	cfg.MediaTypes = nil
	require.ErrorIs(t, cfg.Validate(), request.ErrInvalidConfig)

	var nilCfg *request.Config
	require.ErrorIs(t, nilCfg.Validate(), request.ErrInvalidConfig)
}
