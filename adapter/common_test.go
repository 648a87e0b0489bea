package adapter_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iaconlabs/doze/adapter"
)

func TestTranslatePath(t *testing.T) {
	dots := func(s string) string { return strings.ReplaceAll(s, ".", "_") }

	cases := []struct {
		path    string
		pattern string
		keys    []string
	}{
		{"/users/:id", "/users/{id}", []string{"id"}},
		{"/org/:org/repo/:repo", "/org/{org}/repo/{repo}", []string{"org", "repo"}},
		{"/file/:name.json", "/file/{name_json}", []string{"name.json"}},
		{"/static/*path", "/static/{path...}", []string{"path"}},
		{"/u/:id/files/*", "/u/{id}/files/{any...}", []string{"id", "any"}},
		{"/plain", "/plain", nil},
	}

	for _, tc := range cases {
		pattern, keys := adapter.TranslatePath(tc.path, dots)
		assert.Equal(t, tc.pattern, pattern, tc.path)
		assert.Equal(t, tc.keys, keys, tc.path)
	}
}

func TestJoinPaths(t *testing.T) {
	assert.Equal(t, "/api/v1", adapter.JoinPaths("/api", "/v1"))
	assert.Equal(t, "/api/v1", adapter.JoinPaths("/api/", "v1"))
	assert.Equal(t, "/api", adapter.JoinPaths("/api/", ""))
}

func TestWithParamsDoesNotMutate(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	first := adapter.WithParams(r, map[string]string{"a": "1"})
	second := adapter.WithParams(first, map[string]string{"b": "2"})

	s1, ok := adapter.StateFrom(first)
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"a": "1"}, s1.Params)

	s2, _ := adapter.StateFrom(second)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, s2.Params)

	_, ok = adapter.StateFrom(r)
	assert.False(t, ok)
}

func TestStateLookup(t *testing.T) {
	s := &adapter.State{Params: map[string]string{"id.json": "7", "any": "rest"}}

	assert.Equal(t, "7", s.Lookup("id.json"))
	assert.Equal(t, "7", s.Lookup("id"))
	assert.Equal(t, "rest", s.Lookup("*"))
	assert.Empty(t, s.Lookup("missing"))

	var none *adapter.State
	assert.Empty(t, none.Lookup("id"))
}
