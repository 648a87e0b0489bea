// Package adapter contains the state and helpers shared by doze dispatch
// adapters, plus contract tests every router.Router must pass.
package adapter

import (
	"context"
	"maps"
	"net/http"

	"github.com/iaconlabs/doze/router"
)

// State carries the path parameters captured while dispatching a request.
// The request body is not part of it: it belongs to the request entity and
// is read at most once.
type State struct {
	// Params holds a normalized map of path parameters.
	Params map[string]string
}

// StateFrom returns the State stored in the request context.
func StateFrom(r *http.Request) (*State, bool) {
	state, ok := r.Context().Value(router.StateKey).(*State)
	return state, ok && state != nil
}

// WithParams returns a copy of r whose State holds the parameters already
// present in r plus params. The existing State is never mutated, so a
// request shared by concurrent handlers keeps its view.
func WithParams(r *http.Request, params map[string]string) *http.Request {
	merged := make(map[string]string, len(params))
	if state, ok := StateFrom(r); ok {
		maps.Copy(merged, state.Params)
	}
	maps.Copy(merged, params)
	ctx := context.WithValue(r.Context(), router.StateKey, &State{Params: merged})
	return r.WithContext(ctx)
}

// Lookup resolves a parameter by key. A key without extension also finds a
// parameter registered with one ("id" finds "id.json"), and "*" finds the
// unnamed wildcard "any".
func (s *State) Lookup(key string) string {
	if s == nil || s.Params == nil {
		return ""
	}
	if val, ok := s.Params[key]; ok {
		return val
	}
	for k, v := range s.Params {
		if len(k) > len(key) && k[:len(key)] == key && k[len(key)] == '.' {
			return v
		}
	}
	if key == "*" {
		return s.Params["any"]
	}
	return ""
}
