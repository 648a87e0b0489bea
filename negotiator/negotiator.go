// Package negotiator performs proactive content negotiation on behalf of a
// request: it picks the response media type, language and charset that best
// match the client's Accept headers.
package negotiator

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/iaconlabs/doze/mediatype"
)

var (
	// ErrNotAcceptable is returned when none of the candidates is acceptable
	// to the client.
	ErrNotAcceptable = errors.New("negotiator: not acceptable")
	// ErrNoCandidates is returned when a Choose method is called without candidates.
	ErrNoCandidates = errors.New("negotiator: no candidates")
)

// Source is what a Negotiator needs from a request.
type Source interface {
	// Header returns the request headers.
	Header() http.Header
	// Extension returns the file extension recognised in the request path.
	Extension() (string, bool)
}

// Negotiator chooses representations for a single request.
type Negotiator struct {
	header             http.Header
	accept             []acceptRange
	byExtension        *mediatype.MediaType
	ignoreUnacceptable bool
}

// New builds a Negotiator for src. When src carries a file extension that
// registry maps to a media type, that media type replaces the Accept header.
// With ignoreUnacceptable set, the Choose methods fall back to their first
// candidate instead of failing with ErrNotAcceptable.
func New(src Source, registry *mediatype.Registry, ignoreUnacceptable bool) *Negotiator {
	n := &Negotiator{
		header:             src.Header(),
		ignoreUnacceptable: ignoreUnacceptable,
	}

	if ext, ok := src.Extension(); ok && registry != nil {
		if mt, found := registry.ForExtension(ext); found {
			n.byExtension = mt
			n.accept = parseAccept(mt.Name)
			return n
		}
	}

	accept := strings.Join(n.header.Values("Accept"), ",")
	if strings.TrimSpace(accept) == "" {
		accept = "*/*"
	}
	n.accept = parseAccept(accept)
	return n
}

// IgnoresUnacceptable reports whether unacceptable Accept headers are ignored.
func (n *Negotiator) IgnoresUnacceptable() bool {
	return n.ignoreUnacceptable
}

// ByExtension returns the media type forced by the request's file extension.
func (n *Negotiator) ByExtension() (*mediatype.MediaType, bool) {
	return n.byExtension, n.byExtension != nil
}

// Quality returns the client's preference, between 0 and 1, for a media type.
func (n *Negotiator) Quality(mediaType string) float64 {
	name, params := mediatype.Normalize(mediaType)
	for _, r := range n.accept {
		if r.matches(name, params) {
			return r.q
		}
	}
	return 0
}

// ChooseMediaType returns the candidate with the highest quality. Ties go to
// the earlier candidate, so list the preferred representation first.
func (n *Negotiator) ChooseMediaType(candidates ...*mediatype.MediaType) (*mediatype.MediaType, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	var best *mediatype.MediaType
	bestQ := 0.0
	for _, c := range candidates {
		if q := n.Quality(c.Name); q > bestQ {
			best, bestQ = c, q
		}
	}

	switch {
	case best != nil:
		return best, nil
	case n.ignoreUnacceptable:
		return candidates[0], nil
	default:
		return nil, ErrNotAcceptable
	}
}

// ChooseLanguage matches the Accept-Language header against candidates.
// A missing or unparsable header selects the first candidate.
func (n *Negotiator) ChooseLanguage(candidates ...language.Tag) (language.Tag, error) {
	if len(candidates) == 0 {
		return language.Und, ErrNoCandidates
	}

	header := n.header.Get("Accept-Language")
	if strings.TrimSpace(header) == "" {
		return candidates[0], nil
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return candidates[0], nil
	}

	_, idx, confidence := language.NewMatcher(candidates).Match(tags...)
	if confidence == language.No {
		if n.ignoreUnacceptable {
			return candidates[0], nil
		}
		return language.Und, ErrNotAcceptable
	}
	return candidates[idx], nil
}

// ChooseCharset matches the Accept-Charset header against candidates.
// A missing header selects the first candidate.
func (n *Negotiator) ChooseCharset(candidates ...string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}

	header := n.header.Get("Accept-Charset")
	if strings.TrimSpace(header) == "" {
		return candidates[0], nil
	}
	tokens := parseTokens(header)

	best := ""
	bestQ := 0.0
	for _, c := range candidates {
		if q := tokenPreference(tokens, c); q > bestQ {
			best, bestQ = c, q
		}
	}

	switch {
	case best != "":
		return best, nil
	case n.ignoreUnacceptable:
		return candidates[0], nil
	default:
		return "", ErrNotAcceptable
	}
}

func tokenPreference(tokens []tokenQuality, candidate string) float64 {
	candidate = strings.ToLower(candidate)
	wildcard := 0.0
	for _, t := range tokens {
		if t.token == candidate {
			return t.q
		}
		if t.token == "*" {
			wildcard = t.q
		}
	}
	return wildcard
}
