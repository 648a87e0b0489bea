package request

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// extensionPattern matches a trailing ".ext" usable for content typing.
var extensionPattern = regexp.MustCompile(`\.([a-z0-9\-_]+)$`)

// PathResolver returns the percent-decoded request path, without query
// string. Returning false defers to DefaultPathResolver.
type PathResolver func(r *http.Request) (string, bool)

// DefaultPathResolver returns r.URL.Path, which net/http has already decoded.
func DefaultPathResolver(r *http.Request) (string, bool) {
	if r.URL == nil {
		return "", false
	}
	return r.URL.Path, true
}

// RequestURIResolver derives the path from the raw request URI instead of
// r.URL. It is meant for handlers mounted below contextPath by a front
// server that leaves the prefix in place. The scheme and authority of an
// absolute-form URI, the context path and the query are removed before the
// remainder is decoded once.
func RequestURIResolver(contextPath string) PathResolver {
	contextPath = strings.Trim(contextPath, "/")
	if contextPath != "" {
		contextPath = "/" + contextPath
	}

	return func(r *http.Request) (string, bool) {
		raw := r.RequestURI
		if raw == "" || raw == "*" {
			return "", false
		}

		if !strings.HasPrefix(raw, "/") {
			_, rest, ok := strings.Cut(raw, "://")
			if !ok {
				return "", false
			}
			if slash := strings.IndexByte(rest, '/'); slash >= 0 {
				raw = rest[slash:]
			} else {
				raw = "/"
			}
		}

		raw, _, _ = strings.Cut(raw, "?")

		if contextPath != "" {
			if rest, ok := strings.CutPrefix(raw, contextPath); ok && (rest == "" || rest[0] == '/') {
				raw = rest
				if raw == "" {
					raw = "/"
				}
			}
		}

		decoded, err := url.PathUnescape(raw)
		if err != nil {
			return "", false
		}
		return decoded, true
	}
}

// splitExtension splits a trailing extension off path.
func splitExtension(path string) (string, string, bool) {
	m := extensionPattern.FindStringSubmatchIndex(path)
	if m == nil {
		return path, "", false
	}
	return path[:m[0]], path[m[2]:m[3]], true
}
