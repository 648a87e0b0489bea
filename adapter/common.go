package adapter

import (
	"strings"
)

// TranslatePath converts doze-style route patterns (":param", "*rest") into
// http.ServeMux placeholders ("{param}", "{rest...}"). encode rewrites
// parameter names that ServeMux would reject, such as names with dots. The
// original parameter names are returned in order of appearance.
func TranslatePath(path string, encode func(string) string) (string, []string) {
	var keys []string

	if before, after, found := strings.Cut(path, "*"); found {
		name := after
		if name == "" {
			name = "any"
		}
		keys = append(keys, paramKeys(before)...)
		return translateSegments(before, encode) + "{" + encode(name) + "...}", append(keys, name)
	}

	return translateSegments(path, encode), paramKeys(path)
}

func translateSegments(path string, encode func(string) string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if name, found := strings.CutPrefix(seg, ":"); found {
			segments[i] = "{" + encode(name) + "}"
		}
	}
	return strings.Join(segments, "/")
}

func paramKeys(path string) []string {
	var keys []string
	for seg := range strings.SplitSeq(path, "/") {
		if name, found := strings.CutPrefix(seg, ":"); found {
			keys = append(keys, name)
		}
	}
	return keys
}

// JoinPaths joins a group prefix and a route path with exactly one slash.
func JoinPaths(base, next string) string {
	if next == "" {
		return "/" + strings.Trim(base, "/")
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(next, "/")
}
