package negotiator

import (
	"mime"
	"sort"
	"strconv"
	"strings"
)

// acceptRange is one entry of an Accept style header.
type acceptRange struct {
	typ, subtype string
	params       map[string]string
	q            float64
}

// specificity ranks "*/*" below "type/*" below "type/subtype", and a range
// with parameters above one without.
func (a acceptRange) specificity() int {
	s := 0
	if a.typ != "*" {
		s += 2
	}
	if a.subtype != "*" {
		s += 2
	}
	if len(a.params) > 0 {
		s++
	}
	return s
}

func (a acceptRange) matches(name string, params map[string]string) bool {
	typ, subtype, _ := strings.Cut(name, "/")
	if a.typ != "*" && a.typ != typ {
		return false
	}
	if a.subtype != "*" && a.subtype != subtype {
		return false
	}
	for k, v := range a.params {
		if !strings.EqualFold(params[k], v) {
			return false
		}
	}
	return true
}

// parseAccept parses an Accept header. Malformed ranges are skipped. The
// result is ordered most specific first so the first match decides quality.
func parseAccept(header string) []acceptRange {
	var ranges []acceptRange
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, params, err := mime.ParseMediaType(part)
		if err != nil {
			continue
		}
		typ, subtype, ok := strings.Cut(name, "/")
		if !ok || typ == "" || subtype == "" || (typ == "*" && subtype != "*") {
			continue
		}

		q := 1.0
		if raw, has := params["q"]; has {
			q = parseQuality(raw)
			delete(params, "q")
		}

		ranges = append(ranges, acceptRange{typ: typ, subtype: subtype, params: params, q: q})
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].specificity() > ranges[j].specificity()
	})
	return ranges
}

// tokenQuality is one entry of an Accept-Charset style header.
type tokenQuality struct {
	token string
	q     float64
}

func parseTokens(header string) []tokenQuality {
	var out []tokenQuality
	for _, part := range strings.Split(header, ",") {
		token, rest, _ := strings.Cut(part, ";")
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}

		q := 1.0
		if key, value, ok := strings.Cut(strings.TrimSpace(rest), "="); ok && strings.TrimSpace(key) == "q" {
			q = parseQuality(value)
		}
		out = append(out, tokenQuality{token: token, q: q})
	}
	return out
}

// parseQuality reads a q value; anything unparsable or out of range is 0.
func parseQuality(raw string) float64 {
	q, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || q < 0 || q > 1 {
		return 0
	}
	return q
}
