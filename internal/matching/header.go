package matching

import (
	"net/http"
	"strings"
)

// MatchHeader checks if a specific header matches.
// Header names are case-insensitive.
func MatchHeader(name, expectedValue string, headers http.Header) bool {
	return headers.Get(name) == expectedValue
}

// MatchHeaders checks if all specified headers match.
func MatchHeaders(expected map[string]string, headers http.Header) bool {
	for name, value := range expected {
		if !MatchHeader(name, value, headers) {
			return false
		}
	}
	return true
}

// MatchHeaderPattern checks a header against a pattern where a leading and/or
// trailing "*" stands for any run of characters: "Bearer *", "*.json",
// "*token*". A pattern without "*" is an exact match. Missing headers never match.
func MatchHeaderPattern(name, pattern string, headers http.Header) bool {
	values, ok := headers[http.CanonicalHeaderKey(name)]
	if !ok || len(values) == 0 {
		return false
	}
	actual := values[0]

	prefixWild := strings.HasPrefix(pattern, "*")
	suffixWild := strings.HasSuffix(pattern, "*") && len(pattern) > 1
	core := strings.TrimSuffix(strings.TrimPrefix(pattern, "*"), "*")

	switch {
	case pattern == "*":
		return true
	case prefixWild && suffixWild:
		return strings.Contains(actual, core)
	case prefixWild:
		return strings.HasSuffix(actual, core)
	case suffixWild:
		return strings.HasPrefix(actual, core)
	default:
		return actual == pattern
	}
}
