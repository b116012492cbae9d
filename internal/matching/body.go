package matching

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchBodyContains checks if the body contains the substring.
// An empty substring always matches.
func MatchBodyContains(body, contains string) bool {
	return strings.Contains(body, contains)
}

// MatchBodyEquals checks if the body exactly equals the expected value.
func MatchBodyEquals(body, expected string) bool {
	return body == expected
}

// CompileBodyPattern compiles a body regex using RE2 syntax.
func CompileBodyPattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid body pattern %q: %w", pattern, err)
	}
	return re, nil
}

// MatchBodyPattern checks if the request body matches a compiled pattern.
func MatchBodyPattern(re *regexp.Regexp, body string) bool {
	if re == nil {
		return false
	}
	return re.MatchString(body)
}
