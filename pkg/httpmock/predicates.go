package httpmock

import (
	"fmt"
	"net/http"

	"github.com/getmockd/httpmock/internal/matching"
)

// AllOf matches when every predicate matches.
func AllOf(preds ...RequestPredicate) RequestPredicate {
	return func(r *http.Request) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// AllBody matches when every body predicate matches.
func AllBody(preds ...BodyPredicate) BodyPredicate {
	return func(body string) bool {
		for _, p := range preds {
			if !p(body) {
				return false
			}
		}
		return true
	}
}

// HeaderEquals matches requests whose header has exactly value.
func HeaderEquals(name, value string) RequestPredicate {
	return func(r *http.Request) bool {
		return matching.MatchHeader(name, value, r.Header)
	}
}

// HeaderPattern matches a header against a pattern with a leading and/or
// trailing "*" wildcard, such as "Bearer *".
func HeaderPattern(name, pattern string) RequestPredicate {
	return func(r *http.Request) bool {
		return matching.MatchHeaderPattern(name, pattern, r.Header)
	}
}

// Headers matches requests carrying every header with exactly its value.
func Headers(expected map[string]string) RequestPredicate {
	return func(r *http.Request) bool {
		return matching.MatchHeaders(expected, r.Header)
	}
}

// QueryParams matches requests carrying every query parameter with exactly its value.
func QueryParams(expected map[string]string) RequestPredicate {
	return func(r *http.Request) bool {
		return matching.MatchQueryParams(expected, r.URL.Query())
	}
}

// HasQuery matches requests carrying the query parameter, whatever its value.
func HasQuery(name string) RequestPredicate {
	return func(r *http.Request) bool {
		return matching.HasQueryParam(name, r.URL.Query())
	}
}

// QueryParam matches requests whose query parameter has exactly value.
func QueryParam(name, value string) RequestPredicate {
	return func(r *http.Request) bool {
		return matching.MatchQueryParam(name, value, r.URL.Query())
	}
}

// Expr compiles a boolean expr-lang expression over the request. The
// environment exposes method, path, host, header and query:
//
//	httpmock.Expr(`method == "POST" && header["X-Tenant"] == "acme"`)
//
// A runtime evaluation error panics inside the predicate, which the server
// records as a teardown failure.
func Expr(expression string) (RequestPredicate, error) {
	program, err := matching.CompileExpr(expression)
	if err != nil {
		return nil, err
	}
	return func(r *http.Request) bool {
		ok, err := matching.MatchExpr(program, r)
		if err != nil {
			panic(fmt.Errorf("expression %q: %w", expression, err))
		}
		return ok
	}, nil
}

// MustExpr is like Expr but panics if the expression does not compile.
func MustExpr(expression string) RequestPredicate {
	p, err := Expr(expression)
	if err != nil {
		panic(err)
	}
	return p
}

// BodyContains matches bodies containing substr.
func BodyContains(substr string) BodyPredicate {
	return func(body string) bool {
		return matching.MatchBodyContains(body, substr)
	}
}

// BodyEquals matches bodies equal to expected.
func BodyEquals(expected string) BodyPredicate {
	return func(body string) bool {
		return matching.MatchBodyEquals(body, expected)
	}
}

// BodyPattern matches bodies against an RE2 regular expression.
func BodyPattern(pattern string) (BodyPredicate, error) {
	re, err := matching.CompileBodyPattern(pattern)
	if err != nil {
		return nil, err
	}
	return func(body string) bool {
		return matching.MatchBodyPattern(re, body)
	}, nil
}

// BodyJSONPath matches JSON bodies where every JSONPath key of conditions
// holds the given value. {"exists": true|false} checks presence only.
func BodyJSONPath(conditions map[string]any) (BodyPredicate, error) {
	compiled, err := matching.CompileJSONPath(conditions)
	if err != nil {
		return nil, err
	}
	return func(body string) bool {
		return matching.MatchJSONPath(compiled, body)
	}, nil
}

// BodySchema matches JSON bodies valid against a JSON Schema document.
func BodySchema(schema string) (BodyPredicate, error) {
	compiled, err := matching.CompileSchema(schema)
	if err != nil {
		return nil, err
	}
	return func(body string) bool {
		return matching.MatchSchema(compiled, body)
	}, nil
}

// Must panics if err is non-nil and otherwise returns p. It wraps the
// error-returning body predicate constructors in test code:
//
//	MatchBody(httpmock.Must(httpmock.BodyPattern(`"id":\d+`)))
func Must(p BodyPredicate, err error) BodyPredicate {
	if err != nil {
		panic(err)
	}
	return p
}
