package config

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/getmockd/httpmock/pkg/httpmock"
)

// ValidationError describes one invalid field of a setup file.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a File.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every setup, including that patterns, JSONPath
// expressions, schemas and expressions compile. It returns ValidationErrors
// listing all problems, or nil.
func (f *File) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if f.BasePort < 0 || f.BasePort > 65535 {
		add("basePort", "must be between 0 and 65535, got %d", f.BasePort)
	}

	for i, s := range f.Setups {
		field := fmt.Sprintf("setups[%d]", i)

		if s.Method != "" && !isToken(s.Method) {
			add(field+".method", "invalid HTTP method %q", s.Method)
		}
		if s.Status != 0 && (s.Status < 100 || s.Status > 599) {
			add(field+".status", "must be between 100 and 599, got %d", s.Status)
		}
		for name := range s.Headers {
			if !isToken(name) {
				add(field+".headers", "invalid header name %q", name)
			}
		}
		if s.Match.empty() {
			continue
		}
		if _, _, err := s.Match.predicates(); err != nil {
			add(field+".match", "%v", err)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// isToken reports whether s is a non-empty RFC 9110 token, the syntax of
// both method and header names.
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c > 0x7e || c <= ' ' || strings.ContainsRune(`"(),/:;<=>?@[\]{}`, c) {
			return false
		}
	}
	return true
}

// predicates compiles the match block into a request and a body predicate.
// Either is nil when the block declares nothing for it.
func (m *MatchSpec) predicates() (httpmock.RequestPredicate, httpmock.BodyPredicate, error) {
	var reqPreds []httpmock.RequestPredicate
	var bodyPreds []httpmock.BodyPredicate

	for name, pattern := range m.Headers {
		reqPreds = append(reqPreds, httpmock.HeaderPattern(name, pattern))
	}
	if len(m.Query) > 0 {
		reqPreds = append(reqPreds, httpmock.QueryParams(m.Query))
	}
	if m.Expr != "" {
		p, err := httpmock.Expr(m.Expr)
		if err != nil {
			return nil, nil, fmt.Errorf("expr: %w", err)
		}
		reqPreds = append(reqPreds, p)
	}

	if m.BodyContains != "" {
		bodyPreds = append(bodyPreds, httpmock.BodyContains(m.BodyContains))
	}
	if m.BodyPattern != "" {
		p, err := httpmock.BodyPattern(m.BodyPattern)
		if err != nil {
			return nil, nil, fmt.Errorf("bodyPattern: %w", err)
		}
		bodyPreds = append(bodyPreds, p)
	}
	if len(m.JSONPath) > 0 {
		p, err := httpmock.BodyJSONPath(m.JSONPath)
		if err != nil {
			return nil, nil, fmt.Errorf("jsonPath: %w", err)
		}
		bodyPreds = append(bodyPreds, p)
	}
	if m.Schema != nil {
		text, err := m.schemaText()
		if err != nil {
			return nil, nil, fmt.Errorf("schema: %w", err)
		}
		p, err := httpmock.BodySchema(text)
		if err != nil {
			return nil, nil, fmt.Errorf("schema: %w", err)
		}
		bodyPreds = append(bodyPreds, p)
	}

	var reqPred httpmock.RequestPredicate
	if len(reqPreds) > 0 {
		reqPred = httpmock.AllOf(reqPreds...)
	}
	var bodyPred httpmock.BodyPredicate
	if len(bodyPreds) > 0 {
		bodyPred = httpmock.AllBody(bodyPreds...)
	}
	return reqPred, bodyPred, nil
}

// statusOrDefault returns the declared status, defaulting to 200.
func (s *SetupSpec) statusOrDefault() int {
	if s.Status == 0 {
		return http.StatusOK
	}
	return s.Status
}
