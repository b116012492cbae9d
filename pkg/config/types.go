package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// File is the content of one or more setup files.
type File struct {
	// Prefix is the path prefix every endpoint is relative to.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Strict makes unmatched requests teardown failures.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`

	// BasePort overrides the first port tried when binding. Zero keeps the default.
	BasePort int `json:"basePort,omitempty" yaml:"basePort,omitempty"`

	Setups []SetupSpec `json:"setups" yaml:"setups"`

	// sources lists the files this File was loaded from, in load order.
	sources []string
}

// Sources returns the paths the file was loaded from.
func (f *File) Sources() []string {
	return append([]string(nil), f.sources...)
}

// SetupSpec declares one setup.
type SetupSpec struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Method   string `json:"method,omitempty" yaml:"method,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Status   int    `json:"status,omitempty" yaml:"status,omitempty"`

	// Headers maps a response header name to one or more values.
	Headers map[string]StringList `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Body is sent verbatim when it is a string and JSON-encoded otherwise.
	Body any `json:"body,omitempty" yaml:"body,omitempty"`

	Match *MatchSpec `json:"match,omitempty" yaml:"match,omitempty"`
}

// MatchSpec declares the predicates a request must satisfy beyond method and
// endpoint. Every non-empty field must match.
type MatchSpec struct {
	// Headers values may use a leading or trailing "*" wildcard.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Query   map[string]string `json:"query,omitempty" yaml:"query,omitempty"`

	BodyContains string `json:"bodyContains,omitempty" yaml:"bodyContains,omitempty"`
	BodyPattern  string `json:"bodyPattern,omitempty" yaml:"bodyPattern,omitempty"`

	// JSONPath maps a JSONPath expression to the value it must address, or
	// to {exists: true|false}.
	JSONPath map[string]any `json:"jsonPath,omitempty" yaml:"jsonPath,omitempty"`

	// Schema is a JSON Schema, inline as a mapping or as a JSON string.
	Schema any `json:"schema,omitempty" yaml:"schema,omitempty"`

	// Expr is a boolean expression over method, path, host, header and query.
	Expr string `json:"expr,omitempty" yaml:"expr,omitempty"`
}

func (m *MatchSpec) empty() bool {
	return m == nil || (len(m.Headers) == 0 && len(m.Query) == 0 &&
		m.BodyContains == "" && m.BodyPattern == "" &&
		len(m.JSONPath) == 0 && m.Schema == nil && m.Expr == "")
}

// schemaText returns the schema as a JSON document.
func (m *MatchSpec) schemaText() (string, error) {
	switch s := m.Schema.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		data, err := json.Marshal(s)
		if err != nil {
			return "", fmt.Errorf("encoding schema: %w", err)
		}
		return string(data), nil
	}
}

// StringList is a list of strings that also accepts a single scalar, so
// both "X-A: one" and "X-A: [one, two]" decode.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*l = values
		return nil
	}

	var value string
	if err := node.Decode(&value); err != nil {
		return err
	}
	*l = StringList{value}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err == nil {
		*l = values
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("header value must be a string or a list of strings: %w", err)
	}
	*l = StringList{value}
	return nil
}
