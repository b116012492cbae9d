package matching

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CompileSchema compiles a JSON Schema document (Draft 2020-12 unless the
// document declares otherwise via $schema).
func CompileSchema(schema string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource("body.schema.json", strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := compiler.Compile("body.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile body schema: %w", err)
	}
	return compiled, nil
}

// MatchSchema reports whether body is a JSON document valid against schema.
// Numbers are decoded as json.Number so integer keywords see the literal.
func MatchSchema(schema *jsonschema.Schema, body string) bool {
	if schema == nil {
		return false
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return false
	}
	return schema.Validate(doc) == nil
}
