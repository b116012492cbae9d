package matching

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/jp"
)

// JSONPathCondition is one compiled JSONPath expression and the value the
// addressed node must hold.
type JSONPathCondition struct {
	Path     string
	expr     jp.Expr
	expected any
}

// CompileJSONPath parses every JSONPath key of conditions. The expected value
// may be a scalar, an arbitrary JSON value, or an existence check of the form
// {"exists": true|false}.
func CompileJSONPath(conditions map[string]any) ([]JSONPathCondition, error) {
	compiled := make([]JSONPathCondition, 0, len(conditions))
	for path, expected := range conditions {
		x, err := jp.ParseString(path)
		if err != nil {
			return nil, fmt.Errorf("invalid JSONPath expression %q: %w", path, err)
		}
		compiled = append(compiled, JSONPathCondition{Path: path, expr: x, expected: expected})
	}
	return compiled, nil
}

// MatchJSONPath reports whether every condition holds for body.
// A body that is not valid JSON never matches.
func MatchJSONPath(conditions []JSONPathCondition, body string) bool {
	var data any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return false
	}

	for _, c := range conditions {
		if !c.match(data) {
			return false
		}
	}
	return true
}

func (c JSONPathCondition) match(data any) bool {
	results := c.expr.Get(data)

	if exists, ok := existenceCheck(c.expected); ok {
		return exists == (len(results) > 0)
	}

	// Wildcard paths may yield several nodes; any one of them may satisfy the condition.
	for _, result := range results {
		if valuesEqual(result, c.expected) {
			return true
		}
	}
	return false
}

// existenceCheck recognises {"exists": bool}.
func existenceCheck(expected any) (exists bool, ok bool) {
	m, isMap := expected.(map[string]any)
	if !isMap || len(m) != 1 {
		return false, false
	}
	b, isBool := m["exists"].(bool)
	return b, isBool
}

// valuesEqual compares a decoded JSON value with an expected value, treating
// all numeric kinds as equal when their float64 values match.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	if reflect.DeepEqual(actual, expected) {
		return true
	}

	actualNum, actualIsNum := toFloat64(actual)
	expectedNum, expectedIsNum := toFloat64(expected)
	if actualIsNum && expectedIsNum {
		return actualNum == expectedNum
	}

	// Structured expectations (for instance decoded from YAML) are compared in JSON form.
	if isStructured(actual) && isStructured(expected) {
		a, errA := json.Marshal(actual)
		e, errE := json.Marshal(expected)
		if errA == nil && errE == nil {
			var an, en any
			_ = json.Unmarshal(a, &an)
			_ = json.Unmarshal(e, &en)
			return reflect.DeepEqual(an, en)
		}
	}

	return false
}

func isStructured(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	default:
		return false
	}
}

// toFloat64 attempts to convert a value to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}
