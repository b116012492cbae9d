package matching

import (
	"fmt"
	"net/http"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RequestEnv is the environment exposed to request expressions.
//
//	method == "POST" && header["X-Tenant"] == "acme" && query["page"] == "2"
type RequestEnv struct {
	Method string            `expr:"method"`
	Path   string            `expr:"path"`
	Host   string            `expr:"host"`
	Header map[string]string `expr:"header"`
	Query  map[string]string `expr:"query"`
}

// NewRequestEnv flattens a request into a RequestEnv, keeping the first value
// of repeated headers and query parameters. Header keys are canonicalised.
func NewRequestEnv(r *http.Request) RequestEnv {
	env := RequestEnv{
		Method: r.Method,
		Host:   r.Host,
		Header: make(map[string]string, len(r.Header)),
		Query:  make(map[string]string),
	}
	if r.URL != nil {
		env.Path = r.URL.Path
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				env.Query[k] = v[0]
			}
		}
	}
	for k, v := range r.Header {
		if len(v) > 0 {
			env.Header[http.CanonicalHeaderKey(k)] = v[0]
		}
	}
	return env
}

// CompileExpr compiles a boolean expression over RequestEnv.
func CompileExpr(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(RequestEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	return program, nil
}

// MatchExpr runs a compiled expression against r.
func MatchExpr(program *vm.Program, r *http.Request) (bool, error) {
	out, err := expr.Run(program, NewRequestEnv(r))
	if err != nil {
		return false, fmt.Errorf("eval: %w", err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("eval: expression returned %T, want bool", out)
	}
	return matched, nil
}
