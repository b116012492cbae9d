// Package matching provides the predicate building blocks used by mock
// setups to decide whether an incoming request belongs to them.
//
// Request-level helpers inspect the raw *http.Request:
//
//   - Header matching: exact values and simple wildcard patterns
//   - Query parameter matching: key-value verification
//   - Expression matching: expr-lang boolean expressions over the request
//
// Body-level helpers inspect the request body text:
//
//   - Substring, exact and regex matching
//   - JSONPath conditions (ojg)
//   - JSON Schema validation (santhosh-tekuri/jsonschema)
//
// Every helper treats malformed input (a body that is not JSON, a regex that
// does not compile at match time) as "no match" rather than an error. Compile
// errors for patterns, schemas and expressions are reported at construction.
package matching
