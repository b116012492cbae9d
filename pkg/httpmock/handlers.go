package httpmock

import (
	"encoding/json"
	"net/http"
	"reflect"
)

// Request is what a response factory receives: the raw request, the endpoint
// it was matched on and the full body text.
type Request struct {
	HTTP     *http.Request
	Endpoint string
	Body     string
}

// DecodeJSON decodes the body into v. Failures are returned as *DecodeError
// naming the target type.
func (r *Request) DecodeJSON(v any) error {
	if err := json.Unmarshal([]byte(r.Body), v); err != nil {
		t := reflect.TypeOf(v)
		if t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		return &DecodeError{Type: typeString(t), Err: err}
	}
	return nil
}

// Factory computes a response per request. Returned errors and panics are
// recorded as teardown failures and no response body is written.
type Factory func(req *Request) (*Response, error)

// JSONHandler adapts a handler that takes the request body decoded as T.
// A body that does not decode into T fails the request with a *DecodeError.
func JSONHandler[T any](fn func(body T, r *http.Request) (*Response, error)) Factory {
	return func(req *Request) (*Response, error) {
		var body T
		if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
			return nil, &DecodeError{Type: typeString(reflect.TypeFor[T]()), Err: err}
		}
		return fn(body, req.HTTP)
	}
}

// JSONBody adapts a predicate over the request body decoded as T. A body
// that does not decode into T does not match.
func JSONBody[T any](pred func(body T) bool) BodyPredicate {
	return func(raw string) bool {
		var body T
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			return false
		}
		return pred(body)
	}
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
