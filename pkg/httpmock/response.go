package httpmock

import (
	"net/http"
	"strings"
)

// HeaderField is one response header with all of its values already joined.
type HeaderField struct {
	Name  string
	Value string
}

// Response is the status, headers and body a setup answers with.
// A nil Body writes no bytes; a zero Status is sent as 200.
type Response struct {
	Status  int
	Headers []HeaderField
	Body    any
}

// NewResponse creates a response with the given status and no body.
func NewResponse(status int) *Response {
	return &Response{Status: status}
}

// JSONResponse creates a response whose body is JSON-encoded from v.
func JSONResponse(status int, v any) *Response {
	return NewResponse(status).WithHeader("Content-Type", "application/json").WithBody(v)
}

// TextResponse creates a response with a plain text body.
func TextResponse(status int, body string) *Response {
	return NewResponse(status).WithBody(body)
}

// WithHeader sets a header. Several values for the same name are combined
// into one header line, joined by "," in the order given. Setting a name that
// already exists replaces its value in place.
func (r *Response) WithHeader(name string, values ...string) *Response {
	value := strings.Join(values, ",")
	for i := range r.Headers {
		if strings.EqualFold(r.Headers[i].Name, name) {
			r.Headers[i].Value = value
			return r
		}
	}
	r.Headers = append(r.Headers, HeaderField{Name: name, Value: value})
	return r
}

// WithBody sets the body payload. Strings and byte slices are written
// verbatim; any other value is JSON-encoded when the response is written.
func (r *Response) WithBody(v any) *Response {
	r.Body = v
	return r
}

// Header returns the combined value of the named header.
func (r *Response) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// StatusCode returns the status that will be written.
func (r *Response) StatusCode() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}

func (r *Response) clone() *Response {
	c := *r
	c.Headers = append([]HeaderField(nil), r.Headers...)
	return &c
}
