package httpmock

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getmockd/httpmock/internal/ports"
)

var (
	// ErrPortsExhausted is returned by New when no port in the scan range
	// could be bound. The last bind error is wrapped alongside it.
	ErrPortsExhausted = ports.ErrExhausted

	// ErrClosed is returned by a second call to Close.
	ErrClosed = errors.New("mock server already closed")
)

// Stages reported by HandlerError.
const (
	StageReadBody         = "reading request body"
	StageRequestPredicate = "request predicate"
	StageBodyPredicate    = "body predicate"
	StageHandler          = "response handler"
	StageWriteResponse    = "writing response"
	StageAcceptLoop       = "accept loop"
)

// UnmockedError records a request that no setup matched on a strict server.
type UnmockedError struct {
	Method string
	URL    string
}

func (e *UnmockedError) Error() string {
	return fmt.Sprintf("unmocked %s to %s was not set up", e.Method, e.URL)
}

// AmbiguousMatchError records a request that more than one setup matched.
type AmbiguousMatchError struct {
	Method  string
	URL     string
	Matches int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("multiple setups found matching call to %s (%s, %d matches)", e.URL, e.Method, e.Matches)
}

// HandlerError records a failure raised while serving a request: a predicate
// or response handler that returned an error or panicked, or an I/O failure on
// the connection. Err keeps the original error.
type HandlerError struct {
	Stage  string
	Method string
	URL    string
	Err    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s failed for %s %s: %v", e.Stage, e.Method, e.URL, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// DecodeError is returned when a typed handler cannot decode the request body
// into its target type.
type DecodeError struct {
	Type string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding request body as %s: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UnmetRequiredError records a required setup that never served a request.
type UnmetRequiredError struct {
	Method string
	URL    string
}

func (e *UnmetRequiredError) Error() string {
	return fmt.Sprintf("expected a matching call to %s", e.URL)
}

// WaitTimeoutError is returned by WaitForCalls when the deadline passes
// before the setup reached the wanted call count.
type WaitTimeoutError struct {
	Method  string
	URL     string
	Want    int
	Got     int
	Timeout time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %d calls to %s %s, got %d",
		e.Timeout, e.Want, methodLabel(e.Method), e.URL, e.Got)
}

// TeardownError aggregates every failure found when a mock server is closed.
type TeardownError struct {
	Failures []error
}

func (e *TeardownError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, err := range e.Failures {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

func (e *TeardownError) Unwrap() []error { return e.Failures }

// panicError converts a recovered panic value to an error, keeping error values wrappable.
func panicError(p any) error {
	if err, ok := p.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", p)
}

func methodLabel(method string) string {
	if method == "" {
		return "ANY"
	}
	return method
}
