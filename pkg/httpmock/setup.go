package httpmock

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// waitPollInterval is how often WaitForCalls re-reads the call counter.
const waitPollInterval = 500 * time.Millisecond

// RequestPredicate decides whether a raw request belongs to a setup.
type RequestPredicate func(r *http.Request) bool

// BodyPredicate decides whether a request body belongs to a setup.
type BodyPredicate func(body string) bool

// Setup is one matching rule, the response it produces and the calls it has
// served. All configuration methods return the same Setup so calls chain:
//
//	mock.Setup("users").Post().
//	    MatchBody(httpmock.BodyContains(`"role":"admin"`)).
//	    Status(http.StatusCreated).
//	    Body(User{ID: "42"}).
//	    Required()
type Setup struct {
	id       string
	endpoint string
	baseURL  string

	mu               sync.RWMutex
	method           string
	requestPredicate RequestPredicate
	bodyPredicate    BodyPredicate
	response         *Response
	factory          Factory
	required         bool

	calls atomic.Int64
}

func newSetup(baseURL, endpoint string) *Setup {
	return &Setup{
		id:       uuid.NewString(),
		endpoint: strings.TrimPrefix(endpoint, "/"),
		baseURL:  baseURL,
		response: NewResponse(http.StatusOK),
	}
}

// ID returns the unique identifier recorded in the request journal.
func (s *Setup) ID() string { return s.id }

// Endpoint returns the endpoint this setup matches, relative to the base URL.
func (s *Setup) Endpoint() string { return s.endpoint }

// URL returns the absolute URL this setup matches.
func (s *Setup) URL() string { return s.baseURL + s.endpoint }

// Method restricts the setup to one HTTP method, compared exactly as
// transmitted. An empty method matches any. The last call wins.
func (s *Setup) Method(method string) *Setup {
	s.mu.Lock()
	s.method = method
	s.mu.Unlock()
	return s
}

// Get restricts the setup to GET requests.
func (s *Setup) Get() *Setup { return s.Method(http.MethodGet) }

// Post restricts the setup to POST requests.
func (s *Setup) Post() *Setup { return s.Method(http.MethodPost) }

// Put restricts the setup to PUT requests.
func (s *Setup) Put() *Setup { return s.Method(http.MethodPut) }

// Patch restricts the setup to PATCH requests.
func (s *Setup) Patch() *Setup { return s.Method(http.MethodPatch) }

// Delete restricts the setup to DELETE requests.
func (s *Setup) Delete() *Setup { return s.Method(http.MethodDelete) }

// MatchRequest installs a predicate over the raw request. The last call
// wins; combine several with AllOf.
func (s *Setup) MatchRequest(p RequestPredicate) *Setup {
	s.mu.Lock()
	s.requestPredicate = p
	s.mu.Unlock()
	return s
}

// MatchBody installs a predicate over the request body. The last call wins;
// combine several with AllBody. See JSONBody for typed predicates.
func (s *Setup) MatchBody(p BodyPredicate) *Setup {
	s.mu.Lock()
	s.bodyPredicate = p
	s.mu.Unlock()
	return s
}

// Status sets the status code of the fixed response.
func (s *Setup) Status(code int) *Setup {
	s.mu.Lock()
	s.response.Status = code
	s.mu.Unlock()
	return s
}

// Header sets a header of the fixed response. Multiple values are sent as a
// single header line joined by ",".
func (s *Setup) Header(name string, values ...string) *Setup {
	s.mu.Lock()
	s.response.WithHeader(name, values...)
	s.mu.Unlock()
	return s
}

// Body sets the body of the fixed response.
func (s *Setup) Body(v any) *Setup {
	s.mu.Lock()
	s.response.WithBody(v)
	s.mu.Unlock()
	return s
}

// Handle installs a response factory. When set it takes priority over the
// fixed response configured with Status, Header and Body.
func (s *Setup) Handle(f Factory) *Setup {
	s.mu.Lock()
	s.factory = f
	s.mu.Unlock()
	return s
}

// HandleRequest installs a response factory that only needs the raw request.
func (s *Setup) HandleRequest(fn func(r *http.Request) (*Response, error)) *Setup {
	return s.Handle(func(req *Request) (*Response, error) {
		return fn(req.HTTP)
	})
}

// HandleFunc installs a response factory that takes no input.
func (s *Setup) HandleFunc(fn func() (*Response, error)) *Setup {
	return s.Handle(func(*Request) (*Response, error) {
		return fn()
	})
}

// Required marks the setup so that Close fails unless it served at least one request.
func (s *Setup) Required() *Setup {
	s.mu.Lock()
	s.required = true
	s.mu.Unlock()
	return s
}

// ResetCalls sets the call counter back to zero.
func (s *Setup) ResetCalls() *Setup {
	s.calls.Store(0)
	return s
}

// Calls returns the number of requests this setup has served.
func (s *Setup) Calls() int {
	return int(s.calls.Load())
}

// WaitForCalls blocks the caller until the setup has served at least count
// requests, polling twice per second. It returns a *WaitTimeoutError once
// timeout elapses, or the context error if ctx ends first. The server keeps
// serving while a caller waits.
func (s *Setup) WaitForCalls(ctx context.Context, count int, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for {
		if s.Calls() >= count {
			return nil
		}

		select {
		case <-ticker.C:
		case <-waitCtx.Done():
			got := s.Calls()
			if got >= count {
				return nil
			}
			if ctx.Err() != nil {
				return fmt.Errorf("waiting for calls to %s: %w", s.URL(), ctx.Err())
			}
			return &WaitTimeoutError{
				Method:  s.methodFilter(),
				URL:     s.URL(),
				Want:    count,
				Got:     got,
				Timeout: timeout,
			}
		}
	}
}

func (s *Setup) methodFilter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.method
}

func (s *Setup) isRequired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.required
}

// match evaluates every filter of the setup. A panicking predicate is
// reported as a *HandlerError and counts as a non-match.
func (s *Setup) match(r *http.Request, endpoint, body string) (matched bool, err error) {
	s.mu.RLock()
	method, reqPred, bodyPred := s.method, s.requestPredicate, s.bodyPredicate
	s.mu.RUnlock()

	if method != "" && method != r.Method {
		return false, nil
	}
	if s.endpoint != endpoint {
		return false, nil
	}

	stage := StageRequestPredicate
	defer func() {
		if p := recover(); p != nil {
			matched = false
			err = &HandlerError{Stage: stage, Method: r.Method, URL: s.URL(), Err: panicError(p)}
		}
	}()

	if reqPred != nil && !reqPred(r) {
		return false, nil
	}
	stage = StageBodyPredicate
	if bodyPred != nil && !bodyPred(body) {
		return false, nil
	}
	return true, nil
}

// respond produces the response for one request. A nil response from a
// factory is sent as an empty 200.
func (s *Setup) respond(req *Request) (resp *Response, err error) {
	s.mu.RLock()
	factory := s.factory
	fixed := s.response.clone()
	s.mu.RUnlock()

	if factory == nil {
		return fixed, nil
	}

	defer func() {
		if p := recover(); p != nil {
			resp, err = nil, panicError(p)
		}
	}()

	resp, err = factory(req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = NewResponse(http.StatusOK)
	}
	return resp, nil
}
