package httpmock

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/httpmock/pkg/logging"
	"github.com/getmockd/httpmock/pkg/requestlog"
)

const testOrigin = "http://localhost:1"

type dispatchFixture struct {
	d       *dispatcher
	journal *requestlog.MemoryStore
}

func newDispatchFixture(strict bool) *dispatchFixture {
	journal := requestlog.NewMemoryStore(100)
	return &dispatchFixture{
		d: &dispatcher{
			origin:     testOrigin,
			prefixPath: "/api/",
			strict:     strict,
			registry:   &registry{},
			failures:   &failureSink{},
			journal:    journal,
			log:        logging.Nop(),
			inflight:   &sync.WaitGroup{},
		},
		journal: journal,
	}
}

func (f *dispatchFixture) setup(endpoint string) *Setup {
	s := newSetup(testOrigin+"/api/", endpoint)
	f.d.registry.add(s)
	return s
}

func (f *dispatchFixture) serve(method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, testOrigin+target, nil)
	} else {
		r = httptest.NewRequest(method, testOrigin+target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.d.ServeHTTP(rec, r)
	return rec
}

func TestDispatch_FixedResponse(t *testing.T) {
	f := newDispatchFixture(true)
	f.setup("users").Get().
		Status(http.StatusCreated).
		Header("X-Trace", "a", "b").
		Body(map[string]string{"id": "1"})

	rec := f.serve("GET", "/api/users", "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "a,b", rec.Header().Get("X-Trace"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())
	assert.Empty(t, f.d.failures.snapshot())
}

func TestDispatch_ExplicitContentTypeWins(t *testing.T) {
	f := newDispatchFixture(true)
	f.setup("report").Header("Content-Type", "text/csv").Body("a,b\n1,2\n")

	rec := f.serve("GET", "/api/report", "")

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "a,b\n1,2\n", rec.Body.String())
}

func TestDispatch_NoBodyWritesNothing(t *testing.T) {
	f := newDispatchFixture(true)
	f.setup("empty").Status(http.StatusNoContent)

	rec := f.serve("DELETE", "/api/empty", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}

func TestDispatch_MethodFilter(t *testing.T) {
	f := newDispatchFixture(false)
	s := f.setup("users").Post()

	rec := f.serve("GET", "/api/users", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, s.Calls())

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no_match", body["error"])
	assert.Empty(t, f.d.failures.snapshot(), "non-strict servers do not record unmatched requests")
}

func TestDispatch_MethodIsCaseSensitive(t *testing.T) {
	f := newDispatchFixture(false)
	s := f.setup("users").Method("get")

	f.serve("GET", "/api/users", "")

	assert.Equal(t, 0, s.Calls())
}

func TestDispatch_EndpointIncludesQuery(t *testing.T) {
	f := newDispatchFixture(false)
	plain := f.setup("search")
	withQuery := f.setup("search?q=go")

	f.serve("GET", "/api/search?q=go", "")
	f.serve("GET", "/api/search", "")

	assert.Equal(t, 1, plain.Calls())
	assert.Equal(t, 1, withQuery.Calls())
}

func TestDispatch_LeadingSlashIgnoredOnEndpoint(t *testing.T) {
	f := newDispatchFixture(true)
	s := f.setup("/users")

	rec := f.serve("GET", "/api/users", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.Calls())
	assert.Equal(t, "users", s.Endpoint())
}

func TestDispatch_StrictUnmatched(t *testing.T) {
	f := newDispatchFixture(true)
	f.setup("users")

	rec := f.serve("PUT", "/api/users/9", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	failures := f.d.failures.snapshot()
	require.Len(t, failures, 1)

	var unmocked *UnmockedError
	require.True(t, errors.As(failures[0], &unmocked))
	assert.Equal(t, "unmocked PUT to http://localhost:1/api/users/9 was not set up", unmocked.Error())
}

func TestDispatch_OutsidePrefixNeverMatches(t *testing.T) {
	f := newDispatchFixture(true)
	s := f.setup("users")

	f.serve("GET", "/users", "")

	assert.Equal(t, 0, s.Calls())
	failures := f.d.failures.snapshot()
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Error(), "unmocked GET to http://localhost:1/users")
}

func TestDispatch_AmbiguousServesFirstAndRecords(t *testing.T) {
	f := newDispatchFixture(true)
	first := f.setup("items").Body("first")
	second := f.setup("items").Body("second")

	rec := f.serve("GET", "/api/items", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, first.Calls())
	assert.Equal(t, 0, second.Calls())

	failures := f.d.failures.snapshot()
	require.Len(t, failures, 1)
	var ambiguous *AmbiguousMatchError
	require.True(t, errors.As(failures[0], &ambiguous))
	assert.Equal(t, 2, ambiguous.Matches)
	assert.Contains(t, ambiguous.Error(), "multiple setups found matching call to http://localhost:1/api/items")
}

func TestDispatch_FactoryErrorCountsCallAndWritesNoBody(t *testing.T) {
	f := newDispatchFixture(true)
	s := f.setup("fail").HandleFunc(func() (*Response, error) {
		return nil, errors.New("backend exploded")
	})

	rec := f.serve("GET", "/api/fail", "")

	assert.Equal(t, 1, s.Calls())
	assert.Empty(t, rec.Body.Bytes())
	failures := f.d.failures.snapshot()
	require.Len(t, failures, 1)

	var handlerErr *HandlerError
	require.True(t, errors.As(failures[0], &handlerErr))
	assert.Equal(t, StageHandler, handlerErr.Stage)
	assert.Contains(t, handlerErr.Error(), "backend exploded")
}

func TestDispatch_FactoryPanicIsContained(t *testing.T) {
	f := newDispatchFixture(true)
	f.setup("panic").HandleFunc(func() (*Response, error) {
		panic("boom")
	})

	assert.NotPanics(t, func() { f.serve("GET", "/api/panic", "") })

	failures := f.d.failures.snapshot()
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Error(), "boom")
}

func TestDispatch_PredicatePanicIsNonMatch(t *testing.T) {
	f := newDispatchFixture(false)
	f.setup("p").MatchRequest(func(*http.Request) bool { panic(errors.New("predicate broke")) })
	fallback := f.setup("p").MatchRequest(func(*http.Request) bool { return true })

	rec := f.serve("GET", "/api/p", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fallback.Calls())

	failures := f.d.failures.snapshot()
	require.Len(t, failures, 1)
	var handlerErr *HandlerError
	require.True(t, errors.As(failures[0], &handlerErr))
	assert.Equal(t, StageRequestPredicate, handlerErr.Stage)
	assert.Contains(t, handlerErr.Error(), "predicate broke")
}

func TestDispatch_BodyPredicatePanicStage(t *testing.T) {
	f := newDispatchFixture(false)
	f.setup("b").MatchBody(func(string) bool { panic("body check broke") })

	f.serve("POST", "/api/b", `{}`)

	failures := f.d.failures.snapshot()
	require.Len(t, failures, 1)
	var handlerErr *HandlerError
	require.True(t, errors.As(failures[0], &handlerErr))
	assert.Equal(t, StageBodyPredicate, handlerErr.Stage)
}

func TestDispatch_BodyEncodingFailure(t *testing.T) {
	f := newDispatchFixture(true)
	f.setup("inf").Body(math.Inf(1))

	rec := f.serve("GET", "/api/inf", "")

	assert.Empty(t, rec.Body.Bytes())
	failures := f.d.failures.snapshot()
	require.Len(t, failures, 1)
	var handlerErr *HandlerError
	require.True(t, errors.As(failures[0], &handlerErr))
	assert.Equal(t, StageWriteResponse, handlerErr.Stage)
}

func TestDispatch_FactoryTakesPriority(t *testing.T) {
	f := newDispatchFixture(true)
	f.setup("prio").
		Status(http.StatusTeapot).
		Body("fixed").
		HandleRequest(func(r *http.Request) (*Response, error) {
			return TextResponse(http.StatusOK, "from "+r.Method), nil
		})

	rec := f.serve("PATCH", "/api/prio", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from PATCH", rec.Body.String())
}

func TestDispatch_NilFactoryResponseIsEmptyOK(t *testing.T) {
	f := newDispatchFixture(true)
	f.setup("nil").HandleFunc(func() (*Response, error) { return nil, nil })

	rec := f.serve("GET", "/api/nil", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
	assert.Empty(t, f.d.failures.snapshot())
}

func TestDispatch_FactorySeesBodyAndEndpoint(t *testing.T) {
	f := newDispatchFixture(true)
	var got *Request
	f.setup("echo?v=1").Post().Handle(func(req *Request) (*Response, error) {
		got = req
		return TextResponse(http.StatusOK, req.Body), nil
	})

	rec := f.serve("POST", "/api/echo?v=1", "ping")

	require.NotNil(t, got)
	assert.Equal(t, "echo?v=1", got.Endpoint)
	assert.Equal(t, "ping", got.Body)
	assert.Equal(t, "ping", rec.Body.String())
}

func TestDispatch_Journal(t *testing.T) {
	f := newDispatchFixture(true)
	s := f.setup("users").Post().Status(http.StatusCreated)

	f.serve("POST", "/api/users", `{"name":"ada"}`)
	f.serve("GET", "/api/missing", "")

	entries := f.journal.List(nil)
	require.Len(t, entries, 2)

	assert.Equal(t, requestlog.OutcomeMatched, entries[0].Outcome)
	assert.Equal(t, s.ID(), entries[0].MatchedSetupID)
	assert.Equal(t, http.StatusCreated, entries[0].ResponseStatus)
	assert.Equal(t, `{"name":"ada"}`, entries[0].Body)
	assert.Equal(t, "users", entries[0].Endpoint)

	assert.Equal(t, requestlog.OutcomeUnmatched, entries[1].Outcome)
	assert.Equal(t, http.StatusNotFound, entries[1].ResponseStatus)
	assert.Contains(t, entries[1].Error, "unmocked GET")
}

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (failingBody) Close() error             { return nil }

func TestDispatch_BodyReadFailure(t *testing.T) {
	f := newDispatchFixture(true)
	s := f.setup("upload").Post()

	r := httptest.NewRequest("POST", testOrigin+"/api/upload", nil)
	r.Body = failingBody{}
	f.d.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, 0, s.Calls())
	failures := f.d.failures.snapshot()
	require.Len(t, failures, 1)
	var handlerErr *HandlerError
	require.True(t, errors.As(failures[0], &handlerErr))
	assert.Equal(t, StageReadBody, handlerErr.Stage)
	assert.Contains(t, handlerErr.Error(), "connection reset")
}

func TestDispatch_OversizedBodyIsReadFailure(t *testing.T) {
	f := newDispatchFixture(true)
	called := false
	s := f.setup("upload").Post().HandleRequest(func(*http.Request) (*Response, error) {
		called = true
		return NewResponse(http.StatusCreated), nil
	})

	f.serve("POST", "/api/upload", strings.Repeat("a", MaxRequestBodySize+100))

	assert.False(t, called)
	assert.Equal(t, 0, s.Calls())
	failures := f.d.failures.snapshot()
	require.Len(t, failures, 1)
	var handlerErr *HandlerError
	require.True(t, errors.As(failures[0], &handlerErr))
	assert.Equal(t, StageReadBody, handlerErr.Stage)
	var tooLarge *http.MaxBytesError
	require.True(t, errors.As(failures[0], &tooLarge))
	assert.Equal(t, int64(MaxRequestBodySize), tooLarge.Limit)
}

func TestDispatch_BodyAtLimitIsRead(t *testing.T) {
	f := newDispatchFixture(true)
	var seen int
	f.setup("upload").Post().Handle(func(req *Request) (*Response, error) {
		seen = len(req.Body)
		return NewResponse(http.StatusCreated), nil
	})

	rec := f.serve("POST", "/api/upload", strings.Repeat("a", MaxRequestBodySize))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, MaxRequestBodySize, seen)
	assert.Empty(t, f.d.failures.snapshot())
}

func TestDispatch_HandleRequestEchoesBody(t *testing.T) {
	f := newDispatchFixture(true)
	f.setup("echo").Post().HandleRequest(func(r *http.Request) (*Response, error) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		return TextResponse(http.StatusOK, string(data)), nil
	})

	rec := f.serve("POST", "/api/echo", `{"x":1}`)

	assert.Equal(t, `{"x":1}`, rec.Body.String())
	assert.Empty(t, f.d.failures.snapshot())
}

func TestDispatch_RequestPredicatesEachSeeFullBody(t *testing.T) {
	f := newDispatchFixture(true)
	readsBody := func(want string) RequestPredicate {
		return func(r *http.Request) bool {
			data, _ := io.ReadAll(r.Body)
			return string(data) == want
		}
	}
	other := f.setup("orders").Post().MatchRequest(readsBody(`{"id":2}`))
	target := f.setup("orders").Post().MatchRequest(readsBody(`{"id":1}`)).
		HandleRequest(func(r *http.Request) (*Response, error) {
			data, err := io.ReadAll(r.Body)
			if err != nil {
				return nil, err
			}
			return TextResponse(http.StatusOK, string(data)), nil
		})

	rec := f.serve("POST", "/api/orders", `{"id":1}`)

	assert.Equal(t, 0, other.Calls())
	assert.Equal(t, 1, target.Calls())
	assert.Equal(t, `{"id":1}`, rec.Body.String())
	assert.Empty(t, f.d.failures.snapshot())
}
