// Package httpmock provides an in-process HTTP server for standing in for a
// real HTTP dependency inside Go tests.
//
// A test registers setups, rules describing which requests they match and
// what they answer, then exercises code that issues real HTTP calls against
// BaseURL. Closing the server validates the run.
//
// # Basic Usage
//
//	func TestClient(t *testing.T) {
//	    mock := httpmock.NewForTest(t, "api", true)
//
//	    mock.Setup("users/42").Get().
//	        Body(User{ID: "42", Name: "Ada"})
//
//	    user, err := NewClient(mock.BaseURL()).GetUser("42")
//	    ...
//	}
//
// NewForTest closes the server in t.Cleanup and reports the teardown error.
// Outside of tests use New and check the error returned by Close:
//
//	mock, err := httpmock.New("api", true)
//	if err != nil {
//	    return err
//	}
//	defer func() { err = errors.Join(err, mock.Close()) }()
//
// # Matching
//
// A setup matches a request when all of the following hold:
//
//   - its method filter is unset or equals the request method
//   - its endpoint equals the request URL after BaseURL, query string included
//   - its request predicate (MatchRequest) is unset or returns true
//   - its body predicate (MatchBody) is unset or returns true
//
// Every setup is evaluated for every request. Exactly one match serves the
// request. No match answers 404 and, on a strict server, records an
// "unmocked" failure. Several matches record an ambiguity failure; the first
// registered match still answers.
//
//	mock.Setup("orders").Post().
//	    MatchBody(httpmock.JSONBody(func(o Order) bool { return o.Qty > 10 })).
//	    Status(http.StatusAccepted)
//
//	mock.Setup("orders").Post().
//	    MatchBody(httpmock.JSONBody(func(o Order) bool { return o.Qty <= 10 })).
//	    Status(http.StatusCreated)
//
// Predicate helpers cover common cases: HeaderEquals, HeaderPattern,
// Headers, QueryParam, QueryParams, HasQuery and Expr over the request, and
// BodyContains, BodyEquals, BodyPattern, BodyJSONPath and BodySchema over the
// body. AllOf and AllBody combine them.
//
// # Responses
//
// Status, Header and Body configure a fixed response. Header joins multiple
// values with ",". Strings and byte slices are sent verbatim; other bodies are
// JSON-encoded and default to Content-Type application/json.
//
// Handle installs a response factory instead. JSONHandler decodes the body
// into a typed value first:
//
//	mock.Setup("echo").Post().Handle(httpmock.JSONHandler(
//	    func(in Message, r *http.Request) (*httpmock.Response, error) {
//	        return httpmock.JSONResponse(http.StatusOK, in), nil
//	    }))
//
// Errors and panics from factories and predicates never reach the client as
// a crash; they are recorded and surface when the server is closed.
//
// # Synchronization
//
// Each setup counts the requests it served. WaitForCalls blocks the test (not
// the server) until a count is reached:
//
//	if err := setup.WaitForCalls(ctx, 2, time.Second); err != nil {
//	    t.Fatal(err)
//	}
//
// # Teardown
//
// Close returns a *TeardownError whose message is the newline-joined list of
// failures: unmocked requests (strict mode), ambiguous matches and handler
// failures. When none occurred, required setups that were never called are
// reported instead.
//
// # Request Journal
//
// Every request is recorded in a requestlog.Store, with its matched setup,
// outcome and status. Requests and RequestsFor read it back, and the
// assertion helpers check entries and call counts:
//
//	entries := mock.RequestsFor(create)
//	httpmock.AssertJSONBody(t, entries[0], `{"name":"Ada"}`)
//	create.AssertCalledTimes(t, 1)
package httpmock
