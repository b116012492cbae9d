package httpmock

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/httpmock/pkg/httputil"
	"github.com/getmockd/httpmock/pkg/requestlog"
)

// MaxRequestBodySize is the largest request body the dispatcher reads.
const MaxRequestBodySize = 10 << 20 // 10MB

// dispatcher turns one accepted request into exactly one response. Every
// failure is routed to the failure sink; none escape to the accept loop.
type dispatcher struct {
	origin     string // scheme, host and port, no trailing slash
	prefixPath string // "/" + normalized prefix
	strict     bool
	registry   *registry
	failures   *failureSink
	journal    requestlog.Store
	log        *slog.Logger
	inflight   *sync.WaitGroup
}

// exchange carries the per-request state through the dispatch steps.
type exchange struct {
	r        *http.Request
	url      string
	endpoint string
	entry    *requestlog.Entry
}

func (d *dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.inflight.Add(1)
	defer d.inflight.Done()

	start := time.Now()
	uri := r.URL.RequestURI()
	endpoint, inPrefix := strings.CutPrefix(uri, d.prefixPath)
	if !inPrefix {
		endpoint = ""
	}
	x := &exchange{r: r, url: d.origin + uri, endpoint: endpoint}
	x.entry = &requestlog.Entry{
		Timestamp: start,
		Method:    r.Method,
		URL:       x.url,
		Endpoint:  endpoint,
		Headers:   r.Header.Clone(),
	}

	defer func() {
		x.entry.DurationMs = int(time.Since(start).Milliseconds())
		d.journal.Log(x.entry)
	}()

	body, err := readBody(w, r)
	if err != nil {
		x.entry.Outcome = requestlog.OutcomeFailed
		d.fail(x, &HandlerError{Stage: StageReadBody, Method: r.Method, URL: x.url, Err: err})
		return
	}
	x.entry.Body = requestlog.TruncateBody(body)
	x.entry.BodySize = len(body)

	var res resolution
	if inPrefix {
		res = d.registry.resolve(r, endpoint, body)
	}
	for _, err := range res.failures {
		d.fail(x, err)
	}

	switch len(res.matches) {
	case 0:
		x.entry.Outcome = requestlog.OutcomeUnmatched
		if d.strict {
			d.fail(x, &UnmockedError{Method: r.Method, URL: x.url})
		}
		x.entry.ResponseStatus = http.StatusNotFound
		httputil.WriteNotFound(w, "no_match", fmt.Sprintf("no setup matches %s %s", r.Method, x.url))
		return
	case 1:
		x.entry.Outcome = requestlog.OutcomeMatched
	default:
		x.entry.Outcome = requestlog.OutcomeAmbiguous
		d.fail(x, &AmbiguousMatchError{Method: r.Method, URL: x.url, Matches: len(res.matches)})
	}

	setup := res.matches[0]
	x.entry.MatchedSetupID = setup.ID()

	// Counted before the factory runs so waiters observe the selection even
	// when response generation fails.
	setup.calls.Add(1)

	resetBody(r, body)
	resp, err := setup.respond(&Request{HTTP: r, Endpoint: endpoint, Body: body})
	if err != nil {
		x.entry.Outcome = requestlog.OutcomeFailed
		d.fail(x, &HandlerError{Stage: StageHandler, Method: r.Method, URL: x.url, Err: err})
		return
	}

	x.entry.ResponseStatus = resp.StatusCode()
	if err := writeResponse(w, resp); err != nil {
		d.fail(x, &HandlerError{Stage: StageWriteResponse, Method: r.Method, URL: x.url, Err: err})
		return
	}

	d.log.Debug("served request",
		"method", r.Method,
		"url", x.url,
		"setup", setup.ID(),
		"status", x.entry.ResponseStatus,
	)
}

func (d *dispatcher) fail(x *exchange, err error) {
	d.failures.record(err)
	if x.entry.Error == "" {
		x.entry.Error = err.Error()
	} else {
		x.entry.Error += "\n" + err.Error()
	}
	d.log.Warn("request failure recorded", "method", x.r.Method, "url", x.url, "error", err)
}

// readBody reads the whole body. A body over MaxRequestBodySize is an error,
// never a truncation.
func readBody(w http.ResponseWriter, r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", fmt.Errorf("request body exceeds %d bytes: %w", tooLarge.Limit, err)
		}
		return "", err
	}
	return string(data), nil
}

// resetBody gives predicates and factories that read r.Body the full body.
func resetBody(r *http.Request, body string) {
	r.Body = io.NopCloser(strings.NewReader(body))
}

// writeResponse encodes the body before touching the ResponseWriter, so an
// encoding failure leaves the response unwritten.
func writeResponse(w http.ResponseWriter, resp *Response) error {
	data, contentType, err := httputil.EncodeBody(resp.Body)
	if err != nil {
		return err
	}

	header := w.Header()
	for _, h := range resp.Headers {
		header.Set(h.Name, h.Value)
	}
	if contentType != "" && header.Get("Content-Type") == "" {
		header.Set("Content-Type", contentType)
	}

	w.WriteHeader(resp.StatusCode())
	if len(data) == 0 {
		return nil
	}
	_, err = w.Write(data)
	return err
}
