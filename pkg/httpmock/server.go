package httpmock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getmockd/httpmock/internal/ports"
	"github.com/getmockd/httpmock/pkg/logging"
	"github.com/getmockd/httpmock/pkg/requestlog"
)

// Defaults for New.
const (
	DefaultBasePort        = 49152
	DefaultPortRange       = 50
	DefaultShutdownTimeout = 5 * time.Second
	DefaultHost            = "localhost"
)

// Option configures a MockServer.
type Option func(*options)

type options struct {
	log             *slog.Logger
	host            string
	basePort        int
	portRange       int
	shutdownTimeout time.Duration
	journal         requestlog.Store
}

// WithLogger sets the operational logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithBasePort sets the first port tried when binding.
func WithBasePort(port int) Option {
	return func(o *options) { o.basePort = port }
}

// WithPortRange sets how many consecutive ports are tried when binding.
func WithPortRange(n int) Option {
	return func(o *options) { o.portRange = n }
}

// WithShutdownTimeout bounds how long Close waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) { o.shutdownTimeout = d }
}

// WithRequestLog sets the store that receives one entry per request.
// Defaults to a requestlog.MemoryStore with requestlog.DefaultMaxEntries.
func WithRequestLog(store requestlog.Store) Option {
	return func(o *options) {
		if store != nil {
			o.journal = store
		}
	}
}

// MockServer is an in-process HTTP server answering requests from registered
// setups. Close it when the test ends; Close reports every unexpected request,
// handler failure and unmet required setup as one error.
type MockServer struct {
	baseURL string
	strict  bool
	port    int
	log     *slog.Logger

	registry   *registry
	failures   *failureSink
	journal    requestlog.Store
	httpServer *http.Server
	inflight   sync.WaitGroup

	shutdownTimeout time.Duration
	serveDone       chan struct{}
	closed          atomic.Bool
}

// New binds a listener on the first free port of the configured range and
// starts serving immediately. The prefix is normalized to have no leading
// slash and a trailing one, so New("api", ...) serves under
// http://localhost:{port}/api/. When strict is set, any request no setup
// matches is a teardown failure.
func New(prefix string, strict bool, opts ...Option) (*MockServer, error) {
	o := options{
		log:             logging.Nop(),
		host:            DefaultHost,
		basePort:        DefaultBasePort,
		portRange:       DefaultPortRange,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.journal == nil {
		o.journal = requestlog.NewMemoryStore(requestlog.DefaultMaxEntries)
	}

	prefix = normalizePrefix(prefix)

	ln, port, err := ports.Listen(o.host, o.basePort, o.portRange)
	if err != nil {
		return nil, fmt.Errorf("binding mock server: %w", err)
	}

	origin := fmt.Sprintf("http://%s", net.JoinHostPort(o.host, fmt.Sprint(port)))
	m := &MockServer{
		baseURL:         origin + "/" + prefix,
		strict:          strict,
		port:            port,
		log:             logging.ForServer(o.log, origin+"/"+prefix),
		registry:        &registry{},
		failures:        &failureSink{},
		journal:         o.journal,
		shutdownTimeout: o.shutdownTimeout,
		serveDone:       make(chan struct{}),
	}
	m.httpServer = &http.Server{
		Handler: &dispatcher{
			origin:     origin,
			prefixPath: "/" + prefix,
			strict:     strict,
			registry:   m.registry,
			failures:   m.failures,
			journal:    m.journal,
			log:        m.log,
			inflight:   &m.inflight,
		},
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(m.log.Handler(), slog.LevelDebug),
	}
	// Ports are reused across servers; a pooled connection to a closed
	// server would swallow the next request.
	m.httpServer.SetKeepAlivesEnabled(false)

	go m.serve(ln)

	m.log.Info("mock server started", "strict", strict)
	return m, nil
}

// serve runs the accept loop until the listener is closed. The net/http
// server accepts the next connection before handling the current one, so a
// slow handler never blocks acceptance.
func (m *MockServer) serve(ln net.Listener) {
	defer close(m.serveDone)

	err := m.httpServer.Serve(ln)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}
	m.failures.record(&HandlerError{Stage: StageAcceptLoop, Method: "-", URL: m.baseURL, Err: err})
	m.log.Error("accept loop stopped", "error", err)
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimLeft(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// BaseURL returns http://localhost:{port}/{prefix}, always ending in "/".
func (m *MockServer) BaseURL() string { return m.baseURL }

// Port returns the bound port.
func (m *MockServer) Port() int { return m.port }

// Strict reports whether unmatched requests are failures.
func (m *MockServer) Strict() bool { return m.strict }

// Setup registers a new rule for endpoint, relative to BaseURL, and returns
// it for configuration. Endpoints are compared by exact string equality with
// the remainder of the request URL, query string included; one leading "/"
// is ignored.
func (m *MockServer) Setup(endpoint string) *Setup {
	s := newSetup(m.baseURL, endpoint)
	m.registry.add(s)
	return s
}

// Setups returns every registered setup in registration order.
func (m *MockServer) Setups() []*Setup {
	return m.registry.snapshot()
}

// Requests returns the request journal in arrival order.
func (m *MockServer) Requests() []*requestlog.Entry {
	return m.journal.List(nil)
}

// RequestsFor returns the journal entries served by s, in arrival order.
func (m *MockServer) RequestsFor(s *Setup) []*requestlog.Entry {
	return m.journal.List(&requestlog.Filter{MatchedSetupID: s.ID()})
}

// Failures returns the failures recorded so far without closing the server.
func (m *MockServer) Failures() []error {
	return m.failures.snapshot()
}

// Close stops the listener, waits for in-flight requests, and validates the
// run. It returns a *TeardownError listing every recorded failure, or, when
// there were none, every required setup that was never called. A second call
// returns ErrClosed.
//
// When graceful shutdown exceeds the shutdown timeout, connections are closed
// forcibly and Close waits up to one more timeout for running handlers to
// return. A handler still running after that is reported as a failure; any
// failure it records later is not part of the result.
func (m *MockServer) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
	defer cancel()

	if err := m.httpServer.Shutdown(ctx); err != nil {
		m.failures.record(&HandlerError{Stage: StageAcceptLoop, Method: "-", URL: m.baseURL,
			Err: fmt.Errorf("shutdown: %w", err)})
		_ = m.httpServer.Close()
		if !m.waitInflight(m.shutdownTimeout) {
			m.failures.record(&HandlerError{Stage: StageAcceptLoop, Method: "-", URL: m.baseURL,
				Err: errors.New("handlers still running after forced close")})
		}
	}
	<-m.serveDone

	m.log.Info("mock server stopped")
	return m.verify()
}

// waitInflight reports whether every running handler returned within d.
func (m *MockServer) waitInflight(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

func (m *MockServer) verify() error {
	if failures := m.failures.snapshot(); len(failures) > 0 {
		return &TeardownError{Failures: failures}
	}

	var unmet []error
	for _, s := range m.registry.snapshot() {
		if s.isRequired() && s.Calls() == 0 {
			unmet = append(unmet, &UnmetRequiredError{Method: s.methodFilter(), URL: s.URL()})
		}
	}
	if len(unmet) > 0 {
		return &TeardownError{Failures: unmet}
	}
	return nil
}
