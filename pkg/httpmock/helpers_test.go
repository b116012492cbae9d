package httpmock

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testClient = &http.Client{Timeout: 5 * time.Second}

// startServer starts a mock server and returns it unclosed; tests call Close
// themselves to inspect the teardown error.
func startServer(t *testing.T, prefix string, strict bool, opts ...Option) *MockServer {
	t.Helper()
	m, err := New(prefix, strict, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// call issues a request and returns the response with its body read.
func call(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)

	resp, err := testClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}
