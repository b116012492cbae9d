package httpmock

import (
	"errors"
	"testing"
)

// NewForTest starts a mock server owned by t. The test fails immediately if
// no port can be bound, and Close runs in t.Cleanup, reporting the teardown
// error through t.Error. Calling Close earlier in the test is allowed.
func NewForTest(t testing.TB, prefix string, strict bool, opts ...Option) *MockServer {
	t.Helper()

	m, err := New(prefix, strict, opts...)
	if err != nil {
		t.Fatalf("starting mock server: %v", err)
		return nil
	}

	t.Cleanup(func() {
		if err := m.Close(); err != nil && !errors.Is(err, ErrClosed) {
			t.Errorf("mock server %s: %v", m.BaseURL(), err)
		}
	})
	return m
}
