package httpmock

import (
	"encoding/json"
	"net/http"
	"reflect"
	"testing"

	"github.com/getmockd/httpmock/pkg/requestlog"
)

// AssertCalled asserts that the setup served at least one request.
func (s *Setup) AssertCalled(t testing.TB) bool {
	t.Helper()
	if s.Calls() == 0 {
		t.Errorf("expected %s %s to be called, but it was not", methodLabel(s.methodFilter()), s.URL())
		return false
	}
	return true
}

// AssertCalledTimes asserts that the setup served exactly n requests.
func (s *Setup) AssertCalledTimes(t testing.TB, n int) bool {
	t.Helper()
	if got := s.Calls(); got != n {
		t.Errorf("expected %s %s to be called %d times, got %d", methodLabel(s.methodFilter()), s.URL(), n, got)
		return false
	}
	return true
}

// AssertNotCalled asserts that the setup served no requests.
func (s *Setup) AssertNotCalled(t testing.TB) bool {
	t.Helper()
	if got := s.Calls(); got != 0 {
		t.Errorf("expected %s %s not to be called, but it was called %d times", methodLabel(s.methodFilter()), s.URL(), got)
		return false
	}
	return true
}

// AssertJSONBody asserts that a journal entry's body is JSON equal to
// expected. The expected value can be a string, []byte, or any value that
// will be JSON encoded.
func AssertJSONBody(t testing.TB, entry *requestlog.Entry, expected any) bool {
	t.Helper()

	var data []byte
	switch v := expected.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			t.Errorf("failed to marshal expected value: %v", err)
			return false
		}
		data = encoded
	}

	var want, got any
	if err := json.Unmarshal(data, &want); err != nil {
		t.Errorf("failed to parse expected JSON: %v", err)
		return false
	}
	if err := json.Unmarshal([]byte(entry.Body), &got); err != nil {
		t.Errorf("request body is not valid JSON: %v\nbody: %s", err, entry.Body)
		return false
	}

	if !reflect.DeepEqual(got, want) {
		wantBytes, _ := json.MarshalIndent(want, "", "  ")
		gotBytes, _ := json.MarshalIndent(got, "", "  ")
		t.Errorf("request body does not match expected JSON\nexpected:\n%s\nactual:\n%s", wantBytes, gotBytes)
		return false
	}
	return true
}

// AssertHeader asserts that a journal entry carried the header with the expected value.
func AssertHeader(t testing.TB, entry *requestlog.Entry, key, expected string) bool {
	t.Helper()

	values := http.Header(entry.Headers).Values(key)
	if len(values) == 0 {
		t.Errorf("expected header %q not found in request", key)
		return false
	}
	if values[0] != expected {
		t.Errorf("header %q: expected %q, got %q", key, expected, values[0])
		return false
	}
	return true
}
