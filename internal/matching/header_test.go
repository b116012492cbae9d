package matching

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchHeaderPattern(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer abc123")
	headers.Set("Accept", "application/vnd.api+json")

	tests := []struct {
		name    string
		header  string
		pattern string
		want    bool
	}{
		{"exact", "Authorization", "Bearer abc123", true},
		{"exact mismatch", "Authorization", "Bearer other", false},
		{"prefix", "Authorization", "Bearer *", true},
		{"suffix", "Accept", "*+json", true},
		{"contains", "Accept", "*vnd.api*", true},
		{"contains mismatch", "Accept", "*xml*", false},
		{"any value", "Accept", "*", true},
		{"case-insensitive name", "authorization", "Bearer*", true},
		{"missing header", "X-Missing", "*", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchHeaderPattern(tt.header, tt.pattern, headers))
		})
	}
}

func TestMatchHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-Tenant", "acme")
	headers.Set("X-Region", "eu")

	assert.True(t, MatchHeaders(map[string]string{"x-tenant": "acme", "X-Region": "eu"}, headers))
	assert.False(t, MatchHeaders(map[string]string{"X-Tenant": "acme", "X-Region": "us"}, headers))
	assert.True(t, MatchHeaders(nil, headers))
}

func TestMatchQueryParams(t *testing.T) {
	params := url.Values{"q": {"test"}, "page": {"1", "2"}, "empty": {""}}

	assert.True(t, MatchQueryParams(map[string]string{"q": "test", "page": "1"}, params))
	assert.False(t, MatchQueryParams(map[string]string{"page": "2"}, params))
	assert.True(t, MatchQueryParam("empty", "", params))
	assert.False(t, MatchQueryParam("absent", "", params))
	assert.True(t, HasQueryParam("empty", params))
	assert.False(t, HasQueryParam("absent", params))
}
