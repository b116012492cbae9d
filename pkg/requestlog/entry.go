package requestlog

import "time"

// MaxBodySize is the number of body bytes kept per entry; longer bodies are
// truncated and BodySize records the original length.
const MaxBodySize = 10 * 1024

// Outcome classifies how a request was resolved.
type Outcome string

// Request outcomes.
const (
	OutcomeMatched   Outcome = "matched"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeAmbiguous Outcome = "ambiguous"
	OutcomeFailed    Outcome = "failed"
)

// Entry captures one request/response exchange.
type Entry struct {
	// ID is a unique identifier for the entry.
	ID string `json:"id"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`

	Method   string              `json:"method"`
	URL      string              `json:"url"`
	Endpoint string              `json:"endpoint"`
	Headers  map[string][]string `json:"headers,omitempty"`

	// Body is the request body (truncated to MaxBodySize).
	Body     string `json:"body,omitempty"`
	BodySize int    `json:"bodySize"`

	// MatchedSetupID is the ID of the setup that served the request, empty if none.
	MatchedSetupID string  `json:"matchedSetupID,omitempty"`
	Outcome        Outcome `json:"outcome"`

	ResponseStatus int `json:"responseStatus"`
	DurationMs     int `json:"durationMs"`

	// Error is the failure recorded while serving the request, if any.
	Error string `json:"error,omitempty"`
}

// TruncateBody returns body cut to MaxBodySize.
func TruncateBody(body string) string {
	if len(body) <= MaxBodySize {
		return body
	}
	return body[:MaxBodySize]
}
