package requestlog

// Logger is the minimal interface for recording request entries.
type Logger interface {
	Log(entry *Entry)
}

// Store defines the interface for request history storage.
type Store interface {
	Logger

	// Get retrieves an entry by ID.
	Get(id string) *Entry

	// List returns entries in arrival order, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of entries.
	Count() int
}

// Filter defines criteria for filtering entries. Zero fields are ignored.
type Filter struct {
	Method string

	// Endpoint filters by exact endpoint (URL remainder after the base URL).
	Endpoint string

	MatchedSetupID string
	Outcome        Outcome

	// HasError filters by error presence.
	HasError *bool

	// Limit is the maximum number of entries to return.
	Limit int

	// Offset is the number of entries to skip.
	Offset int
}

func (f *Filter) matches(e *Entry) bool {
	if f == nil {
		return true
	}
	if f.Method != "" && e.Method != f.Method {
		return false
	}
	if f.Endpoint != "" && e.Endpoint != f.Endpoint {
		return false
	}
	if f.MatchedSetupID != "" && e.MatchedSetupID != f.MatchedSetupID {
		return false
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	if f.HasError != nil && (e.Error != "") != *f.HasError {
		return false
	}
	return true
}
