package httpmock

import "sync"

// failureSink accumulates failures raised by concurrently running request
// handlers. Entries are only ever appended.
type failureSink struct {
	mu      sync.Mutex
	entries []error
}

func (f *failureSink) record(err error) {
	if err == nil {
		return
	}
	f.mu.Lock()
	f.entries = append(f.entries, err)
	f.mu.Unlock()
}

func (f *failureSink) snapshot() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]error(nil), f.entries...)
}
