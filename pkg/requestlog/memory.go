package requestlog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxEntries bounds a MemoryStore created with a non-positive capacity.
const DefaultMaxEntries = 1000

// MemoryStore is a Store backed by a bounded in-memory slice. When full, the
// oldest entry is evicted.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    []*Entry
	maxEntries int
}

// NewMemoryStore creates a MemoryStore holding at most maxEntries entries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{
		entries:    make([]*Entry, 0, min(maxEntries, 64)),
		maxEntries: maxEntries,
	}
}

// Log records an entry, assigning an ID and timestamp when missing.
func (s *MemoryStore) Log(entry *Entry) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.maxEntries {
		s.entries = s.entries[1:]
	}
	s.entries = append(s.entries, entry)
}

// Get retrieves an entry by ID.
func (s *MemoryStore) Get(id string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.ID == id {
			return entry
		}
	}
	return nil
}

// List returns entries in arrival order, filtered and paged by filter.
func (s *MemoryStore) List(filter *Filter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if filter.matches(entry) {
			result = append(result, entry)
		}
	}

	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(result) {
				return []*Entry{}
			}
			result = result[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(result) {
			result = result[:filter.Limit]
		}
	}
	return result
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.entries[:0]
}

// Count returns the number of entries.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
