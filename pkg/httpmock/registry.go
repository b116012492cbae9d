package httpmock

import (
	"net/http"
	"sync"
)

// registry is the append-only, insertion-ordered set of setups.
type registry struct {
	mu     sync.RWMutex
	setups []*Setup
}

func (r *registry) add(s *Setup) {
	r.mu.Lock()
	r.setups = append(r.setups, s)
	r.mu.Unlock()
}

func (r *registry) snapshot() []*Setup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Setup(nil), r.setups...)
}

// resolution is the outcome of evaluating every setup against one request.
type resolution struct {
	// matches holds every matching setup in registration order.
	matches []*Setup
	// failures holds predicate panics raised during evaluation.
	failures []error
}

// resolve evaluates all setups; matching is not first-match-wins, so even
// after a match the remaining setups are checked for ambiguity. Each setup
// sees req.Body rewound to the start.
func (r *registry) resolve(req *http.Request, endpoint, body string) resolution {
	var res resolution
	for _, s := range r.snapshot() {
		resetBody(req, body)
		ok, err := s.match(req, endpoint, body)
		if err != nil {
			res.failures = append(res.failures, err)
			continue
		}
		if ok {
			res.matches = append(res.matches, s)
		}
	}
	return res
}
