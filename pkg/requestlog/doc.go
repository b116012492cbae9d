// Package requestlog records the requests a mock server received, which setup
// answered each one and what was sent back.
//
// It is distinct from operational logging (log/slog) and from teardown
// failures: every request lands in the journal, matched or not, so tests can
// make assertions beyond call counts:
//
//	for _, e := range mock.Requests() {
//	    if e.MatchedSetupID == "" {
//	        t.Logf("unmatched %s %s", e.Method, e.URL)
//	    }
//	}
//
// This is a leaf package with no internal dependencies.
package requestlog
