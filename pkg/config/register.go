package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/getmockd/httpmock/pkg/httpmock"
)

// Options returns the server options the file declares.
func (f *File) Options() []httpmock.Option {
	var opts []httpmock.Option
	if f.BasePort != 0 {
		opts = append(opts, httpmock.WithBasePort(f.BasePort))
	}
	return opts
}

// Register adds every setup of the file to m in file order and returns them.
// Nothing is registered when any match block fails to compile.
func (f *File) Register(m *httpmock.MockServer) ([]*httpmock.Setup, error) {
	type compiled struct {
		req  httpmock.RequestPredicate
		body httpmock.BodyPredicate
	}

	preds := make([]compiled, len(f.Setups))
	for i, s := range f.Setups {
		if s.Match.empty() {
			continue
		}
		req, body, err := s.Match.predicates()
		if err != nil {
			return nil, fmt.Errorf("setups[%d] (%s): %w", i, s.Endpoint, err)
		}
		preds[i] = compiled{req: req, body: body}
	}

	setups := make([]*httpmock.Setup, 0, len(f.Setups))
	for i, s := range f.Setups {
		setup := m.Setup(s.Endpoint).
			Method(s.Method).
			Status(s.statusOrDefault())

		// Headers are written in name order.
		for _, name := range slices.Sorted(maps.Keys(s.Headers)) {
			setup.Header(name, s.Headers[name]...)
		}
		if s.Body != nil {
			setup.Body(s.Body)
		}
		if preds[i].req != nil {
			setup.MatchRequest(preds[i].req)
		}
		if preds[i].body != nil {
			setup.MatchBody(preds[i].body)
		}
		if s.Required {
			setup.Required()
		}
		setups = append(setups, setup)
	}
	return setups, nil
}
