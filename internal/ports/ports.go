// Package ports provides port scanning for listeners that must bind within a
// fixed range.
package ports

import (
	"errors"
	"fmt"
	"net"
)

// ErrExhausted is returned when no port in the scanned range could be bound.
var ErrExhausted = errors.New("no port available in range")

// Listen binds a TCP listener on host at the first free port in
// [base, base+count). On exhaustion the returned error wraps both ErrExhausted
// and the last bind error.
func Listen(host string, base, count int) (net.Listener, int, error) {
	if count <= 0 {
		count = 1
	}

	var lastErr error
	for port := base; port < base+count; port++ {
		//nolint:gosec // G102: mock listeners are bound to the caller-supplied host
		ln, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprint(port)))
		if err != nil {
			lastErr = err
			continue
		}
		return ln, port, nil
	}

	return nil, 0, fmt.Errorf("%w: %d-%d: %w", ErrExhausted, base, base+count-1, lastErr)
}
