package jumpkit

import (
	"fmt"

	"github.com/rfratto/jumpkit/internal/jumphash"
)

// A Selector deterministically maps Keys onto a fixed number of servers.
// It holds no per-key state: identical inputs always produce identical
// results, across processes and across restarts.
//
// Selector is safe for concurrent use. For placement against a live,
// resizable fleet with load bounds, use a Placer instead.
type Selector struct {
	n int
}

// NewSelector returns a Selector over n servers. An error is returned if
// n < 1.
func NewSelector(n int) (*Selector, error) {
	if n < 1 {
		return nil, fmt.Errorf("selector needs at least 1 server, got %d", n)
	}
	return &Selector{n: n}, nil
}

// Servers returns the number of servers the Selector maps onto.
func (s *Selector) Servers() int { return s.n }

// Select returns the primary server in [0, Servers()) for key.
//
// Select is consistent: growing the fleet from n to n+1 servers moves a key
// only to the new server n (with probability 1/(n+1)), never between
// existing servers.
func (s *Selector) Select(key Key) int {
	return jumphash.Bucket(uint64(key), s.n)
}

// SelectAttempt returns an independent, uniformly distributed alternative
// server for the given attempt number (attempt >= 0). Alternatives are
// decorrelated from Select and from each other, so a saturated primary can
// be re-probed without walking any stored ring.
func (s *Selector) SelectAttempt(key Key, attempt int) int {
	return jumphash.BucketAttempt(uint64(key), s.n, attempt)
}
