// Package jumpkit implements bounded-load placement of keys onto a dynamic
// fleet of servers using jump consistent hashing. There are three main
// concepts:
//
// 1. A ClusterView tracks the active server roster as a sequence of
// immutable, generation-stamped snapshots.
//
// 2. A LoadTable tracks how many keys each server currently holds and
// enforces a hard cap relative to the fleet average.
//
// 3. A Placer combines the two: it hashes a key to a primary candidate and,
// when that candidate is saturated, re-samples independent alternative
// candidates until one has room or the probe budget runs out.
//
// No ring or per-key placement table is kept; a placement is recomputed from
// the key and the current state, and jumpkit forgets it once returned.
package jumpkit
