package jumpkit

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/atomic"
)

// LoadTable tracks the number of keys currently assigned to each server and
// enforces the bounded-load admission check: a server may hold at most
// ceil(slack * placedKeys / servers) keys, recomputed from live counts on
// every admission. The sum of per-server loads always equals the number of
// keys reserved and not yet released; keys are never dropped or counted
// twice.
//
// LoadTable is safe for concurrent use. It implements Observer so that a
// ClusterView can drive its membership: counters are created at zero when
// servers join and folded out of the placed-key total when servers leave.
type LoadTable struct {
	slack float64
	total atomic.Int64

	resizeMut sync.Mutex   // Serializes counter-set replacement.
	state     atomic.Value // *tableState
}

var _ Observer = (*LoadTable)(nil)

// poisonedLoad marks a counter whose server left the roster. Folding a
// removed counter out of the placed-key total swaps the sentinel in, so a
// reservation or release racing the shrink fails its CAS, reloads, and
// treats the server as gone instead of mutating a count that was already
// folded.
const poisonedLoad = math.MaxInt64

// tableState is an immutable counter set for one roster generation.
// Surviving servers share their counters with the previous generation, so
// loads carry across a resize without copying, and in-flight reservations
// against an old generation remain visible to the new one.
type tableState struct {
	generation uint64
	counters   []*atomic.Int64
}

// NewLoadTable returns a LoadTable for n servers with the given capacity
// slack. An error is returned if n < 1 or slack < 1.0. The slack is fixed
// for the lifetime of the table.
func NewLoadTable(n int, slack float64) (*LoadTable, error) {
	if n < 1 {
		return nil, fmt.Errorf("load table needs at least 1 server, got %d", n)
	}
	if slack < 1.0 {
		return nil, fmt.Errorf("capacity slack must be at least 1.0, got %v", slack)
	}

	lt := &LoadTable{slack: slack}
	lt.state.Store(&tableState{generation: 1, counters: newCounters(n)})
	return lt, nil
}

func newCounters(n int) []*atomic.Int64 {
	counters := make([]*atomic.Int64, n)
	for i := range counters {
		counters[i] = atomic.NewInt64(0)
	}
	return counters
}

// TryReserve atomically reserves one unit of load on server if it is under
// capacity, returning whether the reservation was made. The check and the
// increment form a single atomic unit: two racing callers can never both
// win the last slot on a server.
//
// A server index outside the current roster reports false, as if
// saturated; this covers the window where a placement read a grown roster
// before the table followed it.
func (lt *LoadTable) TryReserve(server int) bool {
	state := lt.state.Load().(*tableState)
	if server < 0 || server >= len(state.counters) {
		return false
	}

	bound := lt.capacityBound(len(state.counters))

	c := state.counters[server]
	for {
		// A poisoned counter reads as math.MaxInt64 and always fails
		// the bound check, so reservations against a removed server
		// land here instead of escaping the fold.
		cur := c.Load()
		if cur >= bound {
			return false
		}
		if c.CAS(cur, cur+1) {
			lt.total.Inc()
			return true
		}
	}
}

// Release returns one unit of load on server, for callers evicting or
// expiring a previously placed key. An error is returned if server is
// outside the current roster or holds no load.
func (lt *LoadTable) Release(server int) error {
	state := lt.state.Load().(*tableState)
	if server < 0 || server >= len(state.counters) {
		return fmt.Errorf("server %d outside roster of %d servers", server, len(state.counters))
	}

	c := state.counters[server]
	for {
		cur := c.Load()
		if cur == poisonedLoad {
			return fmt.Errorf("server %d was removed from the roster", server)
		}
		if cur <= 0 {
			return fmt.Errorf("server %d has no load to release", server)
		}
		if c.CAS(cur, cur-1) {
			lt.total.Dec()
			return nil
		}
	}
}

// capacityBound computes the admission bound from the live placed-key
// total. The bound is floored at one key so an empty table can admit its
// first placement; past that point ceil(slack*total/n) is always >= 1 and
// the floor has no effect.
func (lt *LoadTable) capacityBound(n int) int64 {
	bound := int64(math.Ceil(lt.slack * float64(lt.total.Load()) / float64(n)))
	if bound < 1 {
		bound = 1
	}
	return bound
}

// Snapshot returns a read-only view of the table for diagnostics. Loads
// are read without a global lock, so under concurrent placement the
// snapshot is a close approximation rather than a linearizable cut.
func (lt *LoadTable) Snapshot() Snapshot {
	state := lt.state.Load().(*tableState)

	var (
		loads     = make([]int64, len(state.counters))
		total     int64
		bound     = lt.capacityBound(len(state.counters))
		saturated int
	)
	for i, c := range state.counters {
		loads[i] = c.Load()
		if loads[i] == poisonedLoad {
			// A concurrent shrink folded this server out from under
			// the state we captured.
			loads[i] = 0
		}
		total += loads[i]
		if loads[i] >= bound {
			saturated++
		}
	}

	return Snapshot{
		Generation: state.generation,
		Servers:    len(state.counters),
		Slack:      lt.slack,
		Total:      total,
		Loads:      loads,
		Capacity:   bound,
		Saturated:  saturated,
	}
}

// NotifyViewChanged implements Observer. Growing appends zeroed counters
// for the new servers; shrinking drops the removed servers' counters and
// folds their counts out of the placed-key total. Keys that lived on
// removed servers must be migrated (re-placed) by the caller.
func (lt *LoadTable) NotifyViewChanged(v View) {
	lt.resizeMut.Lock()
	defer lt.resizeMut.Unlock()

	old := lt.state.Load().(*tableState)
	if v.Generation == old.generation && v.N == len(old.counters) {
		return
	}

	counters := make([]*atomic.Int64, v.N)
	for i := range counters {
		if i < len(old.counters) {
			counters[i] = old.counters[i]
		} else {
			counters[i] = atomic.NewInt64(0)
		}
	}
	// Swapping the sentinel in before subtracting makes the fold and any
	// racing reservation mutually exclusive: a reservation that commits
	// first is included in the folded value, and one that loses the swap
	// fails its CAS and observes the sentinel.
	for i := v.N; i < len(old.counters); i++ {
		lt.total.Sub(old.counters[i].Swap(poisonedLoad))
	}

	lt.state.Store(&tableState{generation: v.Generation, counters: counters})
}
