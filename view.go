package jumpkit

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// A View is an immutable snapshot of the active server roster. Servers are
// identified by their index in [0, N) within the generation that named
// them.
type View struct {
	// N is the number of active servers. Always >= 1.
	N int
	// Generation is the version of the roster. It increases on every
	// resize, so two Views with the same Generation describe the same
	// roster.
	Generation uint64
}

// An Observer watches a ClusterView, waiting for the roster to change.
type Observer interface {
	// NotifyViewChanged is invoked any time a new View is published.
	// Notifications for one ClusterView are never delivered concurrently.
	NotifyViewChanged(v View)
}

// FuncObserver implements Observer.
type FuncObserver func(v View)

// NotifyViewChanged implements Observer.
func (f FuncObserver) NotifyViewChanged(v View) { f(v) }

// ClusterView tracks the active server roster. Rosters are never mutated in
// place: every resize constructs a fresh View and publishes it with a single
// atomic swap, so concurrent readers always see a complete (N, Generation)
// pair. Readers that captured an older View keep using it unaffected; old
// Views are plain immutable values reclaimed once nothing references them.
type ClusterView struct {
	resizeMut sync.Mutex   // Serializes resizes and observer notification.
	cur       atomic.Value // View

	observersMut sync.Mutex
	observers    []Observer
}

// NewClusterView returns a ClusterView with an initial roster of n servers
// at generation 1. An error is returned if n < 1.
func NewClusterView(n int) (*ClusterView, error) {
	if n < 1 {
		return nil, fmt.Errorf("cluster needs at least 1 server, got %d", n)
	}

	cv := &ClusterView{}
	cv.cur.Store(View{N: n, Generation: 1})
	return cv, nil
}

// View returns the current roster snapshot. Callers performing a multi-step
// computation should call View once and use the captured value throughout,
// even if a resize lands mid-computation.
func (cv *ClusterView) View() View {
	return cv.cur.Load().(View)
}

// Resize replaces the roster with one of n servers under a fresh
// generation, then notifies observers. An error is returned if n < 1.
//
// Growing invalidates only the keys jump consistent hashing moves to the
// new servers. Shrinking guarantees that placements against the new View
// never return a removed index; migrating keys that lived on removed
// servers is the caller's responsibility.
func (cv *ClusterView) Resize(n int) error {
	if n < 1 {
		return fmt.Errorf("cluster needs at least 1 server, got %d", n)
	}

	cv.resizeMut.Lock()
	defer cv.resizeMut.Unlock()

	next := View{N: n, Generation: cv.View().Generation + 1}
	cv.cur.Store(next)
	cv.notifyViewChanged(next)
	return nil
}

// Observe registers o to be notified whenever a new View is published.
func (cv *ClusterView) Observe(o Observer) {
	cv.observersMut.Lock()
	defer cv.observersMut.Unlock()
	cv.observers = append(cv.observers, o)
}

func (cv *ClusterView) notifyViewChanged(v View) {
	cv.observersMut.Lock()
	observers := make([]Observer, len(cv.observers))
	copy(observers, cv.observers)
	cv.observersMut.Unlock()

	for _, o := range observers {
		o.NotifyViewChanged(v)
	}
}
