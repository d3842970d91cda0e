package jumpkit

import (
	"errors"
	"fmt"
)

// ErrOverflow is reported by Place when every probed server was at
// capacity. Use errors.Is to detect it and errors.As to recover the
// *OverflowError carrying the failed key and probe count.
var ErrOverflow = errors.New("placement overflow")

// An OverflowError is returned by Place when all probes within the
// configured attempt budget found saturated servers. The core takes no
// fallback action on overflow; the caller decides whether to force-place,
// queue, or reject the key.
type OverflowError struct {
	// Key that failed to place.
	Key Key
	// Attempts is the number of servers probed, all of which were at
	// capacity.
	Attempts int
}

// Error implements error.
func (e *OverflowError) Error() string {
	return fmt.Sprintf("placement overflow: key %#x found no server under capacity after %d probes", uint64(e.Key), e.Attempts)
}

// Unwrap makes errors.Is(err, ErrOverflow) work for OverflowErrors.
func (e *OverflowError) Unwrap() error { return ErrOverflow }
