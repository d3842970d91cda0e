package jumpkit

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSelector_Invalid(t *testing.T) {
	for _, n := range []int{0, -1} {
		t.Run(fmt.Sprintf("%d servers", n), func(t *testing.T) {
			_, err := NewSelector(n)
			require.EqualError(t, err, fmt.Sprintf("selector needs at least 1 server, got %d", n))
		})
	}
}

// TestSelector_Consistent enforces that growing the fleet by one server
// only moves keys onto the new server.
func TestSelector_Consistent(t *testing.T) {
	var (
		numKeys = 10_000
		n       = 9
	)

	small, err := NewSelector(n)
	require.NoError(t, err)
	big, err := NewSelector(n + 1)
	require.NoError(t, err)

	var moved int
	for i := 0; i < numKeys; i++ {
		key := StringKey(fmt.Sprintf("key-%d", i))

		before := small.Select(key)
		after := big.Select(key)
		if before != after {
			moved++
			require.Equal(t, n, after, "moved key must land on the new server")
		}
	}

	// Roughly 1/(n+1) of keys should move.
	expect := numKeys / (n + 1)
	require.InDelta(t, expect, moved, 0.25*float64(expect))
}

// TestSelector_AttemptIndependent enforces that re-sampled candidates look
// like fresh uniform draws rather than ring successors of the primary.
func TestSelector_AttemptIndependent(t *testing.T) {
	var (
		numKeys = 20_000
		n       = 10
	)

	s, err := NewSelector(n)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(0))

	var primaryCollisions int
	for i := 0; i < numKeys; i++ {
		key := Key(r.Uint64())
		if s.Select(key) == s.SelectAttempt(key, 1) {
			primaryCollisions++
		}
	}

	// Independent uniform samples collide at rate 1/n.
	expect := float64(numKeys) / float64(n)
	require.InDelta(t, expect, float64(primaryCollisions), 0.20*expect)
}

func TestSelector_Range(t *testing.T) {
	s, err := NewSelector(5)
	require.NoError(t, err)
	require.Equal(t, 5, s.Servers())

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		key := Key(r.Uint64())

		got := s.Select(key)
		require.GreaterOrEqual(t, got, 0)
		require.Less(t, got, 5)

		for attempt := 0; attempt < 8; attempt++ {
			got = s.SelectAttempt(key, attempt)
			require.GreaterOrEqual(t, got, 0)
			require.Less(t, got, 5)
		}
	}
}
