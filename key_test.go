package jumpkit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyBuilder(t *testing.T) {
	t.Run("Generates the same key with no change", func(t *testing.T) {
		kb := NewKeyBuilder()
		_, _ = fmt.Fprint(kb, "Testing")

		key1 := kb.Key()
		key2 := kb.Key()
		require.Equal(t, key1, key2)
	})

	t.Run("Generates new key after write", func(t *testing.T) {
		kb := NewKeyBuilder()
		beforeWrite := kb.Key()

		_, _ = fmt.Fprint(kb, "Testing")

		afterWrite := kb.Key()

		require.NotEqual(t, beforeWrite, afterWrite)
	})

	t.Run("Resets to initial state", func(t *testing.T) {
		kb := NewKeyBuilder()
		initialState := kb.Key()

		_, _ = fmt.Fprint(kb, "Testing")
		kb.Reset()

		currentState := kb.Key()
		require.Equal(t, currentState, initialState)
	})
}

func TestKeyBuilder_Key_Equivalence(t *testing.T) {
	in := "Hello, world!"

	kb := NewKeyBuilder()
	_, _ = fmt.Fprint(kb, in)

	require.Equal(t, kb.Key(), StringKey(in))
	require.Equal(t, BytesKey([]byte(in)), StringKey(in))
}
