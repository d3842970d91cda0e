package jumpkit

import (
	"github.com/cespare/xxhash/v2"
)

// A Key identifies something to place onto a server. Keys are opaque: only
// the hash of the original bytes matters, and two byte sequences map to the
// same Key exactly when their hashes collide.
type Key uint64

// BytesKey returns the Key for b.
func BytesKey(b []byte) Key { return Key(xxhash.Sum64(b)) }

// StringKey returns the Key for s.
func StringKey(s string) Key { return Key(xxhash.Sum64String(s)) }

// KeyBuilder generates a Key from a sequence of writes. To generate a Key,
// first write to the KeyBuilder, then call Key. The KeyBuilder can be
// re-used afterwards by calling Reset. KeyBuilder can not be used
// concurrently.
//
// KeyBuilder implements io.Writer.
type KeyBuilder struct {
	dig *xxhash.Digest
}

// NewKeyBuilder returns a new KeyBuilder that can generate Keys.
func NewKeyBuilder() *KeyBuilder { return &KeyBuilder{dig: xxhash.New()} }

// Write appends b to kb's state. Write always returns len(b), nil.
func (kb *KeyBuilder) Write(b []byte) (n int, err error) { return kb.dig.Write(b) }

// Reset resets kb's state.
func (kb *KeyBuilder) Reset() { kb.dig.Reset() }

// Key computes the Key from kb's current state.
func (kb *KeyBuilder) Key() Key { return Key(kb.dig.Sum64()) }
