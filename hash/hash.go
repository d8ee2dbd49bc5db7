// Package hash provides the hash function abstraction used to place
// keys into a bucket's slot array. A HAT-trie never reaches inside a
// key's bytes for any purpose other than calling a HashFunc and
// comparing raw bytes; the function itself is an external
// collaborator (see spec.md §1) supplied by the caller or picked from
// the defaults below.
package hash

import (
	"hash/fnv"

	"github.com/zeebo/xxh3"
)

// HashFunc maps a byte string to a 32-bit integer used to select a
// bucket slot. Implementations must be deterministic and pure for the
// lifetime of a trie; they are never required to be cryptographically
// strong.
type HashFunc func(key []byte) uint32

// XXH3 is the default HashFunc, backed by github.com/zeebo/xxh3.
// It is the fastest option in the pack and is what this module uses
// when a caller does not supply its own hash function, mirroring the
// teacher's bits.Uint64ArrayBitString.HashWithSeed, which reaches for
// the same library.
func XXH3(key []byte) uint32 {
	return uint32(xxh3.Hash(key))
}

// FNV1a is a zero-dependency alternative, kept for callers that would
// rather not pull in xxh3. It uses hash/fnv's 32-bit FNV-1a directly
// (fnv.New32a), not a truncated 64-bit FNV-1a.
func FNV1a(key []byte) uint32 {
	h := fnv.New32a()
	_, _ = h.Write(key)
	return h.Sum32()
}
