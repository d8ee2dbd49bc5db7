package bucket

import (
	"encoding/binary"
	"errors"
)

// ErrKeyTooLong is returned when a key's length cannot be represented
// by the 2-byte length-prefix encoding (spec.md §7, §9).
var ErrKeyTooLong = errors.New("bucket: key length exceeds 32767 bytes")

// maxShortKeyLen is the boundary below which a single byte is enough
// to hold len<<1 with its low bit clear.
const maxShortKeyLen = 128

// maxKeyLen is the largest key length representable in the 2-byte
// prefix: 15 bits of length, since the low bit is a format tag.
const maxKeyLen = (1 << 15) - 1

// valueSize is the width in bytes of a stored value.
const valueSize = 8

// recordSize returns the number of bytes a (key, value) record
// occupies in an arena: a 1-or-2-byte length prefix, len key bytes,
// and 8 bytes of value.
func recordSize(keyLen int) int {
	return prefixSize(keyLen) + keyLen + valueSize
}

func prefixSize(keyLen int) int {
	if keyLen < maxShortKeyLen {
		return 1
	}
	return 2
}

// checkKeyLen rejects keys that cannot be encoded at all.
func checkKeyLen(keyLen int) error {
	if keyLen > maxKeyLen {
		return ErrKeyTooLong
	}
	return nil
}

// appendRecord appends one (key, value=0) record to arena and returns
// the grown arena along with the byte offset of the 8-byte value field
// within it.
func appendRecord(arena []byte, key []byte) (out []byte, valueOffset int) {
	n := len(key)
	if n < maxShortKeyLen {
		arena = append(arena, byte(n<<1))
	} else {
		var prefix [2]byte
		binary.LittleEndian.PutUint16(prefix[:], uint16(n<<1)|0x1)
		arena = append(arena, prefix[:]...)
	}
	arena = append(arena, key...)
	valueOffset = len(arena)
	var zero [valueSize]byte
	arena = append(arena, zero[:]...)
	return arena, valueOffset
}

// decodeKeyLen reads the length prefix at the start of a record,
// returning the decoded length and the prefix width consumed.
func decodeKeyLen(s []byte) (keyLen int, width int) {
	if s[0]&0x1 != 0 {
		return int(binary.LittleEndian.Uint16(s) >> 1), 2
	}
	return int(s[0] >> 1), 1
}

// readValue reads the little-endian uint64 at off.
func readValue(arena []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(arena[off : off+valueSize])
}

// writeValue writes v as little-endian uint64 at off.
func writeValue(arena []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(arena[off:off+valueSize], v)
}

// Value is a mutable handle to one record's 8-byte value field,
// addressing it indirectly through the owning slot rather than via a
// raw pointer into the arena: a slot's backing array is replaced
// wholesale on every insert into that slot (realloc-by-append) and
// shifted in place on delete, so a handle must re-read the slot's
// current backing array on every access rather than cache a pointer
// into one snapshot of it. This is the mutable-handle contract of
// spec.md §3 ("callers obtain a mutable handle to a value slot, write
// to it, and the write is observed by subsequent reads") implemented
// without assuming the arena's backing array never moves.
type Value struct {
	slot   *[]byte
	offset int
}

// Load reads the current value.
func (v *Value) Load() uint64 {
	return readValue(*v.slot, v.offset)
}

// Store writes a new value.
func (v *Value) Store(x uint64) {
	writeValue(*v.slot, v.offset, x)
}
