// Package bucket implements the "cache-conscious" array hash table
// that sits at the leaves of a HAT-trie: a fixed array of slots, each
// slot a single variable-sized byte arena packed end to end with
// (keylen, key, value) records (spec.md §4.1). It is grounded on
// _examples/original_source/src/hat-trie/table.c, the Askitis & Zobel
// cache-conscious collision resolution table that the HAT-trie paper
// builds on.
package bucket

import (
	"hattrie/hash"
)

// DefaultInitialSlotCount is the slot count a new Bucket starts with
// absent an explicit Config, matching htr_table_initial_size.
const DefaultInitialSlotCount = 4096

// DefaultMaxLoadFactor is deliberately huge: in HAT-trie use the trie
// bursts a bucket at the hattrie package's maxBucketSize (16384 pairs) long before a slot
// array sized DefaultInitialSlotCount would ever approach this load
// factor, so Expand is realistically dead code for a bucket embedded
// in a trie (spec.md §4.1). Kept real so a standalone Bucket still
// resizes correctly.
const DefaultMaxLoadFactor = 1e9

// Config holds the tunables recognised by New.
type Config struct {
	InitialSlotCount int
	MaxLoadFactor    float64
}

// DefaultConfig returns the recognised defaults.
func DefaultConfig() Config {
	return Config{
		InitialSlotCount: DefaultInitialSlotCount,
		MaxLoadFactor:    DefaultMaxLoadFactor,
	}
}

// Bucket is the packed array hash table described in spec.md §3/§4.1.
// Flag/C0/C1 are metadata the trie layer uses to classify this bucket
// as pure or hybrid and to know its edge range; Bucket itself never
// reads them.
type Bucket struct {
	Flag uint8
	C0   byte
	C1   byte

	slots      [][]byte
	slotSizes  []int
	pairsCount int
	maxPairs   int
	loadFactor float64
}

// New creates a bucket with the default configuration.
func New() *Bucket {
	return NewWithConfig(DefaultConfig())
}

// NewN creates a bucket with n slots and the default load factor,
// mirroring htr_table_new_n.
func NewN(n int) *Bucket {
	cfg := DefaultConfig()
	cfg.InitialSlotCount = n
	return NewWithConfig(cfg)
}

// NewWithConfig creates a bucket honouring every field of cfg.
func NewWithConfig(cfg Config) *Bucket {
	if cfg.InitialSlotCount <= 0 {
		cfg.InitialSlotCount = DefaultInitialSlotCount
	}
	if cfg.MaxLoadFactor <= 0 {
		cfg.MaxLoadFactor = DefaultMaxLoadFactor
	}
	b := &Bucket{
		slots:      make([][]byte, cfg.InitialSlotCount),
		slotSizes:  make([]int, cfg.InitialSlotCount),
		loadFactor: cfg.MaxLoadFactor,
	}
	b.maxPairs = int(cfg.MaxLoadFactor * float64(cfg.InitialSlotCount))
	return b
}

// Size returns the number of (key, value) pairs currently stored.
func (b *Bucket) Size() int { return b.pairsCount }

// SlotCount returns the current number of slots (N in spec.md §4.1).
func (b *Bucket) SlotCount() int { return len(b.slots) }

// Iterator begins a forward iteration pass over b, sorted or not.
func (b *Bucket) Iterator(sorted bool) *Iterator {
	return Iter(b, sorted)
}

// ByteSize returns the total bytes currently held across all slot
// arenas, used by Trie.MemReport.
func (b *Bucket) ByteSize() int {
	total := 0
	for _, s := range b.slotSizes {
		total += s
	}
	return total
}

// Clear resets the bucket to a freshly constructed state at the
// default initial slot count, per table.c's htr_table_clear.
func (b *Bucket) Clear() {
	n := DefaultInitialSlotCount
	b.slots = make([][]byte, n)
	b.slotSizes = make([]int, n)
	b.pairsCount = 0
	b.maxPairs = int(b.loadFactor * float64(n))
}

func slotIndex(h hash.HashFunc, key []byte, n int) int {
	return int(h(key) % uint32(n))
}

// locate performs the linear scan of slot i described in spec.md
// §4.1, returning the byte offset of the record's value field and
// true on a hit.
func locate(slot []byte, size int, key []byte) (valueOffset int, ok bool) {
	off := 0
	for off < size {
		klen, width := decodeKeyLen(slot[off:])
		recStart := off + width
		if klen != len(key) {
			off = recStart + klen + valueSize
			continue
		}
		if string(slot[recStart:recStart+klen]) == string(key) {
			return recStart + klen, true
		}
		off = recStart + klen + valueSize
	}
	return 0, false
}

// Get returns a handle to key's value, inserting a zero-valued record
// if key is absent. It may trigger Expand first if the bucket is at
// capacity (spec.md §4.1).
func (b *Bucket) Get(h hash.HashFunc, key []byte) (*Value, error) {
	return b.get(h, key, true)
}

// TryGet returns a handle to key's value, or ok=false if key is
// absent, without mutating the bucket.
func (b *Bucket) TryGet(h hash.HashFunc, key []byte) (v *Value, ok bool) {
	val, err := b.get(h, key, false)
	if err != nil || val == nil {
		return nil, false
	}
	return val, true
}

func (b *Bucket) get(h hash.HashFunc, key []byte, insertMissing bool) (*Value, error) {
	if err := checkKeyLen(len(key)); err != nil {
		return nil, err
	}

	if insertMissing && b.pairsCount >= b.maxPairs {
		if err := b.Expand(h); err != nil {
			return nil, err
		}
	}

	i := slotIndex(h, key, len(b.slots))
	if off, ok := locate(b.slots[i], b.slotSizes[i], key); ok {
		return &Value{slot: &b.slots[i], offset: off}, nil
	}

	if !insertMissing {
		return nil, nil
	}

	grown, valOff := appendRecord(b.slots[i][:b.slotSizes[i]], key)
	b.slots[i] = grown
	b.slotSizes[i] = len(grown)
	b.pairsCount++

	return &Value{slot: &b.slots[i], offset: valOff}, nil
}

// Del removes key's record if present, returning whether it was
// found. The record is excised by shifting trailing bytes down within
// its slot (spec.md §4.1).
func (b *Bucket) Del(h hash.HashFunc, key []byte) bool {
	if checkKeyLen(len(key)) != nil {
		return false
	}

	i := slotIndex(h, key, len(b.slots))
	slot := b.slots[i]
	size := b.slotSizes[i]

	off := 0
	for off < size {
		klen, width := decodeKeyLen(slot[off:])
		recStart := off + width
		recEnd := recStart + klen + valueSize
		if klen != len(key) || string(slot[recStart:recStart+klen]) != string(key) {
			off = recEnd
			continue
		}

		copy(slot[off:], slot[recEnd:size])
		b.slotSizes[i] = size - (recEnd - off)
		b.slots[i] = slot[:b.slotSizes[i]]
		b.pairsCount--
		return true
	}
	return false
}

// walkRecords visits every stored record in slot-then-layout order,
// giving fn the record's key and its current value.
func (b *Bucket) walkRecords(fn func(key []byte, val uint64)) {
	for i, size := range b.slotSizes {
		slot := b.slots[i]
		off := 0
		for off < size {
			klen, width := decodeKeyLen(slot[off:])
			recStart := off + width
			key := slot[recStart : recStart+klen]
			val := readValue(slot, recStart+klen)
			fn(key, val)
			off = recStart + klen + valueSize
		}
	}
}

// Expand doubles the slot count, rehashing every record into its new
// slot. It mirrors table.c's htr_table_expand: a first pass sizes
// every new slot's arena exactly, a second pass appends records into
// those pre-sized arenas so no slot is ever reallocated mid-rehash.
func (b *Bucket) Expand(h hash.HashFunc) error {
	oldN := len(b.slots)
	newN := oldN * 2
	if newN == 0 {
		newN = DefaultInitialSlotCount
	}

	newSizes := make([]int, newN)
	b.walkRecords(func(key []byte, val uint64) {
		i := int(h(key) % uint32(newN))
		newSizes[i] += recordSize(len(key))
	})

	newSlots := make([][]byte, newN)
	for i, sz := range newSizes {
		if sz > 0 {
			newSlots[i] = make([]byte, 0, sz)
		}
	}

	b.walkRecords(func(key []byte, val uint64) {
		i := int(h(key) % uint32(newN))
		grown, valOff := appendRecord(newSlots[i], key)
		writeValue(grown, valOff, val)
		newSlots[i] = grown
	})

	b.slots = newSlots
	b.slotSizes = make([]int, newN)
	for i := range newSlots {
		b.slotSizes[i] = len(newSlots[i])
	}
	b.maxPairs = int(b.loadFactor * float64(newN))
	return nil
}
