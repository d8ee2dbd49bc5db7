package bucket

import (
	radixsort "github.com/dgryski/go-radixsort"
)

// record is one (key, value-offset) pair found while scanning a slot,
// used only to build the sorted iteration order.
type record struct {
	key    []byte
	valOff int
	slot   int
}

// Iterator walks every (key, value) pair stored in a Bucket, either in
// slot/layout order (unsorted) or in ascending lexicographic order
// (sorted), per spec.md §4.1.
type Iterator struct {
	b      *Bucket
	sorted bool

	// unsorted state
	slotIdx int
	off     int

	// sorted state
	recs []record
	pos  int
}

// Iter begins an iteration pass over b.
func Iter(b *Bucket, sorted bool) *Iterator {
	it := &Iterator{b: b, sorted: sorted}
	if sorted {
		it.beginSorted()
	} else {
		it.beginUnsorted()
	}
	return it
}

func (it *Iterator) beginUnsorted() {
	for it.slotIdx = 0; it.slotIdx < len(it.b.slots); it.slotIdx++ {
		if it.b.slotSizes[it.slotIdx] > 0 {
			return
		}
	}
}

func (it *Iterator) beginSorted() {
	b := it.b
	recs := make([]record, 0, b.pairsCount)
	keys := make([][]byte, 0, b.pairsCount)

	for i, size := range b.slotSizes {
		slot := b.slots[i]
		off := 0
		for off < size {
			klen, width := decodeKeyLen(slot[off:])
			recStart := off + width
			key := slot[recStart : recStart+klen]
			recs = append(recs, record{key: key, valOff: recStart + klen, slot: i})
			keys = append(keys, key)
			off = recStart + klen + valueSize
		}
	}

	// radixsort.Bytes sorts the key slice in place by ordinary
	// lexicographic byte order, which already implements spec.md's
	// memcmp-then-length comparator (a key that is a byte-for-byte
	// prefix of another sorts first). Apply the resulting permutation
	// to recs by looking each sorted key back up; keys are unique
	// within a bucket (invariant D-2) so the lookup is unambiguous.
	byKey := make(map[string]record, len(recs))
	for _, r := range recs {
		byKey[string(r.key)] = r
	}
	radixsort.Bytes(keys)

	sortedRecs := make([]record, len(keys))
	for i, k := range keys {
		sortedRecs[i] = byKey[string(k)]
	}
	it.recs = sortedRecs
}

// Finished reports whether the iterator has no more pairs to yield.
func (it *Iterator) Finished() bool {
	if it.sorted {
		return it.pos >= len(it.recs)
	}
	return it.slotIdx >= len(it.b.slots)
}

// Next advances to the next pair.
func (it *Iterator) Next() {
	if it.Finished() {
		return
	}
	if it.sorted {
		it.pos++
		return
	}

	slot := it.b.slots[it.slotIdx]
	klen, width := decodeKeyLen(slot[it.off:])
	it.off += width + klen + valueSize

	if it.off >= it.b.slotSizes[it.slotIdx] {
		it.slotIdx++
		for it.slotIdx < len(it.b.slots) && it.b.slotSizes[it.slotIdx] == 0 {
			it.slotIdx++
		}
		it.off = 0
	}
}

// Key returns the current record's key. The returned slice aliases
// the bucket's arena and is only valid until the next mutation of the
// bucket or advance of the iterator.
func (it *Iterator) Key() []byte {
	if it.Finished() {
		return nil
	}
	if it.sorted {
		return it.recs[it.pos].key
	}
	slot := it.b.slots[it.slotIdx]
	klen, width := decodeKeyLen(slot[it.off:])
	return slot[it.off+width : it.off+width+klen]
}

// Val returns a mutable handle to the current record's value.
func (it *Iterator) Val() *Value {
	if it.Finished() {
		return nil
	}
	if it.sorted {
		r := it.recs[it.pos]
		return &Value{slot: &it.b.slots[r.slot], offset: r.valOff}
	}
	slot := it.b.slots[it.slotIdx]
	klen, width := decodeKeyLen(slot[it.off:])
	return &Value{slot: &it.b.slots[it.slotIdx], offset: it.off + width + klen}
}
