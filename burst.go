package hattrie

import (
	"hattrie/bucket"
	"hattrie/utils"
)

// burst splits child (a leaf bucket attached under parent) once it
// has grown to maxBucketSize, replacing it in parent's edge array
// with either a freshly promoted trie node (Case A) or two smaller
// buckets (Case B). Grounded on
// _examples/original_source/src/hat-trie/trie.c's hattrie_split.
func (t *Trie) burst(parent *trieNode, child node) {
	checkIsLeafBucket(child)
	switch {
	case child.isPureBucket():
		t.burstPureBucket(parent, child.bucketChild)
	case child.isHybridBucket():
		t.burstHybridBucket(parent, child.bucketChild)
	default:
		bug("burst called on neither a pure nor hybrid bucket")
	}
}

// burstPureBucket implements Case A: a pure bucket only ever has one
// possible next byte (it IS the suffix store for that byte), so there
// is nothing to range-split. Instead it is promoted to a full trie
// node. Every stored suffix is reinserted into one new hybrid bucket
// shared by all 256 of the new node's edges; a suffix of length 0
// (the key that terminated exactly at the promoted byte) is lifted
// onto the new trie node's own value instead, per spec.md §4.2.
func (t *Trie) burstPureBucket(parent *trieNode, b *bucket.Bucket) {
	checkBucketRange(nodeFromBucket(b))
	c := b.C0
	if debug {
		utils.LogBurst(utils.BurstEvent{Kind: "pure", SizeAtSplit: b.Size(), C0: b.C0, C1: b.C1})
	}

	promoted := &trieNode{}
	shared := bucket.New()
	shared.Flag = flagHybridBucket
	shared.C0, shared.C1 = 0x00, 0xFF
	checkBucketRange(nodeFromBucket(shared))
	sharedNode := nodeFromBucket(shared)
	for i := range promoted.xs {
		promoted.xs[i] = sharedNode
	}

	it := b.Iterator(false)
	for !it.Finished() {
		key := it.Key()
		val := it.Val().Load()
		if len(key) == 0 {
			promoted.setValRaw(val)
		} else {
			v, err := shared.Get(t.hash, key)
			bugOn(err != nil, "re-inserting pure bucket suffix during burst: %v", err)
			v.Store(val)
		}
		it.Next()
	}

	parent.xs[c] = nodeFromTrie(promoted)
}

// burstHybridBucket implements Case B: the bucket's byte range
// [c0, c1] is split at the point where a running count of stored
// keys' leading bytes first reaches half the bucket's size (a greedy
// histogram split, spec.md §4.2), producing two new sub-buckets that
// replace the old one across parent's edges. A sub-range that
// collapses to a single byte is stored as a pure bucket (its now-
// redundant leading byte is dropped) rather than a hybrid one.
func (t *Trie) burstHybridBucket(parent *trieNode, b *bucket.Bucket) {
	checkBucketRange(nodeFromBucket(b))
	c0, c1 := b.C0, b.C1
	if debug {
		utils.LogBurst(utils.BurstEvent{Kind: "hybrid", SizeAtSplit: b.Size(), C0: c0, C1: c1})
	}

	var counts [256]int
	total := 0
	it := b.Iterator(false)
	for !it.Finished() {
		counts[it.Key()[0]]++
		total++
		it.Next()
	}

	cm := c0
	if c0 < c1 {
		accum := 0
		target := (total + 1) / 2
		cm = c1 - 1
		for cbyte := int(c0); cbyte < int(c1); cbyte++ {
			accum += counts[cbyte]
			if accum >= target {
				cm = byte(cbyte)
				break
			}
		}
	}

	left := newSubBucket(c0, cm)
	right := newSubBucket(cm+1, c1)

	it = b.Iterator(false)
	for !it.Finished() {
		key := it.Key()
		val := it.Val().Load()

		dst := left
		if key[0] > cm {
			dst = right
		}
		lookupKey := key
		if dst.Flag == flagPureBucket {
			lookupKey = key[1:]
		}

		v, err := dst.Get(t.hash, lookupKey)
		bugOn(err != nil, "re-inserting hybrid bucket key during burst: %v", err)
		v.Store(val)

		it.Next()
	}

	leftNode := nodeFromBucket(left)
	for cbyte := int(c0); cbyte <= int(cm); cbyte++ {
		parent.xs[cbyte] = leftNode
	}
	rightNode := nodeFromBucket(right)
	for cbyte := int(cm) + 1; cbyte <= int(c1); cbyte++ {
		parent.xs[cbyte] = rightNode
	}
}

// newSubBucket allocates the bucket that will replace a [c0, c1]
// sub-range after a split, choosing pure vs hybrid per spec.md §3.
func newSubBucket(c0, c1 byte) *bucket.Bucket {
	b := bucket.New()
	b.C0, b.C1 = c0, c1
	if c0 == c1 {
		b.Flag = flagPureBucket
	} else {
		b.Flag = flagHybridBucket
	}
	checkBucketRange(nodeFromBucket(b))
	return b
}
