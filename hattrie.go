package hattrie

import (
	"hattrie/bucket"
	"hattrie/hash"
)

// maxBucketSize is the burst threshold: a bucket holding this many
// pairs is split on the next insert that reaches it (spec.md §4.2,
// MAX_BUCKET_SIZE in trie.c).
const maxBucketSize = 16384

// Trie is a HAT-trie mapping byte-string keys to uint64 values.
type Trie struct {
	root        *trieNode
	pairsCount  int
	hash        hash.HashFunc
}

// New creates an empty Trie using the supplied hash function. The
// hash function is an external collaborator (spec.md §1): it must be
// deterministic and pure for the trie's lifetime.
func New(h hash.HashFunc) *Trie {
	root := &trieNode{}
	rootBucket := bucket.New()
	rootBucket.Flag = flagHybridBucket
	rootBucket.C0 = 0x00
	rootBucket.C1 = 0xFF
	leaf := nodeFromBucket(rootBucket)
	for i := range root.xs {
		root.xs[i] = leaf
	}
	return &Trie{root: root, hash: h}
}

// NewDefault creates an empty Trie using hash.XXH3.
func NewDefault() *Trie {
	return New(hash.XXH3)
}

// Size returns the number of distinct live keys stored.
func (t *Trie) Size() int { return t.pairsCount }

// Clear resets the trie to a newly constructed, empty state.
func (t *Trie) Clear() {
	*t = *New(t.hash)
}

// Value is a mutable handle to one stored key's value. A key's value
// lives either directly on a trie node (when the key terminates
// exactly at a trie edge with NODE_HAS_VAL set) or inside a bucket
// record; Value hides which case applies, mirroring spec.md §3's
// "values are addressable... callers obtain a mutable handle".
//
// Per spec.md §5, a Value is only valid until the next mutating call
// (Get/Del/a burst) on the owning Trie.
type Value struct {
	trieVal   *uint64
	bucketVal *bucket.Value
}

func valueFromTrieNode(v *uint64) *Value   { return &Value{trieVal: v} }
func valueFromBucket(v *bucket.Value) *Value { return &Value{bucketVal: v} }

// Load reads the current value.
func (v *Value) Load() uint64 {
	if v.trieVal != nil {
		return *v.trieVal
	}
	return v.bucketVal.Load()
}

// Store writes a new value, observed by subsequent Load calls and by
// TryGet/iteration.
func (v *Value) Store(x uint64) {
	if v.trieVal != nil {
		*v.trieVal = x
		return
	}
	v.bucketVal.Store(x)
}

// consume descends the trie following TRIE-kind edges one byte at a
// time (spec.md §4.2's descend protocol). key must be non-empty; the
// caller handles the zero-length key itself. parent is updated in
// place to the last TRIE node visited.
//
// It returns as soon as the node selected by the next byte is not
// itself a TRIE node, leaving that byte still present in remaining
// (the caller decides whether to strip it: a pure bucket's single
// edge byte is redundant and gets stripped by the caller, a hybrid
// bucket's is not, spec.md §3). If the key is exhausted exactly when
// landing on a deeper TRIE node, that is an exact match terminating
// at the node itself, reported back as a TRIE child with an empty
// remaining key.
func consume(parent **trieNode, key []byte) (child node, remaining []byte) {
	p := *parent
	checkIsTrieNode(nodeFromTrie(p))

	n := p.xs[key[0]]
	for n.isTrie() {
		key = key[1:]
		p = n.trieChild
		if len(key) == 0 {
			*parent = p
			return nodeFromTrie(p), key
		}
		n = p.xs[key[0]]
	}

	*parent = p
	return n, key
}

// Get returns a handle to key's value, creating it (with value 0) if
// absent, bursting any bucket that is at or over maxBucketSize along
// the way (spec.md §4.2).
func (t *Trie) Get(key []byte) (*Value, error) {
	if len(key) == 0 {
		return valueFromTrieNode(t.root.useVal(&t.pairsCount)), nil
	}

	parent := t.root
	child, rest := consume(&parent, key)

	for child.isBucket() && child.bucketChild.Size() >= maxBucketSize {
		t.burst(parent, child)
		parent = t.root
		child, rest = consume(&parent, key)
	}

	if child.isTrie() {
		// consume only returns a TRIE child once key is exhausted:
		// this key terminates exactly at this trie node.
		return valueFromTrieNode(child.trieChild.useVal(&t.pairsCount)), nil
	}

	checkIsLeafBucket(child)

	lookupKey := rest
	if child.isPureBucket() {
		lookupKey = rest[1:]
	}

	before := child.bucketChild.Size()
	v, err := child.bucketChild.Get(t.hash, lookupKey)
	if err != nil {
		return nil, err
	}
	t.pairsCount += child.bucketChild.Size() - before

	return valueFromBucket(v), nil
}

// find is the read-only counterpart of Get's descent: it never
// inserts and never bursts, used by TryGet and Del.
func (t *Trie) find(key []byte) (n node, rest []byte, ok bool) {
	if len(key) == 0 {
		if !t.root.hasVal {
			return node{}, nil, false
		}
		return nodeFromTrie(t.root), key, true
	}

	parent := t.root
	child, rest := consume(&parent, key)

	if child.isTrie() {
		if !child.trieChild.hasVal {
			return node{}, nil, false
		}
		return child, rest, true
	}

	checkIsLeafBucket(child)
	if child.isPureBucket() {
		rest = rest[1:]
	}
	return child, rest, true
}

// TryGet returns a handle to key's value, or ok=false if key is
// absent. It never mutates the trie.
func (t *Trie) TryGet(key []byte) (*Value, bool) {
	n, rest, ok := t.find(key)
	if !ok {
		return nil, false
	}

	if n.isTrie() {
		return valueFromTrieNode(&n.trieChild.value), true
	}

	v, found := n.bucketChild.TryGet(t.hash, rest)
	if !found {
		return nil, false
	}
	return valueFromBucket(v), true
}

// Del removes key if present, returning whether it was found.
func (t *Trie) Del(key []byte) bool {
	n, rest, ok := t.find(key)
	if !ok {
		return false
	}

	if n.isTrie() {
		return n.trieChild.clearVal(&t.pairsCount)
	}

	before := n.bucketChild.Size()
	removed := n.bucketChild.Del(t.hash, rest)
	t.pairsCount -= before - n.bucketChild.Size()
	return removed
}
