package hattrie

import (
	"testing"

	"github.com/stretchr/testify/require"

	"hattrie/bucket"
)

func TestBurstPromotesPureBucketCaseA(t *testing.T) {
	t.Parallel()
	tr := NewDefault()

	b := bucket.NewN(8)
	b.Flag = flagPureBucket
	b.C0, b.C1 = 'x', 'x'
	for _, suffix := range [][]byte{[]byte(""), []byte("a"), []byte("bb")} {
		v, err := b.Get(tr.hash, suffix)
		require.NoError(t, err)
		v.Store(uint64(len(suffix) + 1))
	}
	tr.root.xs['x'] = nodeFromBucket(b)

	tr.burst(tr.root, tr.root.xs['x'])

	require.True(t, tr.root.xs['x'].isTrie())
	promoted := tr.root.xs['x'].trieChild

	require.True(t, promoted.hasVal)
	require.Equal(t, uint64(1), promoted.value, "empty suffix's value must be lifted onto the new trie node")

	v, ok := promoted.xs['a'].bucketChild.TryGet(tr.hash, []byte("a"))
	require.True(t, ok)
	require.Equal(t, uint64(2), v.Load())

	v2, ok := promoted.xs['b'].bucketChild.TryGet(tr.hash, []byte("bb"))
	require.True(t, ok)
	require.Equal(t, uint64(3), v2.Load())

	// every one of the 256 new edges shares the same fresh hybrid
	// bucket (promotion doesn't know how to subdivide yet).
	require.Same(t, promoted.xs[0].bucketChild, promoted.xs[255].bucketChild)
}

func TestBurstSplitsHybridBucketCaseB(t *testing.T) {
	t.Parallel()
	tr := NewDefault()

	b := bucket.NewN(64)
	b.Flag = flagHybridBucket
	b.C0, b.C1 = 0x00, 0xFF

	// heavily concentrated on 'a', so the greedy split should land the
	// boundary at or after 'a'.
	keys := map[string]uint64{
		"aaa": 1, "aab": 2, "aac": 3, "aad": 4,
		"zzz": 5,
	}
	for k, val := range keys {
		v, err := b.Get(tr.hash, []byte(k))
		require.NoError(t, err)
		v.Store(val)
	}

	parent := &trieNode{}
	leaf := nodeFromBucket(b)
	for i := range parent.xs {
		parent.xs[i] = leaf
	}

	tr.burstHybridBucket(parent, b)

	left := parent.xs['a'].bucketChild
	right := parent.xs['z'].bucketChild
	require.NotSame(t, left, right)

	// every slot within each new sub-range must point at the same
	// bucket object (invariant I-5).
	require.Same(t, left, parent.xs['a'].bucketChild)
	for c := int(left.C0); c <= int(left.C1); c++ {
		require.Same(t, left, parent.xs[c].bucketChild)
	}
	for c := int(right.C0); c <= int(right.C1); c++ {
		require.Same(t, right, parent.xs[c].bucketChild)
	}

	for k, val := range keys {
		lookupKey := []byte(k)
		dst := left
		if lookupKey[0] >= right.C0 {
			dst = right
		}
		if dst.Flag == flagPureBucket {
			lookupKey = lookupKey[1:]
		}
		v, ok := dst.TryGet(tr.hash, lookupKey)
		require.True(t, ok, "key %q", k)
		require.Equal(t, val, v.Load())
	}
}

func TestGetTriggersBurstAboveThreshold(t *testing.T) {
	t.Parallel()
	tr := NewDefault()

	n := maxBucketSize + 500
	for i := 0; i < n; i++ {
		k := []byte{byte(i), byte(i >> 8), byte(i >> 16)}
		v, err := tr.Get(k)
		require.NoError(t, err)
		v.Store(uint64(i))
	}
	require.Equal(t, n, tr.Size())

	for i := 0; i < n; i += 97 {
		k := []byte{byte(i), byte(i >> 8), byte(i >> 16)}
		v, ok := tr.TryGet(k)
		require.True(t, ok)
		require.Equal(t, uint64(i), v.Load())
	}

	// root can no longer be a single uniform bucket across all 256
	// edges once this many keys have been inserted.
	require.False(t, tr.root.xs[0].isBucket() && tr.root.xs[255].isBucket() &&
		tr.root.xs[0].bucketChild == tr.root.xs[255].bucketChild)
}
