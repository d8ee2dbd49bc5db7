package hattrie

import (
	"math/rand"
	"testing"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/schollz/progressbar/v3"
	"github.com/stretchr/testify/require"
)

// randomKey produces a byte string of length [1, maxLen], deliberately
// including the full byte range (not just printable ASCII) so that
// trie edges, pure buckets and hybrid buckets all see varied traffic.
func randomKey(r *rand.Rand, maxLen int) []byte {
	n := 1 + r.Intn(maxLen)
	k := make([]byte, n)
	for i := range k {
		k[i] = byte(r.Intn(256))
	}
	return k
}

func TestStressInsertAndLookupAgainstOracles(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test skipped in -short mode")
	}
	t.Parallel()

	const n = 200_000
	r := rand.New(rand.NewSource(20260729))

	tr := NewDefault()
	reference := make(map[string]uint64, n)
	oracle := iradix.New()

	bar := progressbar.Default(n)

	keys := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		k := randomKey(r, 40)
		ks := string(k)
		if _, exists := reference[ks]; exists {
			continue
		}
		reference[ks] = uint64(i)
		var ok bool
		oracle, _, ok = oracle.Insert(k, uint64(i))
		require.False(t, ok)

		v, err := tr.Get(k)
		require.NoError(t, err)
		v.Store(uint64(i))

		keys = append(keys, k)
		_ = bar.Add(1)
	}

	require.Equal(t, len(reference), tr.Size())

	for _, k := range keys {
		want := reference[string(k)]

		got, ok := tr.TryGet(k)
		require.True(t, ok)
		require.Equal(t, want, got.Load())

		oracleVal, ok := oracle.Get(k)
		require.True(t, ok)
		require.Equal(t, want, oracleVal)
	}
}

func TestStressDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test skipped in -short mode")
	}
	t.Parallel()

	const n = 50_000
	r := rand.New(rand.NewSource(7919))

	tr := NewDefault()
	reference := make(map[string]uint64, n)

	for i := 0; i < n; i++ {
		k := randomKey(r, 24)
		ks := string(k)
		if _, exists := reference[ks]; exists {
			continue
		}
		reference[ks] = uint64(i)
		v, err := tr.Get(k)
		require.NoError(t, err)
		v.Store(uint64(i))
	}

	i := 0
	for ks := range reference {
		if i%2 == 0 {
			require.True(t, tr.Del([]byte(ks)))
			delete(reference, ks)
		}
		i++
	}

	require.Equal(t, len(reference), tr.Size())
	for ks, want := range reference {
		got, ok := tr.TryGet([]byte(ks))
		require.True(t, ok)
		require.Equal(t, want, got.Load())
	}
}
