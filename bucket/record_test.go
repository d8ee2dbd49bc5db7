package bucket

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordSizeMatchesPrefixWidth(t *testing.T) {
	t.Parallel()
	require.Equal(t, 1+0+valueSize, recordSize(0))
	require.Equal(t, 1+127+valueSize, recordSize(127))
	require.Equal(t, 2+128+valueSize, recordSize(128))
	require.Equal(t, 2+maxKeyLen+valueSize, recordSize(maxKeyLen))
}

func TestAppendAndDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 1, 127, 128, 200, maxKeyLen} {
		key := make([]byte, n)
		for i := range key {
			key[i] = byte(i)
		}

		arena, valOff := appendRecord(nil, key)
		klen, width := decodeKeyLen(arena)
		require.Equal(t, n, klen)
		require.Equal(t, key, arena[width:width+klen])
		require.Equal(t, width+klen, valOff)
		require.Equal(t, uint64(0), readValue(arena, valOff))

		writeValue(arena, valOff, 0xDEADBEEF)
		require.Equal(t, uint64(0xDEADBEEF), readValue(arena, valOff))
		require.Len(t, arena, recordSize(n))
	}
}

func TestCheckKeyLenRejectsOverflow(t *testing.T) {
	t.Parallel()
	require.NoError(t, checkKeyLen(maxKeyLen))
	require.ErrorIs(t, checkKeyLen(maxKeyLen+1), ErrKeyTooLong)
}
