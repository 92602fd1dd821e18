package lsm

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemTable_PutGet(t *testing.T) {
	mt := NewMemTable(1)

	mt.Put([]byte("key1"), []byte("value1"))
	v, ok := mt.Get([]byte("key1"))
	require.True(t, ok)
	require.True(t, bytes.Equal(v, []byte("value1")))

	_, ok = mt.Get([]byte("missing"))
	require.False(t, ok)
}

func TestMemTable_OverwriteIsLastWriterWins(t *testing.T) {
	mt := NewMemTable(1)

	mt.Put([]byte("k"), []byte("a"))
	mt.Put([]byte("k"), []byte("b"))

	v, ok := mt.Get([]byte("k"))
	require.True(t, ok)
	require.Equal(t, "b", string(v))
	require.Equal(t, 1, mt.Size())
}

func TestMemTable_GetReturnsIndependentCopy(t *testing.T) {
	mt := NewMemTable(1)
	mt.Put([]byte("k"), []byte("original"))

	v, _ := mt.Get([]byte("k"))
	v[0] = 'X'

	v2, _ := mt.Get([]byte("k"))
	require.Equal(t, "original", string(v2))
}

func TestMemTable_OrderedEnumerateIsAscending(t *testing.T) {
	mt := NewMemTable(1)
	keys := []string{"banana", "apple", "cherry", "date", "apricot"}
	for _, k := range keys {
		mt.Put([]byte(k), []byte("v-"+k))
	}

	entries := mt.OrderedEnumerate(42)
	require.Len(t, entries, len(keys))
	for i := 1; i < len(entries); i++ {
		require.True(t, bytes.Compare(entries[i-1].Key, entries[i].Key) < 0,
			"entries out of order: %s then %s", entries[i-1].Key, entries[i].Key)
	}
	for _, e := range entries {
		require.Equal(t, int64(42), e.Timestamp)
	}
}

func TestMemTable_ManyKeysShapesTallerNodes(t *testing.T) {
	mt := NewMemTable(7)
	const n = 5000
	for i := 0; i < n; i++ {
		k := []byte(fmt.Sprintf("key_%05d", i))
		mt.Put(k, []byte(fmt.Sprintf("value_%05d", i)))
	}
	require.Equal(t, n, mt.Size())
	require.GreaterOrEqual(t, mt.currentLevel, 1, "expected at least one node promoted above level 0 over %d inserts", n)

	for i := 0; i < n; i++ {
		k := []byte(fmt.Sprintf("key_%05d", i))
		v, ok := mt.Get(k)
		require.True(t, ok)
		require.Equal(t, fmt.Sprintf("value_%05d", i), string(v))
	}
}
