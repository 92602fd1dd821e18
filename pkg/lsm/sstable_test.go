package lsm

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSSTable_WriteAndPointRead(t *testing.T) {
	dir := t.TempDir()
	sst, err := NewSSTable(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer sst.Close()

	entries := []*Entry{
		{Key: []byte("key1"), Value: []byte("value1"), Timestamp: 1},
		{Key: []byte("key2"), Value: []byte("value2"), Timestamp: 2},
	}
	require.NoError(t, sst.Write(entries))

	v, ok, err := sst.Get([]byte("key1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value1", string(v))

	v, ok, err = sst.Get([]byte("key2"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value2", string(v))

	_, ok, err = sst.Get([]byte("key3"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSSTable_ReadAllEntriesPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	sst, err := NewSSTable(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer sst.Close()

	entries := []*Entry{
		{Key: []byte("key1"), Value: []byte("value1"), Timestamp: 1},
		{Key: []byte("key2"), Value: []byte("value2"), Timestamp: 2},
	}
	require.NoError(t, sst.Write(entries))

	got, err := sst.ReadAllEntries()
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "key1", string(got[0].Key))
	require.Equal(t, "value1", string(got[0].Value))
	require.Equal(t, int64(1), got[0].Timestamp)
	require.Equal(t, "key2", string(got[1].Key))
	require.Equal(t, "value2", string(got[1].Value))
}

func TestSSTable_EmptyValueIsPermitted(t *testing.T) {
	dir := t.TempDir()
	sst, err := NewSSTable(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer sst.Close()

	require.NoError(t, sst.Write([]*Entry{{Key: []byte("k"), Value: []byte{}, Timestamp: 1}}))

	v, ok, err := sst.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, v, 0)
}

func TestSSTable_ReadAllEntriesOnEmptyFile(t *testing.T) {
	dir := t.TempDir()
	sst, err := NewSSTable(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer sst.Close()

	got, err := sst.ReadAllEntries()
	require.NoError(t, err)
	require.Len(t, got, 0)
}

func TestSSTable_DuplicateKeyInWriteIsLastOffsetWins(t *testing.T) {
	dir := t.TempDir()
	sst, err := NewSSTable(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer sst.Close()

	entries := []*Entry{
		{Key: []byte("k"), Value: []byte("first"), Timestamp: 1},
		{Key: []byte("k"), Value: []byte("second"), Timestamp: 2},
	}
	require.NoError(t, sst.Write(entries))

	v, ok, err := sst.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", string(v))
}
