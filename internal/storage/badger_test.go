package storage

import (
	"testing"

	"github.com/aleksaelezovic/ligature/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStorage(t *testing.T) *BadgerStorage {
	t.Helper()
	s, err := NewBadgerStorage(t.TempDir(), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func collectKeys(t *testing.T, it store.Iterator) []string {
	t.Helper()
	defer it.Close()
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	return keys
}

func TestSetGetDelete(t *testing.T) {
	s := newTestStorage(t)

	txn, err := s.Begin(true)
	require.NoError(t, err)
	require.NoError(t, txn.Set(store.TableCollections, []byte("people"), []byte("v")))
	require.NoError(t, txn.Commit())
	require.NoError(t, s.Sync())

	txn, err = s.Begin(false)
	require.NoError(t, err)
	value, err := txn.Get(store.TableCollections, []byte("people"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)

	// Tables are namespaced
	_, err = txn.Get(store.TableEntities, []byte("people"))
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, txn.Rollback())

	txn, err = s.Begin(true)
	require.NoError(t, err)
	require.NoError(t, txn.Delete(store.TableCollections, []byte("people")))
	require.NoError(t, txn.Commit())

	txn, err = s.Begin(false)
	require.NoError(t, err)
	defer txn.Rollback()
	_, err = txn.Get(store.TableCollections, []byte("people"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReadOnlyTransaction(t *testing.T) {
	s := newTestStorage(t)

	txn, err := s.Begin(false)
	require.NoError(t, err)
	defer txn.Rollback()

	assert.ErrorIs(t, txn.Set(store.TableCollections, []byte("a"), nil), store.ErrTransactionRO)
	assert.ErrorIs(t, txn.Delete(store.TableCollections, []byte("a")), store.ErrTransactionRO)
}

func TestScanPrefixAndRange(t *testing.T) {
	s := newTestStorage(t)

	txn, err := s.Begin(true)
	require.NoError(t, err)
	for _, k := range []string{"a", "ab", "abc", "b", "ba", "c"} {
		require.NoError(t, txn.Set(store.TableCollections, []byte(k), nil))
	}
	// A neighbouring table must not leak into scans
	require.NoError(t, txn.Set(store.TableEntities, []byte("ab"), nil))
	require.NoError(t, txn.Commit())

	txn, err = s.Begin(false)
	require.NoError(t, err)
	defer txn.Rollback()

	it, err := txn.Scan(store.TableCollections, []byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "abc"}, collectKeys(t, it))

	it, err = txn.Scan(store.TableCollections, nil)
	require.NoError(t, err)
	assert.Len(t, collectKeys(t, it), 6)

	it, err = txn.ScanRange(store.TableCollections, []byte("ab"), []byte("ba"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "abc", "b"}, collectKeys(t, it))

	it, err = txn.ScanRange(store.TableCollections, []byte("b"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "ba", "c"}, collectKeys(t, it))
}

func TestSnapshotIsolation(t *testing.T) {
	s, err := NewInMemoryStorage()
	require.NoError(t, err)
	defer s.Close()

	reader, err := s.Begin(false)
	require.NoError(t, err)
	defer reader.Rollback()

	writer, err := s.Begin(true)
	require.NoError(t, err)
	require.NoError(t, writer.Set(store.TableCollections, []byte("late"), nil))
	require.NoError(t, writer.Commit())

	_, err = reader.Get(store.TableCollections, []byte("late"))
	assert.ErrorIs(t, err, store.ErrNotFound)

	fresh, err := s.Begin(false)
	require.NoError(t, err)
	defer fresh.Rollback()
	_, err = fresh.Get(store.TableCollections, []byte("late"))
	assert.NoError(t, err)
}

func TestBeginAfterClose(t *testing.T) {
	s, err := NewInMemoryStorage()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Begin(false)
	assert.ErrorIs(t, err, store.ErrStoreClosed)
}

func TestIteratorValue(t *testing.T) {
	s, err := NewInMemoryStorage()
	require.NoError(t, err)
	defer s.Close()

	txn, err := s.Begin(true)
	require.NoError(t, err)
	require.NoError(t, txn.Set(store.TableEntities, []byte("people"), []byte{0, 0, 0, 0, 0, 0, 0, 7}))

	// Pending writes are visible to the transaction's own iterators
	it, err := txn.Scan(store.TableEntities, nil)
	require.NoError(t, err)
	require.True(t, it.Next())
	value, err := it.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 7}, value)
	assert.False(t, it.Next())
	_, err = it.Value()
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, it.Close())
	require.NoError(t, it.Close())

	require.NoError(t, txn.Rollback())
}

func TestScanReadsValuesLazily(t *testing.T) {
	s, err := NewInMemoryStorage()
	require.NoError(t, err)
	defer s.Close()

	txn, err := s.Begin(true)
	require.NoError(t, err)
	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, txn.Set(store.TableEntities, []byte(name), []byte{byte(i + 1)}))
	}
	require.NoError(t, txn.Commit())

	reader, err := s.Begin(false)
	require.NoError(t, err)
	defer reader.Rollback()

	it, err := reader.Scan(store.TableEntities, nil)
	require.NoError(t, err)
	count := 0
	for it.Next() {
		count++
	}
	require.NoError(t, it.Close())
	assert.Equal(t, 3, count)

	it, err = reader.ScanRange(store.TableEntities, []byte("b"), nil)
	require.NoError(t, err)
	defer it.Close()
	require.True(t, it.Next())
	assert.Equal(t, []byte("b"), it.Key())
	value, err := it.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, value)
}
