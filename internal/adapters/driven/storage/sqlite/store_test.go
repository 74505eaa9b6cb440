package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

// setupTestStore creates a store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFileName), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_RecordsMigrationVersion(t *testing.T) {
	store := setupTestStore(t)

	v, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "blob/1", "aGVsbG8="))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "blob/1")
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", got)

	v, err := reopened.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Put(ctx, "blob/1", "first"))
	require.NoError(t, store.Put(ctx, "blob/1", "second!"))

	got, err := store.Get(ctx, "blob/1")
	require.NoError(t, err)
	assert.Equal(t, "second!", got)

	entries, size, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, entries)
	assert.Equal(t, int64(7), size)
}

func TestStore_PutEmptyURL(t *testing.T) {
	store := setupTestStore(t)

	err := store.Put(context.Background(), "", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_EmptyPayload(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Put(ctx, "blob/empty", ""))
	got, err := store.Get(ctx, "blob/empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.Put(ctx, "blob/1", "a"))
	require.NoError(t, store.Delete(ctx, "blob/1"))
	require.NoError(t, store.Delete(ctx, "blob/1"))

	_, err := store.Get(ctx, "blob/1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_StatsAndClear(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	entries, size, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, entries)
	assert.Zero(t, size)

	require.NoError(t, store.Put(ctx, "a", "12345"))
	require.NoError(t, store.Put(ctx, "b", "123"))

	entries, size, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, entries)
	assert.Equal(t, int64(8), size)

	require.NoError(t, store.Clear(ctx))
	entries, _, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, entries)
}

func TestStore_ConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Put(ctx, fmt.Sprintf("blob/%d", i), "payload"))
		}(i)
	}
	wg.Wait()

	entries, _, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, entries)
}

func TestStore_CancelledContext(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "blob/1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
