package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupath/content-store/pkg/contentstore"
	"github.com/edupath/content-store/pkg/contentstore/storage/memory"
)

func TestPutGetDelete(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.EnsureContainer(ctx, "c"))
	require.NoError(t, store.Put(ctx, "c", "k", []byte("payload"), contentstore.PutOptions{ContentType: "text/plain"}))

	data, err := store.Get(ctx, "c", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	deleted, err := store.Delete(ctx, "c", "k")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.Get(ctx, "c", "k")
	assert.ErrorIs(t, err, contentstore.ErrNotFound)

	deleted, err = store.Delete(ctx, "c", "k")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGetMissingIsNotFound(t *testing.T) {
	store := memory.New()

	_, err := store.Get(context.Background(), "c", "missing")
	assert.ErrorIs(t, err, contentstore.ErrNotFound)

	var storeErr *contentstore.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "get", storeErr.Op)
}

func TestPutIsolatesCallerBuffer(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	payload := []byte("original")
	require.NoError(t, store.Put(ctx, "c", "k", payload, contentstore.PutOptions{}))
	payload[0] = 'X'

	data, err := store.Get(ctx, "c", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), data)
}

func TestListKeys(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	for _, key := range []string{"mit/a.png", "mit/b.png", "oxford/c.png", "index.json"} {
		require.NoError(t, store.Put(ctx, "c", key, []byte("x"), contentstore.PutOptions{}))
	}

	t.Run("prefix filter", func(t *testing.T) {
		keys, err := store.ListKeys(ctx, "c", "mit/")
		require.NoError(t, err)
		assert.Equal(t, []string{"mit/a.png", "mit/b.png"}, keys)
	})

	t.Run("empty prefix lists everything sorted", func(t *testing.T) {
		keys, err := store.ListKeys(ctx, "c", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"index.json", "mit/a.png", "mit/b.png", "oxford/c.png"}, keys)
	})

	t.Run("unknown container is empty", func(t *testing.T) {
		keys, err := store.ListKeys(ctx, "nope", "")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})
}
