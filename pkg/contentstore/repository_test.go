package contentstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupath/content-store/pkg/contentstore"
	"github.com/edupath/content-store/pkg/contentstore/storage/memory"
)

type testDoc struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	City        string `json:"city,omitempty"`
	Description string `json:"description,omitempty"`
}

func (d testDoc) DocSlug() string { return d.Slug }

func (d testDoc) Validate() error {
	if d.Slug == "" {
		return errors.New("slug is required")
	}
	if d.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

const testContainer = "test-data"

func TestRepositoryRoundTrip(t *testing.T) {
	store := memory.New()
	repo := contentstore.NewRepository[testDoc](store, testContainer)
	ctx := context.Background()

	doc := testDoc{Slug: "mit", Name: "MIT", City: "Cambridge"}

	key, err := repo.Upsert(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "mit.json", key)

	got, err := repo.Get(ctx, "mit")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, doc, *got)
}

func TestRepositoryUpsertOverwrites(t *testing.T) {
	store := memory.New()
	repo := contentstore.NewRepository[testDoc](store, testContainer)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, testDoc{Slug: "mit", Name: "MIT"})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, testDoc{Slug: "mit", Name: "MIT", City: "Cambridge"})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "mit")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Cambridge", got.City)
}

func TestRepositoryGetMissingReturnsNil(t *testing.T) {
	repo := contentstore.NewRepository[testDoc](memory.New(), testContainer)

	got, err := repo.Get(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepositoryDelete(t *testing.T) {
	store := memory.New()
	repo := contentstore.NewRepository[testDoc](store, testContainer)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, testDoc{Slug: "mit", Name: "MIT"})
	require.NoError(t, err)

	t.Run("deletes existing document", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, "mit")
		require.NoError(t, err)
		assert.True(t, deleted)

		got, err := repo.Get(ctx, "mit")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("deleting a missing slug is not an error", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, "mit")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestRepositoryValidatesOnWrite(t *testing.T) {
	repo := contentstore.NewRepository[testDoc](memory.New(), testContainer)

	_, err := repo.Upsert(context.Background(), testDoc{Slug: "mit"})
	assert.ErrorIs(t, err, contentstore.ErrInvalidDocument)
}

func TestRepositoryListAll(t *testing.T) {
	store := memory.New()
	repo := contentstore.NewRepository[testDoc](store, testContainer)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := repo.Upsert(ctx, testDoc{Slug: fmt.Sprintf("college-%02d", i), Name: fmt.Sprintf("College %d", i)})
		require.NoError(t, err)
	}

	// The index blob must not leak into the listing.
	err := store.Put(ctx, testContainer, contentstore.IndexKey, []byte("[]"), contentstore.PutOptions{})
	require.NoError(t, err)

	docs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 25)
	assert.Equal(t, "college-00", docs[0].Slug)
	assert.Equal(t, "college-24", docs[24].Slug)
}

func TestRepositoryWriteAttributes(t *testing.T) {
	store := memory.New()
	repo := contentstore.NewRepository[testDoc](store, testContainer)

	_, err := repo.Upsert(context.Background(), testDoc{Slug: "mit", Name: "MIT"})
	require.NoError(t, err)

	opts, ok := store.Options(testContainer, "mit.json")
	require.True(t, ok)
	assert.Equal(t, "application/json", opts.ContentType)
	assert.Equal(t, contentstore.DocumentCacheControl, opts.CacheControl)
	assert.Equal(t, contentstore.SchemaVersion, opts.Metadata[contentstore.MetaSchemaVersion])
	assert.NotEmpty(t, opts.Metadata[contentstore.MetaLastUpdated])
}

func TestRepositoryPropagatesStoreErrors(t *testing.T) {
	store := memory.New()
	store.FailPut = func(container, key string) error {
		return errors.New("connection reset")
	}
	repo := contentstore.NewRepository[testDoc](store, testContainer)

	_, err := repo.Upsert(context.Background(), testDoc{Slug: "mit", Name: "MIT"})
	var storeErr *contentstore.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "put", storeErr.Op)
	assert.Equal(t, testContainer, storeErr.Container)
}
