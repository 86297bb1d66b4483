package contentstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupath/content-store/pkg/contentstore"
	"github.com/edupath/content-store/pkg/contentstore/catalog"
	"github.com/edupath/content-store/pkg/contentstore/storage/memory"
)

func newCollegeService(store *memory.Store, opts ...contentstore.Option[catalog.College]) *contentstore.Service[catalog.College] {
	return contentstore.NewService(store, catalog.DefaultCollegeContainer, catalog.SummarizeCollege, opts...)
}

func TestServiceUpsertKeepsIndexConsistent(t *testing.T) {
	svc := newCollegeService(memory.New())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, catalog.College{Slug: "mit", Name: "MIT", City: "Cambridge", Country: "USA"})
	require.NoError(t, err)

	summaries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "mit", summaries[0].Slug)
	assert.Equal(t, "MIT", summaries[0].Name)
	assert.Equal(t, "Cambridge", summaries[0].City)
}

func TestServiceDeleteKeepsIndexConsistent(t *testing.T) {
	svc := newCollegeService(memory.New())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, catalog.College{Slug: "mit", Name: "MIT", Country: "USA"})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, catalog.College{Slug: "oxford", Name: "Oxford", Country: "UK"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, "mit")
	require.NoError(t, err)
	assert.True(t, deleted)

	summaries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "oxford", summaries[0].Slug)
}

func TestServiceDeferredIndexStaysStale(t *testing.T) {
	svc := newCollegeService(memory.New(), contentstore.WithDeferredIndex[catalog.College]())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, catalog.College{Slug: "mit", Name: "MIT", Country: "USA"})
	require.NoError(t, err)

	// Documented behavior in deferred mode: the listing lags the entity set
	// until an explicit reindex.
	summaries, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	require.NoError(t, svc.Reindex(ctx))

	summaries, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "mit", summaries[0].Slug)
}

func TestServiceUpsertAllReportsPerItemOutcomes(t *testing.T) {
	store := memory.New()
	store.FailPut = func(container, key string) error {
		if key == "broken.json" {
			return errors.New("connection reset")
		}
		return nil
	}
	svc := newCollegeService(store)
	ctx := context.Background()

	result, err := svc.UpsertAll(ctx, []catalog.College{
		{Slug: "mit", Name: "MIT", Country: "USA"},
		{Slug: "broken", Name: "Broken U", Country: "USA"},
		{Slug: "oxford", Name: "Oxford", Country: "UK"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded())
	assert.Equal(t, 1, result.Failed())

	byName := map[string]error{}
	for _, it := range result.Items {
		byName[it.Name] = it.Err
	}
	assert.NoError(t, byName["mit"])
	assert.NoError(t, byName["oxford"])
	assert.Error(t, byName["broken"])

	// Successful writes stay written; the index reflects what actually
	// landed.
	summaries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "mit", summaries[0].Slug)
	assert.Equal(t, "oxford", summaries[1].Slug)
}

func TestServiceCatalogScenario(t *testing.T) {
	svc := newCollegeService(memory.New(), contentstore.WithDeferredIndex[catalog.College]())
	ctx := context.Background()

	mit := catalog.College{Slug: "mit", Name: "MIT", City: "Cambridge", Country: "USA"}

	_, err := svc.Upsert(ctx, mit)
	require.NoError(t, err)

	got, err := svc.Get(ctx, "mit")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mit, *got)

	require.NoError(t, svc.Rebuild(ctx, []catalog.College{mit}))
	summaries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "mit", summaries[0].Slug)
	assert.Equal(t, "MIT", summaries[0].Name)
	assert.Equal(t, "Cambridge", summaries[0].City)

	deleted, err := svc.Delete(ctx, "mit")
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err = svc.Get(ctx, "mit")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, svc.Rebuild(ctx, nil))
	summaries, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
