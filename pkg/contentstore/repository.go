package contentstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// listFanout bounds the number of concurrent Get calls issued by ListAll.
const listFanout = 8

// Repository persists one entity family as JSON documents, one blob per
// entity at {slug}.json inside the family's container. The store sees the
// payload as opaque bytes; the repository owns (de)serialization and schema
// validation.
type Repository[T Document] struct {
	store     BlobStore
	container string
	now       func() time.Time
}

// NewRepository creates a repository for one entity family. The container is
// fixed per family (e.g. "college-data").
func NewRepository[T Document](store BlobStore, container string) *Repository[T] {
	return &Repository[T]{
		store:     store,
		container: container,
		now:       time.Now,
	}
}

// Container returns the container this family is stored in.
func (r *Repository[T]) Container() string {
	return r.container
}

// Key returns the storage key for a slug.
func (r *Repository[T]) Key(slug string) string {
	return slug + ".json"
}

// Upsert validates and writes a document, creating or overwriting it in a
// single put. It returns the storage key the document was written under.
func (r *Repository[T]) Upsert(ctx context.Context, doc T) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to serialize document %q: %w", doc.DocSlug(), err)
	}

	key := r.Key(doc.DocSlug())
	opts := PutOptions{
		ContentType:  "application/json",
		CacheControl: DocumentCacheControl,
		Metadata: map[string]string{
			MetaLastUpdated:   r.now().UTC().Format(time.RFC3339),
			MetaSchemaVersion: SchemaVersion,
		},
	}
	if err := r.store.Put(ctx, r.container, key, data, opts); err != nil {
		return "", err
	}
	return key, nil
}

// Get reads a document by slug. A missing document returns (nil, nil):
// absence is a normal outcome for callers (a 404 page), not a failure.
func (r *Repository[T]) Get(ctx context.Context, slug string) (*T, error) {
	data, err := r.store.Get(ctx, r.container, r.Key(slug))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %q: %w", slug, err)
	}
	return &doc, nil
}

// Delete removes a document. Deleting a missing slug is treated as success;
// the boolean reports whether a blob was actually removed.
func (r *Repository[T]) Delete(ctx context.Context, slug string) (bool, error) {
	return r.store.Delete(ctx, r.container, r.Key(slug))
}

// ListAll fetches every document in the family: one key listing followed by
// one get per key, fanned out with bounded concurrency. O(N) store round
// trips, acceptable because N stays in the tens to low hundreds.
func (r *Repository[T]) ListAll(ctx context.Context) ([]T, error) {
	keys, err := r.store.ListKeys(ctx, r.container, "")
	if err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		docs []T
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listFanout)

	for _, key := range keys {
		if key == IndexKey || !strings.HasSuffix(key, ".json") {
			continue
		}
		slug := strings.TrimSuffix(key, ".json")
		g.Go(func() error {
			doc, err := r.Get(gctx, slug)
			if err != nil {
				return err
			}
			if doc == nil {
				// Deleted between listing and fetch.
				return nil
			}
			mu.Lock()
			docs = append(docs, *doc)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].DocSlug() < docs[j].DocSlug() })
	return docs, nil
}
