package contentstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// summaryDescriptionLimit caps index description length in runes.
// Longer descriptions are cut on a rune boundary and a literal ellipsis is
// appended. Existing listing pages render the truncated form verbatim, so
// the rule must stay byte-for-byte stable.
const summaryDescriptionLimit = 200

// Index maintains the derived summary document for one entity family. The
// index is a single blob (index.json) holding one Summary per live entity.
//
// Consistency is eventual: Rebuild is the only operation that brings the
// index fully in line with the entity set, and it does so with a single
// atomic put. Individual document writes do not touch the index; see
// Service for the policy layered on top.
type Index[T Document] struct {
	store     BlobStore
	container string
	project   func(T) Summary
	now       func() time.Time
}

// NewIndex creates an index maintainer for one family. The projection maps a
// full entity down to its summary shape and must be deterministic.
func NewIndex[T Document](store BlobStore, container string, project func(T) Summary) *Index[T] {
	return &Index[T]{
		store:     store,
		container: container,
		project:   project,
		now:       time.Now,
	}
}

// Rebuild projects the supplied entity set and overwrites index.json in a
// single put. The output is deterministic: the same input set produces
// byte-identical index content (timestamp metadata aside), so calling it
// twice is idempotent.
func (ix *Index[T]) Rebuild(ctx context.Context, entities []T) error {
	summaries := make([]Summary, 0, len(entities))
	for _, e := range entities {
		s := ix.project(e)
		s.Description = TruncateDescription(s.Description)
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Slug < summaries[j].Slug })

	data, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("failed to serialize index: %w", err)
	}

	opts := PutOptions{
		ContentType:  "application/json",
		CacheControl: IndexCacheControl,
		Metadata: map[string]string{
			MetaLastUpdated:   ix.now().UTC().Format(time.RFC3339),
			MetaSchemaVersion: SchemaVersion,
		},
	}
	return ix.store.Put(ctx, ix.container, IndexKey, data, opts)
}

// Read returns the current index content. A missing index blob is the
// cold-start case and yields an empty slice, never an error.
func (ix *Index[T]) Read(ctx context.Context) ([]Summary, error) {
	data, err := ix.store.Get(ctx, ix.container, IndexKey)
	if err != nil {
		if isNotFound(err) {
			return []Summary{}, nil
		}
		return nil, err
	}

	var summaries []Summary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	return summaries, nil
}

// TruncateDescription applies the index description length limit.
func TruncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= summaryDescriptionLimit {
		return s
	}
	return string(runes[:summaryDescriptionLimit]) + "..."
}
