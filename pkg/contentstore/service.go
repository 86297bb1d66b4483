package contentstore

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Service ties a family's document repository and index maintainer together
// and owns the index consistency policy.
//
// By default every Upsert and Delete rebuilds the index synchronously before
// returning, so the index never drifts from the entity set. The rebuild
// costs O(N) store round trips per write, which is fine at catalog scale
// (tens to low hundreds of entities). WithDeferredIndex switches a family to
// the legacy behavior where only explicit Reindex/UpsertAll calls touch the
// index and readers may observe a stale listing until then.
type Service[T Document] struct {
	repo       *Repository[T]
	index      *Index[T]
	deferIndex bool
	logger     *slog.Logger
}

// Option configures a Service.
type Option[T Document] func(*Service[T])

// WithDeferredIndex disables the synchronous index rebuild after individual
// writes. Callers become responsible for invoking Reindex; until they do,
// List serves stale summaries.
func WithDeferredIndex[T Document]() Option[T] {
	return func(s *Service[T]) { s.deferIndex = true }
}

// WithLogger sets the structured logger used for write-path logging.
func WithLogger[T Document](logger *slog.Logger) Option[T] {
	return func(s *Service[T]) { s.logger = logger }
}

// NewService creates the service for one entity family.
func NewService[T Document](store BlobStore, container string, project func(T) Summary, opts ...Option[T]) *Service[T] {
	s := &Service[T]{
		repo:   NewRepository[T](store, container),
		index:  NewIndex[T](store, container, project),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init ensures the family container exists. Idempotent; called once at
// process start.
func (s *Service[T]) Init(ctx context.Context) error {
	return s.repo.store.EnsureContainer(ctx, s.repo.container)
}

// Container returns the family's container name.
func (s *Service[T]) Container() string {
	return s.repo.Container()
}

// Key returns the storage key for a slug.
func (s *Service[T]) Key(slug string) string {
	return s.repo.Key(slug)
}

// Get reads one document; (nil, nil) when absent.
func (s *Service[T]) Get(ctx context.Context, slug string) (*T, error) {
	return s.repo.Get(ctx, slug)
}

// List returns the derived index summaries. Empty, never an error, before
// the first rebuild.
func (s *Service[T]) List(ctx context.Context) ([]Summary, error) {
	return s.index.Read(ctx)
}

// ListAll fetches every full document in the family.
func (s *Service[T]) ListAll(ctx context.Context) ([]T, error) {
	return s.repo.ListAll(ctx)
}

// Upsert writes one document. Under the default policy the index is rebuilt
// synchronously before Upsert returns.
func (s *Service[T]) Upsert(ctx context.Context, doc T) (string, error) {
	key, err := s.repo.Upsert(ctx, doc)
	if err != nil {
		return "", err
	}
	s.logger.Info("document written", "container", s.repo.container, "key", key)

	if !s.deferIndex {
		if err := s.Reindex(ctx); err != nil {
			return key, err
		}
	}
	return key, nil
}

// Delete removes one document, rebuilding the index afterwards unless the
// family runs in deferred mode. Deleting a missing slug succeeds with false.
func (s *Service[T]) Delete(ctx context.Context, slug string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, slug)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("document deleted", "container", s.repo.container, "slug", slug)
	}

	if deleted && !s.deferIndex {
		if err := s.Reindex(ctx); err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

// Rebuild overwrites the index from a caller-supplied entity set. This is
// the only operation after which the index is guaranteed to exactly match
// the supplied set.
func (s *Service[T]) Rebuild(ctx context.Context, entities []T) error {
	return s.index.Rebuild(ctx, entities)
}

// Reindex regenerates the index by reading back every stored document.
func (s *Service[T]) Reindex(ctx context.Context) error {
	docs, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	return s.index.Rebuild(ctx, docs)
}

// UpsertAll writes a batch of documents and then regenerates the index from
// the store. Writes are fanned out with bounded concurrency and are not
// transactional: some may succeed while others fail, and nothing is rolled
// back. The per-item outcomes are reported in the BatchResult; the error
// return covers only the final reindex.
func (s *Service[T]) UpsertAll(ctx context.Context, docs []T) (*BatchResult, error) {
	result := &BatchResult{Items: make([]BatchItem, len(docs))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listFanout)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			key, err := s.repo.Upsert(gctx, doc)
			result.Items[i] = BatchItem{Name: doc.DocSlug(), Key: key, Err: err}
			// Item failures are reported, not propagated: the rest of the
			// batch still runs.
			return nil
		})
	}
	g.Wait()

	if err := s.Reindex(ctx); err != nil {
		return result, err
	}
	return result, nil
}
