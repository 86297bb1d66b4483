package contentstore

import (
	"context"
)

// BlobStore defines the interface for object storage backends. A container is
// a named bucket of blobs with anonymous read access and credentialed write
// access; every blob written through it is world-readable at a stable public
// URL.
type BlobStore interface {
	// EnsureContainer creates the container on first use. It is idempotent
	// and returns ErrStoreUnavailable when no credential is configured.
	EnsureContainer(ctx context.Context, container string) error

	// Put writes a blob with overwrite semantics (last-writer-wins, no
	// optimistic concurrency token).
	Put(ctx context.Context, container, key string, data []byte, opts PutOptions) error

	// Get reads a blob, returning ErrNotFound when the key is absent.
	Get(ctx context.Context, container, key string) ([]byte, error)

	// Delete removes a blob. Deleting a missing key is not an error; the
	// boolean reports whether anything was actually removed.
	Delete(ctx context.Context, container, key string) (bool, error)

	// ListKeys returns every key under the prefix. Pagination of the
	// underlying listing API is handled transparently.
	ListKeys(ctx context.Context, container, prefix string) ([]string, error)
}

// PutOptions carries the write-time blob attributes. CacheControl is a
// binding contract for every public consumer of the blob's URL, not an
// implementation detail.
type PutOptions struct {
	ContentType  string
	CacheControl string
	Metadata     map[string]string
}

// Document is implemented by every entity family stored through a
// Repository. The slug is caller-supplied, URL-safe and immutable once
// created.
type Document interface {
	DocSlug() string
	Validate() error
}
