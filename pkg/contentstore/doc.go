// Package contentstore persists the site's content in an object store:
// JSON entity documents keyed by slug, a derived summary index per entity
// family, and binary image assets.
//
// It exposes a typed Repository for document CRUD, an Index maintainer for
// the summary document every listing page reads, an AssetUploader for
// images, and a Service that composes repository and index under a single
// consistency policy. Blob storage backends (S3-compatible, in-memory) live
// under subpackages, as do the public URL resolver, the typed entity
// catalog, configuration, and the HTTP API.
//
// Consistency Model
//
// Every blob write is individually atomic and last-writer-wins; there are no
// cross-blob transactions. The summary index is derived state: it is only
// guaranteed to match the entity set immediately after a rebuild. The
// default Service policy rebuilds synchronously after each write, trading
// O(N) round trips per write for an index that never drifts.
package contentstore
