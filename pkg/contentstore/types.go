package contentstore

// Cache lifetimes written with each blob. Public URLs bypass the service
// entirely, so changing one of these changes observed staleness for every
// CDN and browser consumer.
const (
	// DocumentCacheControl applies to entity documents, which change
	// occasionally.
	DocumentCacheControl = "public, max-age=3600"

	// IndexCacheControl applies to the derived index, which any single
	// entity change potentially invalidates.
	IndexCacheControl = "public, max-age=300"

	// AssetCacheControl applies to uploaded images. Asset filenames are
	// unique per upload, so the content at a given URL never changes and
	// aggressive caching is safe.
	AssetCacheControl = "public, max-age=31536000, immutable"
)

// IndexKey is the fixed key of the derived summary document inside each
// entity container.
const IndexKey = "index.json"

// SchemaVersion is attached as blob metadata to every document write for
// observability and the admin listing view.
const SchemaVersion = "1"

// Blob metadata keys.
const (
	MetaLastUpdated   = "last-updated"
	MetaSchemaVersion = "schema-version"
)

// Summary is one index record: the strict subset of entity fields the
// listing pages need. The index carries no guaranteed ordering; callers sort
// at read time.
type Summary struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	City        string   `json:"city,omitempty"`
	Country     string   `json:"country,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
}
