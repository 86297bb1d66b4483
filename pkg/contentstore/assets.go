package contentstore

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/edupath/content-store/pkg/contentstore/publicurl"
)

// uploadFanout bounds concurrent uploads in UploadMany.
const uploadFanout = 4

// DefaultAssetRole is used when a caller uploads without a role tag.
const DefaultAssetRole = "gallery"

var pathComponentRe = regexp.MustCompile(`[^a-z0-9-]+`)

// AssetFile is one binary payload handed to the uploader.
type AssetFile struct {
	Data             []byte
	OriginalFilename string
}

// AssetUploader stores binary images under owner/role-namespaced keys with a
// generated unique filename per upload. Because the filename is unique, the
// content at any asset URL is immutable and gets a year-long cache lifetime.
//
// Assets have their own lifecycle: they are referenced by URL from entity
// documents but deleting an entity does not delete its assets, so orphaned
// images are possible and cleanup is a caller concern.
type AssetUploader struct {
	store     BlobStore
	container string
	resolver  publicurl.Resolver
	logger    *slog.Logger
	now       func() time.Time
	token     func() string
}

// NewAssetUploader creates an uploader writing into the given container.
func NewAssetUploader(store BlobStore, container string, resolver publicurl.Resolver, logger *slog.Logger) *AssetUploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetUploader{
		store:     store,
		container: container,
		resolver:  resolver,
		logger:    logger,
		now:       time.Now,
		token:     shortToken,
	}
}

// Init ensures the asset container exists.
func (a *AssetUploader) Init(ctx context.Context) error {
	return a.store.EnsureContainer(ctx, a.container)
}

// Upload stores one image and returns its public URL. ownerSlug and role may
// be empty; the key shape is {owner}/{role}-{timestamp}-{token}{ext}. The
// timestamp is coarse and the random token carries the uniqueness guarantee
// under concurrent admin sessions, so filenames must not be used for
// ordering.
func (a *AssetUploader) Upload(ctx context.Context, file AssetFile, ownerSlug, role string) (string, error) {
	if len(file.Data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrInvalidDocument)
	}

	key := a.assetKey(ownerSlug, role, file.OriginalFilename)
	opts := PutOptions{
		ContentType:  detectContentType(file.OriginalFilename, file.Data),
		CacheControl: AssetCacheControl,
		Metadata: map[string]string{
			MetaLastUpdated: a.now().UTC().Format(time.RFC3339),
		},
	}
	if err := a.store.Put(ctx, a.container, key, file.Data, opts); err != nil {
		return "", err
	}

	url := a.resolver.URL(a.container, key)
	a.logger.Info("asset uploaded", "container", a.container, "key", key, "bytes", len(file.Data))
	return url, nil
}

// UploadMany uploads a batch of images with bounded concurrency. The batch
// is not all-or-nothing: items that were already written stay written when a
// later one fails, and each item's outcome is reported individually.
func (a *AssetUploader) UploadMany(ctx context.Context, files []AssetFile, ownerSlug, role string) *BatchResult {
	result := &BatchResult{Items: make([]BatchItem, len(files))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadFanout)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			url, err := a.Upload(gctx, file, ownerSlug, role)
			result.Items[i] = BatchItem{Name: file.OriginalFilename, URL: url, Err: err}
			return nil
		})
	}
	g.Wait()
	return result
}

// Delete removes the asset behind a public URL. Malformed URLs, URLs for a
// different store, and URLs outside the asset container all fail with
// ErrInvalidReference instead of silently doing nothing.
func (a *AssetUploader) Delete(ctx context.Context, rawURL string) error {
	container, key, err := a.resolver.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if container != a.container {
		return fmt.Errorf("%w: %q is not an asset URL", ErrInvalidReference, rawURL)
	}

	if _, err := a.store.Delete(ctx, a.container, key); err != nil {
		return err
	}
	a.logger.Info("asset deleted", "container", a.container, "key", key)
	return nil
}

// ListForOwner returns the public URLs of every asset uploaded under an
// owner slug.
func (a *AssetUploader) ListForOwner(ctx context.Context, ownerSlug string) ([]string, error) {
	prefix := sanitizeComponent(ownerSlug) + "/"
	keys, err := a.store.ListKeys(ctx, a.container, prefix)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		urls = append(urls, a.resolver.URL(a.container, key))
	}
	return urls, nil
}

func (a *AssetUploader) assetKey(ownerSlug, role, originalFilename string) string {
	owner := sanitizeComponent(ownerSlug)
	r := DefaultAssetRole
	if strings.TrimSpace(role) != "" {
		r = sanitizeComponent(role)
	}

	ext := strings.ToLower(path.Ext(originalFilename))
	if ext == "" {
		ext = ".bin"
	}

	stamp := a.now().UTC().Format("20060102150405")
	return fmt.Sprintf("%s/%s-%s-%s%s", owner, r, stamp, a.token(), ext)
}

// shortToken returns the leading segment of a random UUID, enough entropy to
// keep concurrent uploads from colliding within one timestamp tick.
func shortToken() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}

func sanitizeComponent(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = pathComponentRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "shared"
	}
	return s
}

func detectContentType(filename string, data []byte) string {
	if ext := path.Ext(filename); ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	return http.DetectContentType(data)
}
