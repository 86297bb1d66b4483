// Package publicurl implements the public addressing scheme for stored
// blobs: {endpoint}/{container}/{key}. Every blob is world-readable at its
// public URL, so the rendering layer may fetch it directly and benefit from
// CDN and browser caching instead of going through the service.
package publicurl

import (
	"fmt"
	"net/url"
	"strings"
)

// Resolver builds public URLs for stored blobs and parses them back into
// container/key pairs.
type Resolver interface {
	// URL returns the stable public URL of a blob.
	URL(container, key string) string

	// Parse resolves a public URL back into its container and key. URLs not
	// addressed to this store fail with an error.
	Parse(raw string) (container, key string, err error)
}

// EndpointResolver addresses blobs path-style beneath a single store
// endpoint, e.g. https://store.example.com/college-data/mit.json.
type EndpointResolver struct {
	endpoint *url.URL
}

// NewEndpointResolver creates a resolver for the given store endpoint.
func NewEndpointResolver(endpoint string) (*EndpointResolver, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid store endpoint %q: %w", endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("store endpoint %q must be an absolute URL", endpoint)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return &EndpointResolver{endpoint: u}, nil
}

func (r *EndpointResolver) URL(container, key string) string {
	return fmt.Sprintf("%s/%s/%s", r.endpoint.String(), container, escapeKey(key))
}

func (r *EndpointResolver) Parse(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("malformed URL %q: %w", raw, err)
	}
	if u.Host != r.endpoint.Host {
		return "", "", fmt.Errorf("URL %q does not address this store", raw)
	}
	if base := r.endpoint.Path; base != "" && !strings.HasPrefix(u.Path, base+"/") {
		return "", "", fmt.Errorf("URL %q does not address this store", raw)
	}

	path := strings.TrimPrefix(u.Path, r.endpoint.Path)
	path = strings.TrimPrefix(path, "/")
	container, key, ok := strings.Cut(path, "/")
	if !ok || container == "" || key == "" {
		return "", "", fmt.Errorf("URL %q has no container/key path", raw)
	}
	key, err = url.PathUnescape(key)
	if err != nil {
		return "", "", fmt.Errorf("malformed key in URL %q: %w", raw, err)
	}
	return container, key, nil
}

// CDNResolver serves blobs through a CDN host in front of the store while
// still parsing store-endpoint URLs, so references written before the CDN
// was introduced keep resolving.
type CDNResolver struct {
	cdn    *url.URL
	origin *EndpointResolver
}

// NewCDNResolver creates a resolver that builds URLs on the CDN host and
// accepts both CDN and origin URLs when parsing.
func NewCDNResolver(cdnBase string, origin *EndpointResolver) (*CDNResolver, error) {
	u, err := url.Parse(cdnBase)
	if err != nil {
		return nil, fmt.Errorf("invalid CDN base %q: %w", cdnBase, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("CDN base %q must be an absolute URL", cdnBase)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return &CDNResolver{cdn: u, origin: origin}, nil
}

func (r *CDNResolver) URL(container, key string) string {
	return fmt.Sprintf("%s/%s/%s", r.cdn.String(), container, escapeKey(key))
}

func (r *CDNResolver) Parse(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("malformed URL %q: %w", raw, err)
	}
	if u.Host == r.cdn.Host {
		cdnScoped := &EndpointResolver{endpoint: r.cdn}
		return cdnScoped.Parse(raw)
	}
	return r.origin.Parse(raw)
}

// escapeKey percent-encodes each key segment while keeping the path
// separators intact.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
