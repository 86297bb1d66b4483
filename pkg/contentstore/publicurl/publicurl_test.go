package publicurl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupath/content-store/pkg/contentstore/publicurl"
)

func TestEndpointResolverURL(t *testing.T) {
	r, err := publicurl.NewEndpointResolver("https://store.example.com")
	require.NoError(t, err)

	assert.Equal(t,
		"https://store.example.com/college-data/mit.json",
		r.URL("college-data", "mit.json"))
	assert.Equal(t,
		"https://store.example.com/site-images/mit/banner-20240101-abcd1234.png",
		r.URL("site-images", "mit/banner-20240101-abcd1234.png"))
}

func TestEndpointResolverParse(t *testing.T) {
	r, err := publicurl.NewEndpointResolver("https://store.example.com")
	require.NoError(t, err)

	t.Run("document URL", func(t *testing.T) {
		container, key, err := r.Parse("https://store.example.com/college-data/mit.json")
		require.NoError(t, err)
		assert.Equal(t, "college-data", container)
		assert.Equal(t, "mit.json", key)
	})

	t.Run("nested asset key", func(t *testing.T) {
		container, key, err := r.Parse("https://store.example.com/site-images/mit/logo-x.png")
		require.NoError(t, err)
		assert.Equal(t, "site-images", container)
		assert.Equal(t, "mit/logo-x.png", key)
	})

	t.Run("round trip", func(t *testing.T) {
		url := r.URL("site-images", "mit/gallery one.png")
		container, key, err := r.Parse(url)
		require.NoError(t, err)
		assert.Equal(t, "site-images", container)
		assert.Equal(t, "mit/gallery one.png", key)
	})

	t.Run("foreign host rejected", func(t *testing.T) {
		_, _, err := r.Parse("https://other.example.net/college-data/mit.json")
		assert.Error(t, err)
	})

	t.Run("missing key rejected", func(t *testing.T) {
		_, _, err := r.Parse("https://store.example.com/college-data")
		assert.Error(t, err)
	})

	t.Run("malformed URL rejected", func(t *testing.T) {
		_, _, err := r.Parse("::nope::")
		assert.Error(t, err)
	})
}

func TestEndpointResolverWithBasePath(t *testing.T) {
	r, err := publicurl.NewEndpointResolver("https://store.example.com/blobs")
	require.NoError(t, err)

	t.Run("builds and parses under the base path", func(t *testing.T) {
		url := r.URL("college-data", "mit.json")
		assert.Equal(t, "https://store.example.com/blobs/college-data/mit.json", url)

		container, key, err := r.Parse(url)
		require.NoError(t, err)
		assert.Equal(t, "college-data", container)
		assert.Equal(t, "mit.json", key)
	})

	t.Run("same host outside the base path rejected", func(t *testing.T) {
		_, _, err := r.Parse("https://store.example.com/other/college-data/mit.json")
		assert.Error(t, err)
	})

	t.Run("base path prefix of another segment rejected", func(t *testing.T) {
		_, _, err := r.Parse("https://store.example.com/blobs-old/college-data/mit.json")
		assert.Error(t, err)
	})
}

func TestEndpointResolverValidation(t *testing.T) {
	_, err := publicurl.NewEndpointResolver("not-an-absolute-url")
	assert.Error(t, err)
}

func TestCDNResolver(t *testing.T) {
	origin, err := publicurl.NewEndpointResolver("https://store.example.com")
	require.NoError(t, err)
	cdn, err := publicurl.NewCDNResolver("https://cdn.example.com", origin)
	require.NoError(t, err)

	t.Run("builds URLs on the CDN host", func(t *testing.T) {
		assert.Equal(t,
			"https://cdn.example.com/college-data/mit.json",
			cdn.URL("college-data", "mit.json"))
	})

	t.Run("parses CDN URLs", func(t *testing.T) {
		container, key, err := cdn.Parse("https://cdn.example.com/site-images/mit/logo.png")
		require.NoError(t, err)
		assert.Equal(t, "site-images", container)
		assert.Equal(t, "mit/logo.png", key)
	})

	t.Run("still parses origin URLs", func(t *testing.T) {
		container, key, err := cdn.Parse("https://store.example.com/site-images/mit/logo.png")
		require.NoError(t, err)
		assert.Equal(t, "site-images", container)
		assert.Equal(t, "mit/logo.png", key)
	})

	t.Run("rejects other hosts", func(t *testing.T) {
		_, _, err := cdn.Parse("https://other.example.net/site-images/mit/logo.png")
		assert.Error(t, err)
	})
}
