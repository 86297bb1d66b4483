// Package catalog defines the entity families the site stores: college
// records and study-in-country pages. Each family carries an explicit
// schema validated on write; the store itself treats documents as opaque
// JSON.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/edupath/content-store/pkg/contentstore"
)

// Default container names, one per entity family.
const (
	DefaultCollegeContainer   = "college-data"
	DefaultStudyPageContainer = "study-in-pages"
	DefaultAssetContainer     = "site-images"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateSlug checks the caller-supplied document slug: lowercase
// URL-safe, immutable once created.
func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}
	if !slugRe.MatchString(slug) {
		return fmt.Errorf("slug %q must be lowercase letters, digits and hyphens", slug)
	}
	return nil
}

// College is one college record, rendered on a detail page and summarized
// on the listing page.
type College struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	Website     string   `json:"website,omitempty"`
	TuitionBand string   `json:"tuition_band,omitempty"`
	Programs    []string `json:"programs,omitempty"`
	Ranking     int      `json:"ranking,omitempty"`
	LogoURL     string   `json:"logo_url,omitempty"`
	BannerURL   string   `json:"banner_url,omitempty"`
	GalleryURLs []string `json:"gallery_urls,omitempty"`
	Description string   `json:"description,omitempty"`
}

func (c College) DocSlug() string { return c.Slug }

func (c College) Validate() error {
	if err := ValidateSlug(c.Slug); err != nil {
		return err
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(c.Country) == "" {
		return errors.New("country is required")
	}
	return nil
}

// SummarizeCollege projects a college down to its index record.
func SummarizeCollege(c College) contentstore.Summary {
	return contentstore.Summary{
		Slug:        c.Slug,
		Name:        c.Name,
		City:        c.City,
		Country:     c.Country,
		Tags:        c.Programs,
		Description: c.Description,
	}
}
