package catalog

import (
	"errors"
	"strings"

	"github.com/edupath/content-store/pkg/contentstore"
)

// PageSection is one content block of a study-in-country page.
type PageSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
	// ImageURL optionally references an uploaded asset.
	ImageURL string `json:"image_url,omitempty"`
}

// StudyPage is one study-in-country page, e.g. "study in Germany". The slug
// doubles as the country identifier in URLs.
type StudyPage struct {
	Slug      string        `json:"slug"`
	Title     string        `json:"title"`
	Country   string        `json:"country"`
	HeroURL   string        `json:"hero_url,omitempty"`
	OGImage   string        `json:"og_image_url,omitempty"`
	Intro     string        `json:"intro,omitempty"`
	Sections  []PageSection `json:"sections,omitempty"`
	Highlight []string      `json:"highlights,omitempty"`
}

func (p StudyPage) DocSlug() string { return p.Slug }

func (p StudyPage) Validate() error {
	if err := ValidateSlug(p.Slug); err != nil {
		return err
	}
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(p.Country) == "" {
		return errors.New("country is required")
	}
	return nil
}

// SummarizeStudyPage projects a study page down to its index record.
func SummarizeStudyPage(p StudyPage) contentstore.Summary {
	return contentstore.Summary{
		Slug:        p.Slug,
		Name:        p.Title,
		Country:     p.Country,
		Tags:        p.Highlight,
		Description: p.Intro,
	}
}
