package services

import (
	"encoding/json"
	"strings"

	"multisite-backend-go/internal/models"
)

var sectionTypes = map[string]bool{
	models.SectionText:    true,
	models.SectionImage:   true,
	models.SectionHero:    true,
	models.SectionGallery: true,
	models.SectionCTA:     true,
}

func KnownSectionType(sectionType string) bool {
	return sectionTypes[sectionType]
}

// ValidateSectionContent checks that a section payload matches its type:
// plain text for text/hero/cta, a single image descriptor for image, an
// ordered list of image descriptors for gallery. Invalid shapes are
// rejected at the boundary rather than stored and assumed later.
func ValidateSectionContent(sectionType string, content json.RawMessage) error {
	if !sectionTypes[sectionType] {
		return ErrBadRequest("Unknown section type")
	}
	if len(content) == 0 {
		return ErrBadRequest("Section content is required")
	}
	switch sectionType {
	case models.SectionText, models.SectionHero, models.SectionCTA:
		var text string
		if err := json.Unmarshal(content, &text); err != nil {
			return ErrBadRequest("Section content must be text")
		}
	case models.SectionImage:
		var image models.ContentImage
		if err := json.Unmarshal(content, &image); err != nil {
			return ErrBadRequest("Section content must be an image")
		}
		if err := validateImage(image); err != nil {
			return err
		}
	case models.SectionGallery:
		var images []models.ContentImage
		if err := json.Unmarshal(content, &images); err != nil {
			return ErrBadRequest("Section content must be a list of images")
		}
		for _, image := range images {
			if err := validateImage(image); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateImage(image models.ContentImage) error {
	if strings.TrimSpace(image.URL) == "" {
		return ErrBadRequest("Image URL is required")
	}
	return nil
}
