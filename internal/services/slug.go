package services

import (
	"regexp"
	"strings"
)

var (
	nonSlugRuns = regexp.MustCompile(`[^a-z0-9]+`)
	htmlTags    = regexp.MustCompile(`<[^>]*>`)
)

const excerptLimit = 150

// Slugify derives a URL slug from a title: lower-cased, runs of anything
// outside [a-z0-9] collapsed to one hyphen, leading/trailing hyphens
// stripped. Deterministic and idempotent; uniqueness is the caller's
// concern, not the repository's.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonSlugRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Excerpt renders the article teaser: markup stripped, capped at 150
// visible characters, with a trailing ellipsis marker.
func Excerpt(content string) string {
	plain := htmlTags.ReplaceAllString(content, "")
	if runes := []rune(plain); len(runes) > excerptLimit {
		plain = string(runes[:excerptLimit])
	}
	return strings.TrimSpace(plain) + "..."
}
