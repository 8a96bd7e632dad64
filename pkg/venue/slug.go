package venue

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL/email-safe slug from a venue name: lowercased,
// runs of non-alphanumeric characters collapsed to a single hyphen,
// leading and trailing hyphens removed.
func Slugify(name string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
