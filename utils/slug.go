package utils

import (
	"regexp"
	"strings"
)

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9\-]+`)
	slugDashes  = regexp.MustCompile(`\-\-+`)
)

// Slugify builds a URL-safe registration slug from an event name and
// appends a random suffix so two events with the same name stay unique.
func Slugify(name string) (string, error) {
	base := strings.ToLower(strings.TrimSpace(name))
	base = slugSpaces.ReplaceAllString(base, "-")
	base = slugInvalid.ReplaceAllString(base, "")
	base = slugDashes.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	suffix, err := GenerateCode(3)
	if err != nil {
		return "", err
	}
	suffix = strings.ToLower(suffix)

	if base == "" {
		return suffix, nil
	}
	return base + "-" + suffix, nil
}
