package service

import (
	"regexp"
	"strings"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title, collapses every run of characters outside [a-z0-9]
// into a single "-" and strips leading and trailing separators.
// A title with no ASCII letters or digits yields "".
func Slugify(title string) string {
	s := nonAlnumRun.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}
