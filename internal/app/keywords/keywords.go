// Package keywords spots caller-supplied keywords in a transcript.
package keywords

import (
	"strings"

	"github.com/samber/lo"
)

// Detect returns the keywords that occur in transcript, compared case-insensitively
// as substrings. The result keeps the input order and drops blanks and duplicates.
func Detect(transcript string, keywords []string) []string {
	lowered := strings.ToLower(transcript)

	candidates := lo.Map(keywords, func(k string, _ int) string {
		return strings.TrimSpace(k)
	})
	candidates = lo.Compact(candidates)
	candidates = lo.UniqBy(candidates, strings.ToLower)

	return lo.Filter(candidates, func(k string, _ int) bool {
		return strings.Contains(lowered, strings.ToLower(k))
	})
}

// Parse splits repeated or comma-separated keyword values into one list.
func Parse(values []string) []string {
	parts := lo.FlatMap(values, func(v string, _ int) []string {
		return strings.Split(v, ",")
	})
	return lo.Compact(lo.Map(parts, func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
}
