package filter

import (
	"strings"
	"unicode"

	"go-career-hunter/internal/scraper"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeText lowercases and strips diacritics so "Développeur" matches "developpeur"
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		result = str
	}
	return strings.ToLower(result)
}

// MatchesTags reports whether title contains any tag, case-insensitively.
// An empty tag list matches everything.
func MatchesTags(title string, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	text := normalizeText(title)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if strings.Contains(text, normalizeText(tag)) {
			return true
		}
	}
	return false
}

// FilterByTags keeps postings whose title matches one of tags, in input order
func FilterByTags(postings []scraper.RawPosting, tags []string) []scraper.RawPosting {
	var out []scraper.RawPosting
	for _, p := range postings {
		if MatchesTags(p.Title, tags) {
			out = append(out, p)
		}
	}
	return out
}
