package store

import (
	"strings"
	"unicode/utf8"
)

const maxSnippetLen = 800

// termFrequency scores text by counting query term occurrences.
func termFrequency(text string, terms []string) float64 {
	lower := strings.ToLower(text)
	var score float64
	for _, t := range terms {
		if t == "" {
			continue
		}
		score += float64(strings.Count(lower, t))
	}
	return score
}

// queryTerms splits a query into lowercased tokens.
func queryTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// makeSnippet bounds text to maxSnippetLen characters with newlines
// collapsed, never splitting a multibyte rune.
func makeSnippet(text string) string {
	if utf8.RuneCountInString(text) > maxSnippetLen {
		runes := []rune(text)
		text = string(runes[:maxSnippetLen])
	}
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}
