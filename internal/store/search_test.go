package store

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTermFrequency(t *testing.T) {
	assert.Equal(t, 2.0, termFrequency("Revenue grew. REVENUE again.", []string{"revenue"}))
	assert.Equal(t, 3.0, termFrequency("a b a", []string{"a", "b"}))
	assert.Equal(t, 0.0, termFrequency("nothing here", []string{"missing"}))
	assert.Equal(t, 0.0, termFrequency("anything", nil))
}

func TestQueryTerms(t *testing.T) {
	assert.Equal(t, []string{"what", "is", "2+2?"}, queryTerms("  What IS 2+2?  "))
	assert.Empty(t, queryTerms("   "))
}

func TestMakeSnippet(t *testing.T) {
	long := strings.Repeat("x", maxSnippetLen+100)
	assert.Len(t, makeSnippet(long), maxSnippetLen)

	assert.Equal(t, "line one line two", makeSnippet("line one\nline two\n"))
}

func TestMakeSnippetKeepsRunesIntact(t *testing.T) {
	// Truncation counts characters, not bytes, and must never cut a
	// multibyte rune in half.
	long := strings.Repeat("日本語テキスト", maxSnippetLen)
	got := makeSnippet(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxSnippetLen, utf8.RuneCountInString(got))
}
