package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// stripPolicy removes every tag and attribute, leaving text content only.
var stripPolicy = bluemonday.StrictPolicy()

// StripMarkup renders rich content down to plain text. Word counts and
// excerpts are always computed on this rendering, never on the raw markup.
func StripMarkup(content string) string {
	return html.UnescapeString(stripPolicy.Sanitize(content))
}

// WordCount counts whitespace-separated words in plain text.
func WordCount(plain string) int {
	return len(strings.Fields(plain))
}
