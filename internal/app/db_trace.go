package app

import (
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)

	// seed and bootstrap statements inline team and player names
	queryStringLiteralRegex = regexp.MustCompile(`'(?:[^']|'')*'`)
)

// formatDBQueryForTrace collapses whitespace, masks string literals and caps
// the statement length before it lands on a span.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = queryStringLiteralRegex.ReplaceAllString(normalized, "'?'")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}
