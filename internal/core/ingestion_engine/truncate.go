package ingestion_engine

import "github.com/markdave123-py/docquery/internal/core"

// Truncate returns the longest prefix of text holding at most limit characters (runes).
// A multi-byte character is never split. limit <= 0 yields the empty excerpt.
func Truncate(text string, limit int) core.Excerpt {
	if limit <= 0 {
		return ""
	}
	n := 0
	for i := range text {
		if n == limit {
			return core.Excerpt(text[:i])
		}
		n++
	}
	return core.Excerpt(text)
}
