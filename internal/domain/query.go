package domain

import (
	"strings"
	"unicode"
)

// SearchQuery is a parsed free-text profile search.
type SearchQuery struct {
	Raw       string   // normalized input (lower case, trimmed)
	Fragments []string // whitespace-separated words
}

// ParseSearchQuery parses user input into a structured query.
// Examples:
//   - "Ada"             -> ["ada"]
//   - "ada  lovelace"   -> ["ada", "lovelace"]
//   - "ada@example.com" -> ["ada@example.com"]
func ParseSearchQuery(input string) SearchQuery {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return SearchQuery{}
	}
	return SearchQuery{
		Raw:       input,
		Fragments: strings.Fields(input),
	}
}

// IsEmpty reports whether the query has nothing to match.
func (q SearchQuery) IsEmpty() bool { return len(q.Fragments) == 0 }

// normalizeFragment keeps letters and digits only, lower-cased.
func normalizeFragment(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}

// emailLocalPart returns the part of an address before '@'.
func emailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
