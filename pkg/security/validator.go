package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxSearchQueryLength defines the maximum allowed length for search queries
	MaxSearchQueryLength = 100
)

var (
	ErrQueryTooLong     = errors.New("search query too long")
	ErrQueryInvalidChar = errors.New("search query contains invalid characters")
)

// dangerousPatterns contains patterns that indicate an attempt to smuggle query operators
// or script into a document store filter.
var dangerousPatterns = []*regexp.Regexp{
	// MongoDB operator and server-side JavaScript injection
	regexp.MustCompile(`\$[a-z]+`),
	regexp.MustCompile(`(?i)\b(function|sleep|eval)\s*\(`),
	regexp.MustCompile(`(?i)this\.[a-z_]+`),

	// XSS patterns (if used for web display)
	regexp.MustCompile(`(?i)(<script|</script|javascript:|vbscript:|onload=|onerror=)`),
}

// ValidateSearchQuery trims a free-text search query and rejects anything that is not plain text.
// The returned query is still raw text; use EscapeRegex before embedding it in a pattern.
func ValidateSearchQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	if utf8.RuneCountInString(query) > MaxSearchQueryLength {
		return "", ErrQueryTooLong
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(query) {
			return "", ErrQueryInvalidChar
		}
	}

	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", ErrQueryInvalidChar
		}
	}

	return query, nil
}

// isValidSearchChar checks if a character is safe for search queries
func isValidSearchChar(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsNumber(char) ||
		char == ' ' || char == '-' || char == '_' || char == '.' ||
		char == '@' || char == '+' || char == '\''
}

// EscapeRegex quotes every regular expression metacharacter so query matches literally.
func EscapeRegex(query string) string {
	return regexp.QuoteMeta(query)
}
