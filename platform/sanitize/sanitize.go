// Package sanitize cleans free text written by scanning clients before it is
// echoed back to other clients.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Remark strips markup, collapses whitespace to single spaces and truncates
// to maxRunes. maxRunes <= 0 disables truncation.
func Remark(s string, maxRunes int) string {
	result := strings.Join(strings.Fields(StripHTML(s)), " ")
	if maxRunes <= 0 || utf8.RuneCountInString(result) <= maxRunes {
		return result
	}
	runes := []rune(result)
	return string(runes[:maxRunes])
}
