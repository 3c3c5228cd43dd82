// Package headings finds heading-like lines in extracted text.
package headings

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits for a line to count as a heading.
const (
	MaxRunes = 200
	MaxWords = 20
)

// IsHeading reports whether a line looks like a section title: non-empty,
// shorter than MaxRunes, fewer than MaxWords words, not ending with a period,
// and starting with an upper-case letter or a digit.
func IsHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || utf8.RuneCountInString(line) >= MaxRunes {
		return false
	}
	if strings.HasSuffix(line, ".") {
		return false
	}
	first, _ := utf8.DecodeRuneInString(line)
	if !unicode.IsUpper(first) && !unicode.IsDigit(first) {
		return false
	}
	return len(strings.Fields(line)) < MaxWords
}

// Detect returns the heading-like lines of text in order, trimmed.
func Detect(text string) []string {
	var found []string
	for _, line := range strings.Split(text, "\n") {
		if IsHeading(line) {
			found = append(found, strings.TrimSpace(line))
		}
	}
	return found
}
