package util

import (
	"strings"
	"unicode"
)

// CleanText trims s and drops control and invisible formatting characters.
// With multiline set, newlines and tabs survive and other line breaks are
// normalized to '\n'.
func CleanText(s string, multiline bool) string {
	if s == "" {
		return s
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")

	builder := strings.Builder{}
	builder.Grow(len(s))

	for _, char := range s {
		switch {
		case multiline && (char == '\n' || char == '\t'):
			builder.WriteRune(char)
		case multiline && char == '\r':
			builder.WriteRune('\n')
		case !multiline && (char == '\n' || char == '\r' || char == '\t'):
			builder.WriteRune(' ')
		case unicode.IsControl(char) || isInvisibleUnicode(char):
			continue
		default:
			builder.WriteRune(char)
		}
	}

	return strings.TrimSpace(builder.String())
}

// isInvisibleUnicode reports zero-width and other format characters that
// render as nothing but still count toward length limits.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case
		'\u200B', // Zero-Width Space
		'\u200C', // Zero-Width Non-Joiner
		'\u200D', // Zero-Width Joiner
		'\u200E', // Left-to-Right Mark
		'\u200F', // Right-to-Left Mark
		'\u2060', // Word Joiner
		'\uFEFF', // BOM
		'\uFFF9', '\uFFFA', '\uFFFB':
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
