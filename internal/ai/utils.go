package ai

import (
	"unicode/utf8"
)

// TruncateForPrompt keeps the first maxLen bytes of s without splitting a
// UTF-8 sequence, appending a marker when anything was cut.
func TruncateForPrompt(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return safeTruncateString(s, maxLen) + "\n... [truncated]"
}

// safeTruncateString truncates to at most maxLen bytes, backing off to a
// valid UTF-8 boundary.
func safeTruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	truncated := s[:maxLen]
	for i := 0; i < utf8.UTFMax && len(truncated) > 0; i++ {
		if utf8.ValidString(truncated) {
			return truncated
		}
		truncated = truncated[:len(truncated)-1]
	}
	return ""
}
