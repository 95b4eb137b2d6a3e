// Package strutil provides string utility functions.
package strutil

// Truncate truncates a string to a maximum length, appending "..." when
// anything was cut. Uses rune-level truncation so multi-byte characters
// are never split. Returns empty string if maxLen <= 0 to prevent slice
// bounds panic.
func Truncate(s string, maxLen int) string {
	if s == "" || maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
