package util

import "strings"

// SanitizeText drops invalid UTF-8 and NUL bytes and normalizes line endings
// to "\n" so paragraph separators survive extraction from any source format.
func SanitizeText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	sanitized = strings.ReplaceAll(sanitized, "\x00", "")
	sanitized = strings.ReplaceAll(sanitized, "\r\n", "\n")
	return strings.ReplaceAll(sanitized, "\r", "\n")
}
