package recorder

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// MaxHashSize caps how many bytes of an input are hashed.
const MaxHashSize = 1024 * 1024

// HashContent returns the hex SHA-256 of at most the first MaxHashSize bytes
// of content, or "" for empty content.
func HashContent(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	if len(content) > MaxHashSize {
		content = content[:MaxHashSize]
	}
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// HashString hashes a string with HashContent.
func HashString(content string) string {
	return HashContent([]byte(content))
}

// TruncateString shortens s to at most max bytes without splitting a UTF-8
// sequence and appends "...". A max of 0 or less disables truncation.
func TruncateString(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
