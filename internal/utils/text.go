package utils

import (
	"encoding/base64"
	"unicode/utf8"
)

// Preview returns the first limit characters of text, followed by "..." when
// text is longer.
func Preview(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}

// DataURI encodes data inline as a base64 data URI of the given media type.
func DataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
