// Package textfile reads the small UTF-8 documents the game is built from.
package textfile

import (
	"os"
	"strings"
	"unicode/utf8"
)

// ReadOrEmpty returns the trimmed UTF-8 content of path. Missing, unreadable or non UTF-8 files read as the
// empty string; the function never fails.
func ReadOrEmpty(path string) string {
	if path == "" {
		return ""
	}
	b, err := os.ReadFile(path)
	if err != nil || !utf8.Valid(b) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(string(b), "\ufeff"))
}
