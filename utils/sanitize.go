package utils

import (
	"strings"
	"unicode"
)

const fallbackFilename = "download"

// SanitizeHeaderFilename makes name safe for a quoted Content-Disposition filename.
func SanitizeHeaderFilename(name string) string {
	clean := strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return fallbackFilename
	}
	return clean
}
