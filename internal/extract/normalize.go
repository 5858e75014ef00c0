package extract

import (
	"regexp"
	"strings"
)

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	noiseRE      = regexp.MustCompile(`[^\w\s\-.,@()$#]`)
)

// NormalizeText collapses runs of whitespace to a single space and strips
// characters outside the allowed set (word characters, whitespace, and the
// punctuation that appears in certificate fields: - . , @ ( ) $ #).
// Scanner artifacts like box-drawing glyphs and form feeds disappear here.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
	return noiseRE.ReplaceAllString(s, "")
}
