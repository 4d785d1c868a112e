package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize collapses every whitespace run to a single space and trims the ends.
func TrimAndNormalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeName drops control and zero-width characters, then collapses whitespace.
func NormalizeName(name string) string {
	return TrimAndNormalize(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, name))
}

// NormalizeCity is NormalizeName plus stripping of trailing separators left by copy-pasted addresses.
func NormalizeCity(city string) string {
	return strings.TrimRight(NormalizeName(city), ",; ")
}

// NormalizeText cleans free-form descriptions. Line breaks survive, carriage returns
// and other control characters do not.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(text)
}
