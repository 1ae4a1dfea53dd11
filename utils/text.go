package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText lowercases and strips diacritics: "Sí, Có" -> "si, co"
func NormalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		result = str
	}
	return strings.ToLower(result)
}

// CleanInput trims user input and puts it in NFC form
func CleanInput(str string) string {
	return norm.NFC.String(strings.TrimSpace(str))
}

// HasWord reports whether text contains word as a whole token, ignoring case and diacritics
func HasWord(text, word string) bool {
	word = NormalizeText(word)
	for _, tok := range strings.FieldsFunc(NormalizeText(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if tok == word {
			return true
		}
	}
	return false
}
