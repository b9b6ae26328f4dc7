package smsparser

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// rtlThreshold is the share of letters that must be right-to-left script for
// a message to count as RTL.
const rtlThreshold = 0.5

// digitZeros lists the zero glyph of each localized digit block we fold to ASCII.
var digitZeros = []rune{
	'\u0660', // Arabic-Indic
	'\u06F0', // Extended Arabic-Indic (Persian, Urdu)
	'\u0966', // Devanagari
	'\uFF10', // Fullwidth
}

var punctuation = map[rune]rune{
	'\u066B': '.', // Arabic decimal separator
	'\u066C': ',', // Arabic thousands separator
	'\u060C': ',', // Arabic comma
	'\u061B': ';', // Arabic semicolon
	'\u061F': '?', // Arabic question mark
	'\u00A0': ' ', // no-break space
	'\u202F': ' ', // narrow no-break space
	'\u2019': '\'',
	'\u2018': '\'',
	'\u201C': '"',
	'\u201D': '"',
	'\u2013': '-',
	'\u2014': '-',
}

// Normalize folds localized digits to ASCII, maps punctuation variants to
// their ASCII equivalents and drops invisible formatting characters.
func Normalize(text string) string {
	text = norm.NFC.String(text)
	return strings.Map(func(r rune) rune {
		if d, ok := asciiDigit(r); ok {
			return d
		}
		if p, ok := punctuation[r]; ok {
			return p
		}
		switch r {
		case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u200E', '\u200F', '\u061C':
			return -1
		}
		return r
	}, text)
}

func asciiDigit(r rune) (rune, bool) {
	for _, zero := range digitZeros {
		if r >= zero && r <= zero+9 {
			return '0' + (r - zero), true
		}
	}
	return 0, false
}

// IsRTL reports whether right-to-left letters make up more than half of the
// letters in text. Digits, spaces and punctuation are ignored.
func IsRTL(text string) bool {
	var letters, rtl int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.In(r, unicode.Arabic, unicode.Hebrew, unicode.Syriac, unicode.Thaana) {
			rtl++
		}
	}
	if letters == 0 {
		return false
	}
	return float64(rtl)/float64(letters) > rtlThreshold
}

// truncateRunes caps s at max runes.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
