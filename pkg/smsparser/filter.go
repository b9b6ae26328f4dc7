package smsparser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultFinancialKeywords is used by IsFinancialMessage when the caller
// supplies no keyword list.
var DefaultFinancialKeywords = []string{
	"مبلغ", "حوالة", "رصيد", "بطاقة", "شراء", "تحويل", "دفع", "إيداع",
	"debited", "credited", "purchase", "payment", "transfer", "withdrawal", "deposit", "spent",
}

var (
	currencyAmountPattern = regexp.MustCompile(`(?i)(?:` + currencyExpr + `)[\s:]?(?:` + amountExpr + `)|(?:` + amountExpr + `)[\s:]?(?:` + currencyExpr + `)`)
	dateTokenPattern      = regexp.MustCompile(`(?i)\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{1,2}/\d{1,2}|\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2}|\d{1,2}[\s\-](?:` + englishMonths + `)[a-z]*[\s\-]\d{2,4}|(?:` + englishMonths + `)[a-z]*\s+\d{1,2},?\s+\d{4}|\d{1,2}\s+(?:` + arabicMonths + `)\s+\d{4}`)
)

// IsFinancialMessage reports whether text looks like a bank transaction:
// it must contain a financial keyword, a currency-tagged amount and a date.
// A nil or empty keywords slice selects DefaultFinancialKeywords.
func IsFinancialMessage(text string, keywords []string) bool {
	if len(keywords) == 0 {
		keywords = DefaultFinancialKeywords
	}
	text = Normalize(text)

	compact := compactKey(text)
	hasKeyword := false
	for _, k := range keywords {
		if k := compactKey(k); k != "" && strings.Contains(compact, k) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return false
	}
	return currencyAmountPattern.MatchString(text) && dateTokenPattern.MatchString(text)
}

// compactKey lowercases s in NFC form with all whitespace removed.
func compactKey(s string) string {
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
