package smsparser

import (
	"strings"
)

// currencyExpr matches the currency tokens recognised next to an amount.
// Longer alternatives come first so "ريال سعودي" wins over "ريال".
const currencyExpr = `(?:US\$|USD|SAR|EGP|AED|BHD|KWD|QAR|OMR|EUR|GBP|INR|Rs\.?|L\.E\.?|LE|SR|BD` +
	`|\$|€|£|₹` +
	`|ريال سعودي|ريال|ر\.\s?س|جنيه مصري|جنيه|ج\.\s?م|درهم إماراتي|درهم|د\.\s?إ|دينار بحريني|دينار|د\.\s?ب)`

// amountExpr matches a positive decimal with optional thousands separators.
// It has no capture group of its own.
const amountExpr = `\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`

var currencyAliases = map[string]string{
	"us$": "USD", "usd": "USD", "$": "USD",
	"sar": "SAR", "sr": "SAR", "ريال": "SAR", "ريالسعودي": "SAR", "رس": "SAR",
	"egp": "EGP", "le": "EGP", "جنيه": "EGP", "جنيهمصري": "EGP", "جم": "EGP",
	"aed": "AED", "درهم": "AED", "درهمإماراتي": "AED", "دإ": "AED",
	"bhd": "BHD", "bd": "BHD", "دينار": "BHD", "ديناربحريني": "BHD", "دب": "BHD",
	"kwd": "KWD", "qar": "QAR", "omr": "OMR",
	"eur": "EUR", "€": "EUR",
	"gbp": "GBP", "£": "GBP",
	"inr": "INR", "rs": "INR", "₹": "INR",
}

// resolveCurrency maps a matched currency token to its ISO code. An empty
// or unknown token yields "".
func resolveCurrency(token string) string {
	key := strings.ToLower(token)
	key = strings.NewReplacer(" ", "", ".", "").Replace(key)
	return currencyAliases[key]
}

// preferredCurrency picks the user's stored currency or the fixed fallback.
func preferredCurrency(rules RuleSource, fallback string) string {
	if rules != nil {
		if c := strings.ToUpper(strings.TrimSpace(rules.PreferredCurrency())); len(c) == 3 {
			return c
		}
	}
	return fallback
}
