package smsparser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountMatch is what the amount extractor hands back to the pipeline.
type amountMatch struct {
	rule      string
	magnitude decimal.Decimal
	currency  string // ISO code, "" when the message names none
	expense   bool
}

// amountRule pairs a detection pattern with its expense classifier.
// Patterns use the named groups "amount", "currency", "currency_after" and
// "verb"; only "amount" is required.
type amountRule struct {
	name      string
	re        *regexp.Regexp
	isExpense func(verb, message string) bool
}

var (
	incomeKeywords = []string{
		"received", "credited", "income", "salary", "payroll", "deposit", "deposited",
		"refund", "refunded", "dividend", "cashback", "cash back", "reversal", "reversed", "bonus",
		"إيداع", "ايداع", "راتب", "واردة", "وارده", "استلام", "مستلمة", "دائن", "مكافأة", "استرداد",
		"जमा", "वेतन", "प्राप्त",
	}
	expenseKeywords = []string{
		"debited", "purchase", "spent", "paid", "withdrawn", "withdrawal", "charged",
		"deducted", "payment", "pos ", "sent",
		"شراء", "خصم", "سحب", "دفع", "مدين", "سداد", "صادرة", "صادره",
		"डेबिट", "खर्च", "भुगतान",
	}
)

// keywordExpense classifies by whichever keyword class appears first in the
// message. Messages naming no income keyword are expenses.
func keywordExpense(_ string, message string) bool {
	lower := strings.ToLower(message)
	income := firstIndex(lower, incomeKeywords)
	if income < 0 {
		return true
	}
	expense := firstIndex(lower, expenseKeywords)
	return expense >= 0 && expense < income
}

var (
	incomeVerbs  = []string{"credited", "received", "deposit", "refund", "dividend", "إيداع", "ايداع", "واردة", "راتب", "استرداد"}
	expenseVerbs = []string{"debited", "purchase", "spent", "charged", "withdraw", "paid", "شراء", "خصم", "سحب", "دفع", "سداد", "صادرة"}
)

// verbExpense classifies by the captured action verb. "payment" is income
// whenever the message names an income keyword; other neutral verbs such as
// "transfer" defer to keyword order.
func verbExpense(verb, message string) bool {
	v := strings.ToLower(strings.TrimSpace(verb))
	switch {
	case containsAny(v, incomeVerbs):
		return false
	case containsAny(v, expenseVerbs):
		return true
	case v == "payment" && containsAny(strings.ToLower(message), incomeKeywords):
		return false
	}
	return keywordExpense(verb, message)
}

var amountRules = []amountRule{
	{
		// Saudi bank phrasing: "عملية شراء بمبلغ 175.50 ريال سعودي".
		name: "arabic-action-amount",
		re: regexp.MustCompile(`(?i)(?P<verb>شراء|خصم|سحب|دفع|سداد|إيداع|ايداع|حوالة واردة|حوالة صادرة|تحويل|راتب|استرداد)` +
			`[^\d]{0,40}?(?:بمبلغ|المبلغ|مبلغ)[:\s]*(?:(?P<currency>` + currencyExpr + `)\s*)?` +
			`(?P<amount>` + amountExpr + `)\s*(?P<currency_after>` + currencyExpr + `)?`),
		isExpense: verbExpense,
	},
	{
		name: "arabic-amount",
		re: regexp.MustCompile(`(?i)(?:بمبلغ|المبلغ|مبلغ)[:\s]*(?:(?P<currency>` + currencyExpr + `)\s*)?` +
			`(?P<amount>` + amountExpr + `)\s*(?P<currency_after>` + currencyExpr + `)?`),
		isExpense: keywordExpense,
	},
	{
		name: "account-credited-debited",
		re: regexp.MustCompile(`(?i)account(?: \S+)? has been (?P<verb>credited|debited) (?:with|by|for) ` +
			`(?P<currency>` + currencyExpr + `)?\s?(?P<amount>` + amountExpr + `)` +
			`(?:\s*(?P<currency_after>` + currencyExpr + `)(?:[^\p{L}]|$))?`),
		isExpense: verbExpense,
	},
	{
		// Indian bank phrasing: "Rs.1,250.00 debited from a/c".
		name: "inr-action",
		re: regexp.MustCompile(`(?i)(?P<currency>Rs\.?|INR|₹)\s?(?P<amount>` + amountExpr + `)` +
			`\s*(?:has been |is |was )?(?P<verb>debited|credited|spent|paid|received|withdrawn|deposited)`),
		isExpense: verbExpense,
	},
	{
		name: "action-of-amount",
		re: regexp.MustCompile(`(?i)\b(?P<verb>purchase|payment|spent|charged|withdrawal|transfer|deposit|refund|dividend)` +
			`(?: of| for)?\s+(?P<currency>` + currencyExpr + `)\s?(?P<amount>` + amountExpr + `)`),
		isExpense: verbExpense,
	},
	{
		name: "currency-before-amount",
		re: regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?P<currency>` + currencyExpr + `)\s?` +
			`(?P<amount>` + amountExpr + `)`),
		isExpense: keywordExpense,
	},
	{
		name: "amount-before-currency",
		re: regexp.MustCompile(`(?i)(?P<amount>` + amountExpr + `)\s?` +
			`(?P<currency_after>` + currencyExpr + `)(?:[^\p{L}]|$)`),
		isExpense: keywordExpense,
	},
}

// extractAmount runs the amount rules in order and returns the first usable
// match. A rule whose pattern matches but whose amount does not parse is
// skipped as if it had not matched. A zero amount ends the search: the
// message is a notice, and a later rule would only find a balance.
func extractAmount(message string) (amountMatch, bool) {
	for _, rule := range amountRules {
		m := rule.re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		magnitude, ok := parseAmount(group(rule.re, m, "amount"))
		if !ok {
			continue
		}
		if magnitude.IsZero() {
			return amountMatch{}, false
		}
		token := group(rule.re, m, "currency")
		if token == "" {
			token = group(rule.re, m, "currency_after")
		}
		return amountMatch{
			rule:      rule.name,
			magnitude: magnitude,
			currency:  resolveCurrency(token),
			expense:   rule.isExpense(group(rule.re, m, "verb"), message),
		}, true
	}
	return amountMatch{}, false
}

// parseAmount strips thousands separators and parses a non-negative decimal.
func parseAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

func group(re *regexp.Regexp, m []string, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || i >= len(m) {
		return ""
	}
	return m[i]
}

func firstIndex(text string, keywords []string) int {
	best := -1
	for _, k := range keywords {
		if i := strings.Index(text, k); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

func containsAny(text string, keywords []string) bool {
	return firstIndex(text, keywords) >= 0
}
