package smsparser

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultInstitution is the sender label used when no bank can be inferred.
const DefaultInstitution = "Financial Institution"

type bankPattern struct {
	name string
	re   *regexp.Regexp
}

// bankPatterns is scanned in order; the first hit names the institution.
var bankPatterns = []bankPattern{
	// Gulf
	{"Al Rajhi Bank", regexp.MustCompile(`(?i)al[\s-]?rajhi|الراجحي`)},
	{"Saudi National Bank", regexp.MustCompile(`(?i)\bSNB\b|saudi national bank|البنك الأهلي|الأهلي السعودي`)},
	{"Riyad Bank", regexp.MustCompile(`(?i)riyad\s?bank|بنك الرياض`)},
	{"SABB", regexp.MustCompile(`(?i)\bSABB\b|البنك السعودي البريطاني`)},
	{"Alinma Bank", regexp.MustCompile(`(?i)alinma|الإنماء|الانماء`)},
	{"Banque Saudi Fransi", regexp.MustCompile(`(?i)saudi fransi|\bBSF\b|الفرنسي`)},
	{"Emirates NBD", regexp.MustCompile(`(?i)emirates\s?nbd|الإمارات دبي الوطني`)},
	{"First Abu Dhabi Bank", regexp.MustCompile(`(?i)\bFAB\b|first abu dhabi`)},
	{"ADCB", regexp.MustCompile(`(?i)\bADCB\b|abu dhabi commercial`)},
	{"Mashreq", regexp.MustCompile(`(?i)mashreq|المشرق`)},
	{"National Bank of Bahrain", regexp.MustCompile(`(?i)\bNBB\b|national bank of bahrain`)},
	{"Bank of Bahrain and Kuwait", regexp.MustCompile(`(?i)\bBBK\b|bank of bahrain and kuwait`)},
	// Egypt
	{"Banque Misr", regexp.MustCompile(`(?i)banque\s?misr|بنك مصر`)},
	{"CIB", regexp.MustCompile(`(?i)\bCIB\b|commercial international bank|التجاري الدولي`)},
	{"National Bank of Egypt", regexp.MustCompile(`(?i)\bNBE\b|national bank of egypt|البنك الأهلي المصري`)},
	{"QNB", regexp.MustCompile(`(?i)\bQNB\b|qatar national bank`)},
	// India
	{"HDFC Bank", regexp.MustCompile(`(?i)\bHDFC\b`)},
	{"ICICI Bank", regexp.MustCompile(`(?i)\bICICI\b`)},
	{"State Bank of India", regexp.MustCompile(`(?i)\bSBI\b|state bank of india`)},
	{"Axis Bank", regexp.MustCompile(`(?i)\baxis\s?bank\b`)},
	{"Kotak Mahindra Bank", regexp.MustCompile(`(?i)\bkotak\b`)},
	// International
	{"HSBC", regexp.MustCompile(`(?i)\bHSBC\b`)},
	{"Citibank", regexp.MustCompile(`(?i)\bciti(?:bank)?\b`)},
	{"Chase", regexp.MustCompile(`(?i)\bchase\b`)},
	{"Barclays", regexp.MustCompile(`(?i)\bbarclays\b`)},
	// Wallets and payment platforms
	{"STC Pay", regexp.MustCompile(`(?i)stc\s?pay`)},
	{"Vodafone Cash", regexp.MustCompile(`(?i)vodafone\s?cash|فودافون كاش`)},
	{"InstaPay", regexp.MustCompile(`(?i)instapay|انستاباي`)},
	{"Paytm", regexp.MustCompile(`(?i)\bpaytm\b`)},
	{"PhonePe", regexp.MustCompile(`(?i)\bphonepe\b`)},
	{"Google Pay", regexp.MustCompile(`(?i)google\s?pay|\bgpay\b`)},
	{"Apple Pay", regexp.MustCompile(`(?i)apple\s?pay`)},
	{"PayPal", regexp.MustCompile(`(?i)\bpaypal\b`)},
}

var senderPrefix = regexp.MustCompile(`(?i)^\s*(?:sms\s+from|from)[:\s]*`)

// resolveBank returns the sender when it is a name, otherwise the first bank
// named in the message body.
func resolveBank(sender, message string) string {
	name := strings.TrimSpace(senderPrefix.ReplaceAllString(sender, ""))
	if name != "" && !isNumeric(name) {
		return name
	}
	for _, b := range bankPatterns {
		if b.re.MatchString(message) {
			return b.name
		}
	}
	return DefaultInstitution
}

// isNumeric reports whether s is a phone number or short code.
func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '+' && r != '-' && r != ' ' {
			return false
		}
	}
	return true
}

const descriptionLimit = 50

var descriptionPatterns = []*regexp.Regexp{
	// "at GROCERY STORE on 05/01", "from ACME PAYROLL."
	regexp.MustCompile(`(?i)\b(?:at|from|to|in)\s+([A-Za-z0-9][A-Za-z0-9 &.'*_-]*?)(?:\s+on\b|\s+ref\b|\s+via\b|\s+using\b|\s+with\b|\.\s|[,;:]|\.?$)`),
	regexp.MustCompile(`(?i)\bref(?:erence)?(?:\s+no\.?)?[:\s#.]+([A-Za-z0-9]+)`),
	regexp.MustCompile(`(?i)\bfor\s+([A-Za-z][A-Za-z0-9 &'-]*?)(?:\s+on\b|\s+at\b|\.\s|[,;]|\.?$)`),
	// Arabic prepositions: "لدى", "في", "عند", "من".
	regexp.MustCompile(`(?:^|\s)(?:لدى|في|عند|من)\s+(.+?)(?:\s+بتاريخ|\s+بمبلغ|\s+مبلغ|\s+في\s|\s+رصيد|\s+الرصيد|\s+بطاقة|\s+\d|[.,;]|$)`),
	regexp.MustCompile(`(?i)\b(online purchase|pos purchase|atm withdrawal|cash withdrawal|bill payment|card payment|e-commerce purchase)\b`),
}

// extractDescription returns the merchant or purpose excerpt of message,
// falling back to the sender and then to a truncated prefix of the text.
func extractDescription(message, sender string) string {
	for i, re := range descriptionPatterns {
		for _, m := range re.FindAllStringSubmatch(message, -1) {
			v := strings.TrimSpace(m[1])
			if v == "" || isPossessive(v) {
				continue
			}
			if i == 1 {
				return "Reference: " + v
			}
			return v
		}
	}
	if s := strings.TrimSpace(sender); s != "" && !isNumeric(s) {
		return s
	}
	if short := truncateRunes(message, descriptionLimit); short != message {
		return short + "..."
	}
	return message
}

// isPossessive reports captures such as "your account" that name the
// customer's own account rather than a merchant.
func isPossessive(v string) bool {
	lower := strings.ToLower(v)
	return lower == "your" || strings.HasPrefix(lower, "your ") || strings.HasPrefix(lower, "you ")
}

var transferKeywords = []string{
	"transfer", "transfers", "transferred", "sent to", "wire", "wired", "remittance", "remittances",
	"remitted", "iban",
	"حوالة", "حواله", "تحويل", "حولت", "ارسال", "إرسال",
	"स्थानांतरण", "ट्रांसफर",
}

// isTransfer reports whether message uses transfer vocabulary.
func isTransfer(message string) bool {
	lower := strings.ToLower(message)
	for _, k := range transferKeywords {
		if containsWord(lower, k) {
			return true
		}
	}
	return false
}

var recipientPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:sent to|transferred to|transfer to|wired to|paid to|recipient[:\s]+|beneficiary[:\s]+)\s*([A-Za-z0-9][A-Za-z0-9 .'*-]*?)(?:\s+on\b|\s+ref\b|\s+from\b|\.\s|[,;]|\.?$)`),
	regexp.MustCompile(`(?i)\b(?:to)\s+(?:a/c|acct|account|iban)\s*(?:no\.?)?[:\s#]*([A-Za-z0-9*xX]{4,})`),
	regexp.MustCompile(`(?:إلى|الى|للمستفيد|المستفيد)[:\s]+(.+?)(?:\s+بتاريخ|\s+في\s|\s+رصيد|[.,،;]|$)`),
	regexp.MustCompile(`(?i)\b(?:a/c|acct|account|iban)\s*(?:no\.?)?[:\s#]*([*xX]*\d{4,})`),
}

// extractRecipient returns the destination of a transfer, or "" when none
// is named.
func extractRecipient(message string) string {
	for _, re := range recipientPatterns {
		if m := re.FindStringSubmatch(message); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

var accountPattern = regexp.MustCompile(`(?i)(?:card|a/c|acct|account|بطاقة|حساب)\s*(?:no\.?|number|ending(?: with| in)?|رقم)?[:\s#]*([*xX]+\d{3,6}|\d{4})\b`)

// extractSourceAccount returns the masked card or account the money moved from.
func extractSourceAccount(message string) string {
	if m := accountPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return ""
}

type countryCue struct {
	country  string
	keywords []string
}

var countryCues = []countryCue{
	{"Saudi Arabia", []string{"sar", "ريال سعودي", "ر.س", "السعودية", "saudi", "riyal", "ريال", "mada"}},
	{"Egypt", []string{"egp", "جنيه", "ج.م", "مصر", "egypt", "l.e"}},
	{"UAE", []string{"aed", "درهم", "الإمارات", "emirates", "dirham", "uae", "dubai", "دبي"}},
	{"Bahrain", []string{"bhd", "دينار بحريني", "البحرين", "bahrain", "dinar"}},
}

// detectCountry returns the first country whose cues appear in message.
func detectCountry(message string) string {
	lower := strings.ToLower(message)
	for _, c := range countryCues {
		for _, k := range c.keywords {
			if containsWord(lower, k) {
				return c.country
			}
		}
	}
	return ""
}

// containsWord is a substring test that, for ASCII keywords, refuses matches
// embedded in a longer word ("sar" in "necessary"). Adjacent digits are allowed.
func containsWord(text, keyword string) bool {
	if !isASCII(keyword) {
		return strings.Contains(text, keyword)
	}
	for start := 0; ; {
		i := strings.Index(text[start:], keyword)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(keyword)
		if (i == 0 || !isLetterByte(text[i-1])) && (end == len(text) || !isLetterByte(text[end])) {
			return true
		}
		start = i + 1
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// isLetterByte treats digits as boundaries so currency cues glued to an
// amount ("SAR45") still count.
func isLetterByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
