package smsparser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type dateOrder int

const (
	orderMDY dateOrder = iota
	orderDMY
	orderYMD
)

// datePattern captures day, month and year in the order given by order.
// Month may be numeric or a month name; year may be absent.
type datePattern struct {
	re    *regexp.Regexp
	order dateOrder
}

const (
	englishMonths = `jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec`
	arabicMonths  = `يناير|فبراير|مارس|أبريل|ابريل|مايو|يونيو|يوليو|أغسطس|اغسطس|سبتمبر|أكتوبر|اكتوبر|نوفمبر|ديسمبر`
)

var datePatterns = []datePattern{
	{regexp.MustCompile(`(?:^|[^\d/.\-])(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?(?:[^\d/]|$)`), orderMDY},
	{regexp.MustCompile(`(?:^|[^\d/.\-])(\d{1,2})[\-./](\d{1,2})[\-./](\d{2,4})(?:[^\d]|$)`), orderDMY},
	{regexp.MustCompile(`(?:^|[^\d])(\d{4})[\-./](\d{1,2})[\-./](\d{1,2})(?:[^\d]|$)`), orderYMD},
	{regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?[\s\-]+(` + englishMonths + `)[a-z]*\.?[\s,\-]+(\d{2,4})\b`), orderDMY},
	{regexp.MustCompile(`(?i)\b(` + englishMonths + `)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{2,4})\b`), orderMDY},
	{regexp.MustCompile(`(\d{1,2})\s+(` + arabicMonths + `)\s+(\d{4})`), orderDMY},
}

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
	"يناير": time.January, "فبراير": time.February, "مارس": time.March,
	"أبريل": time.April, "ابريل": time.April, "مايو": time.May, "يونيو": time.June,
	"يوليو": time.July, "أغسطس": time.August, "اغسطس": time.August, "سبتمبر": time.September,
	"أكتوبر": time.October, "اكتوبر": time.October, "نوفمبر": time.November, "ديسمبر": time.December,
}

// extractDate returns the first valid calendar date found in message. A
// pattern that matches an impossible date (month 13, 31 February) does not
// end the search. Dates without a year take the year of now.
func extractDate(message string, now time.Time) (time.Time, bool) {
	for _, p := range datePatterns {
		for _, m := range p.re.FindAllStringSubmatch(message, -1) {
			if t, ok := p.build(m[1], m[2], m[3], now); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func (p datePattern) build(a, b, c string, now time.Time) (time.Time, bool) {
	var dayStr, monthStr, yearStr string
	switch p.order {
	case orderMDY:
		monthStr, dayStr, yearStr = a, b, c
	case orderDMY:
		dayStr, monthStr, yearStr = a, b, c
	case orderYMD:
		yearStr, monthStr, dayStr = a, b, c
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}
	month, ok := parseMonth(monthStr)
	if !ok {
		return time.Time{}, false
	}
	year := now.Year()
	if yearStr != "" {
		if year, ok = expandYear(yearStr); !ok {
			return time.Time{}, false
		}
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

func parseMonth(s string) (time.Month, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	key := strings.ToLower(s)
	if m, ok := monthNames[key]; ok {
		return m, true
	}
	if len(key) >= 3 {
		m, ok := monthNames[key[:3]]
		return m, ok
	}
	return 0, false
}

// expandYear maps two-digit years below 50 to the 2000s and the rest to the 1900s.
func expandYear(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	switch len(s) {
	case 2:
		if n < 50 {
			return 2000 + n, true
		}
		return 1900 + n, true
	case 4:
		return n, true
	}
	return 0, false
}
