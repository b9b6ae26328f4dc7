package smsparser

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// maxRulePatternLength bounds stored regular expressions. Longer patterns
// are treated as malformed.
const maxRulePatternLength = 512

// builtinCategory is one row of the fallback keyword table.
type builtinCategory struct {
	name     string
	keywords []string
}

// builtinCategories is tested in order against the description.
var builtinCategories = []builtinCategory{
	{"Groceries", []string{
		"grocery", "groceries", "supermarket", "hypermarket", "market", "carrefour", "panda",
		"tamimi", "danube", "lulu", "othaim",
		"بقالة", "سوبرماركت", "سوبر ماركت", "هايبر", "تموينات", "العثيم",
		"किराना",
	}},
	{"Dining", []string{
		"restaurant", "cafe", "coffee", "food", "starbucks", "mcdonald", "kfc", "pizza", "burger",
		"talabat", "hungerstation", "jahez",
		"مطعم", "مقهى", "كافيه", "كوفي",
		"रेस्टोरेंट", "कैफे", "खाना",
	}},
	{"Transport", []string{
		"uber", "lyft", "careem", "taxi", "transport", "metro", "bus", "fuel", "petrol", "aldrees",
		"parking",
		"أوبر", "كريم", "تاكسي", "وقود", "بنزين",
		"टैक्सी", "बस",
	}},
	{"Entertainment", []string{
		"netflix", "spotify", "movie", "cinema", "entertainment", "shahid", "playstation", "steam",
		"سينما", "نتفليكس", "ترفيه",
		"फिल्म", "मनोरंजन",
	}},
	{"Healthcare", []string{
		"doctor", "pharmacy", "hospital", "medical", "clinic", "nahdi", "dawaa",
		"صيدلية", "مستشفى", "عيادة",
		"दवा", "अस्पताल", "डॉक्टर",
	}},
	{"Shopping", []string{
		"amazon", "noon", "store", "shop", "mall", "jarir", "extra", "ikea", "zara", "shein",
		"متجر", "تسوق",
		"खरीदारी", "दुकान",
	}},
	{"Bills", []string{
		"bill", "electricity", "water", "internet", "stc", "mobily", "zain", "etisalat", "vodafone",
		"فاتورة", "كهرباء", "مياه", "اتصالات",
		"बिल", "बिजली",
	}},
	{"Travel", []string{
		"airline", "airlines", "flight", "hotel", "booking", "airbnb", "saudia", "flynas", "flyadeal",
		"طيران", "فندق", "حجز",
		"यात्रा", "होटल",
	}},
}

// subcategoryHeuristic assigns a subcategory when one of its keywords appears.
type subcategoryHeuristic struct {
	subcategory string
	keywords    []string
}

// subcategoryHeuristics is keyed by category family, see categoryFamily.
var subcategoryHeuristics = map[string][]subcategoryHeuristic{
	"shopping": {
		{"Grocery", []string{"grocery", "supermarket", "market", "بقالة", "سوبرماركت"}},
		{"Clothing", []string{"clothes", "clothing", "fashion", "apparel", "zara", "h&m", "shein", "ملابس", "أزياء"}},
		{"Appliances", []string{"appliance", "appliances", "electronics", "extra", "jarir", "أجهزة", "الكترونيات"}},
	},
	"car": {
		{"Gas", []string{"fuel", "gas", "petrol", "aldrees", "بنزين", "وقود"}},
		{"Maintenance", []string{"maintenance", "service", "repair", "tire", "tyre", "صيانة"}},
	},
	"health": {
		{"Hospital", []string{"hospital", "مستشفى"}},
		{"Pharmacy", []string{"pharmacy", "nahdi", "dawaa", "صيدلية"}},
		{"Gym", []string{"gym", "fitness", "نادي رياضي"}},
	},
	"salary": {
		{"Bonus", []string{"bonus", "مكافأة"}},
		{"Benefit", []string{"benefit", "allowance", "بدل"}},
	},
}

func categoryFamily(category string) string {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "shopping"):
		return "shopping"
	case c == "car" || strings.Contains(c, "transport") || strings.Contains(c, "vehicle"):
		return "car"
	case strings.Contains(c, "health"):
		return "health"
	case strings.Contains(c, "salary") || strings.Contains(c, "income") || strings.Contains(c, "earning"):
		return "salary"
	}
	return ""
}

// classification is the category classifier's verdict.
type classification struct {
	category    string
	subcategory string
	custom      *CustomParsingRule
}

// matchCustomRule returns the first rule with a keyword contained in message.
// Keywords are plain case-insensitive substrings, never regular expressions.
func matchCustomRule(rules []CustomParsingRule, message string) *CustomParsingRule {
	lower := strings.ToLower(message)
	for i := range rules {
		for _, k := range rules[i].Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" && strings.Contains(lower, k) {
				return &rules[i]
			}
		}
	}
	return nil
}

// sortedByPriority returns rules ordered by descending priority. Rules with
// equal priority keep their stored order. The input slice is not modified.
func sortedByPriority(rules []CategoryRule) []CategoryRule {
	out := make([]CategoryRule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// classify resolves category and subcategory for one message.
func (p *Parser) classify(description, message string, positive bool, rules RuleSource) classification {
	if rule := matchCustomRule(rules.CustomRules(), message); rule != nil {
		return classification{category: rule.Category, subcategory: rule.Subcategory, custom: rule}
	}

	text := description + " " + message
	category := p.matchCategoryRules(rules.CategoryRules(), text)
	if category == "" {
		category = fallbackCategory(description, positive, p.opts.DefaultCategory)
	}
	return classification{
		category:    category,
		subcategory: refineSubcategory(category, text, rules.Subcategories(category)),
	}
}

func (p *Parser) matchCategoryRules(rules []CategoryRule, text string) string {
	lower := strings.ToLower(text)
	for _, r := range sortedByPriority(rules) {
		if r.Pattern == "" || r.CategoryID == "" {
			continue
		}
		if !r.IsRegex {
			if strings.Contains(lower, strings.ToLower(r.Pattern)) {
				return r.CategoryID
			}
			continue
		}
		re := p.regexes.get(r.Pattern)
		if re != nil && re.MatchString(text) {
			return r.CategoryID
		}
	}
	return ""
}

func fallbackCategory(description string, positive bool, fallback string) string {
	if positive {
		return "Income"
	}
	lower := strings.ToLower(description)
	for _, c := range builtinCategories {
		for _, k := range c.keywords {
			if containsWord(lower, k) {
				return c.name
			}
		}
	}
	return fallback
}

// refineSubcategory picks a known subcategory named in text, then falls back
// to the per-family heuristics. It returns "" when nothing fits.
func refineSubcategory(category, text string, known []string) string {
	lower := strings.ToLower(text)
	for _, sub := range known {
		for _, v := range subcategoryVariants(sub) {
			if containsWord(lower, v) {
				return sub
			}
		}
	}
	for _, h := range subcategoryHeuristics[categoryFamily(category)] {
		for _, k := range h.keywords {
			if containsWord(lower, k) {
				return h.subcategory
			}
		}
	}
	return ""
}

// subcategoryVariants lists the spellings accepted for a subcategory name:
// the name itself, its singular, "&" spelled out, and without spaces.
func subcategoryVariants(name string) []string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return nil
	}
	variants := []string{n}
	if len(n) > 4 {
		switch {
		case strings.HasSuffix(n, "ies"):
			variants = append(variants, strings.TrimSuffix(n, "ies")+"y")
		case strings.HasSuffix(n, "es"):
			variants = append(variants, strings.TrimSuffix(n, "es"), strings.TrimSuffix(n, "s"))
		case strings.HasSuffix(n, "s"):
			variants = append(variants, strings.TrimSuffix(n, "s"))
		}
	}
	if strings.Contains(n, "&") {
		variants = append(variants, strings.ReplaceAll(n, "&", "and"))
	}
	if strings.Contains(n, " ") {
		variants = append(variants, strings.ReplaceAll(n, " ", ""))
	}
	return variants
}

// regexCache holds compiled stored-rule patterns. Invalid patterns are kept
// as nil entries so they are reported once and skipped afterwards.
type regexCache struct {
	entries sync.Map // pattern -> *regexp.Regexp (nil when invalid)
	log     *zap.Logger
}

func (c *regexCache) get(pattern string) *regexp.Regexp {
	if v, ok := c.entries.Load(pattern); ok {
		return v.(*regexp.Regexp)
	}
	var re *regexp.Regexp
	var err error
	if len(pattern) > maxRulePatternLength {
		err = errPatternTooLong
	} else {
		re, err = regexp.Compile("(?i)" + pattern)
	}
	if v, loaded := c.entries.LoadOrStore(pattern, re); loaded {
		return v.(*regexp.Regexp)
	}
	if err != nil {
		c.log.Warn("skipping malformed category rule", zap.String("pattern", pattern), zap.Error(err))
	}
	return re
}
