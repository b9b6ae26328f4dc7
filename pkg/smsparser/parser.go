package smsparser

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultCategory is assigned when no rule or keyword classifies a message.
	DefaultCategory = "Miscellaneous"
	// DefaultCurrency applies when neither the message nor the user names one.
	DefaultCurrency = "SAR"
	// DefaultMaxMessageLength caps the runes examined per message (ten SMS segments).
	DefaultMaxMessageLength = 1600
)

var errPatternTooLong = errors.New("pattern exceeds maximum length")

// Options tunes a Parser. The zero value is usable.
type Options struct {
	DefaultCategory  string
	FallbackCurrency string
	MaxMessageLength int
	Now              func() time.Time
	Logger           *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.DefaultCategory == "" {
		o.DefaultCategory = DefaultCategory
	}
	if o.FallbackCurrency == "" {
		o.FallbackCurrency = DefaultCurrency
	}
	if o.MaxMessageLength <= 0 {
		o.MaxMessageLength = DefaultMaxMessageLength
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Parser extracts transactions from SMS text. It keeps no per-message state
// and is safe for concurrent use.
type Parser struct {
	rules   RuleSource
	opts    Options
	log     *zap.Logger
	regexes *regexCache
}

// New returns a Parser reading its rule tables from rules on every call.
// A nil rules behaves as empty tables.
func New(rules RuleSource, opts Options) *Parser {
	if rules == nil {
		rules = StaticRules{}
	}
	opts = opts.withDefaults()
	return &Parser{
		rules:   rules,
		opts:    opts,
		log:     opts.Logger,
		regexes: &regexCache{log: opts.Logger},
	}
}

// Parse converts one message into a transaction. It reports false when the
// message carries no recognizable amount, meaning it is not a transaction.
func (p *Parser) Parse(message, sender string) (*ParsedTransaction, bool) {
	return p.ParseAt(message, sender, p.opts.Now())
}

// ParseAt is Parse with an explicit receive time, used as the date when the
// message names none and as the year for dates written without one.
func (p *Parser) ParseAt(message, sender string, received time.Time) (*ParsedTransaction, bool) {
	normalized := Normalize(message)
	text := truncateRunes(normalized, p.opts.MaxMessageLength)

	found, ok := extractAmount(text)
	if !ok {
		p.log.Debug("no amount pattern matched", zap.String("sender", sender))
		return nil, false
	}

	txType := TypeIncome
	if found.expense {
		txType = TypeExpense
	}

	description := extractDescription(text, sender)
	verdict := p.classify(description, text, txType == TypeIncome, p.rules)

	var toAccount string
	if isTransfer(text) {
		txType = TypeTransfer
		toAccount = extractRecipient(text)
	}

	if rule := verdict.custom; rule != nil && rule.Type.Valid() {
		txType = rule.Type
	}

	amount := found.magnitude
	if txType == TypeExpense {
		amount = amount.Neg()
	}

	date, ok := extractDate(text, received)
	if !ok {
		date = received
	}

	currency := found.currency
	if currency == "" {
		currency = preferredCurrency(p.rules, p.opts.FallbackCurrency)
	}

	tx := &ParsedTransaction{
		Amount:      amount,
		Date:        date,
		Sender:      resolveBank(sender, text),
		Category:    verdict.category,
		Subcategory: verdict.subcategory,
		Description: description,
		RawMessage:  normalized,
		Currency:    currency,
		Country:     detectCountry(text),
		FromAccount: extractSourceAccount(text),
		ToAccount:   toAccount,
		RTL:         IsRTL(text),
		Type:        txType,
	}
	if tx.Category == "" {
		tx.Category = p.opts.DefaultCategory
	}

	p.log.Debug("parsed transaction",
		zap.String("rule", found.rule),
		zap.String("type", string(tx.Type)),
		zap.String("category", tx.Category),
		zap.String("currency", tx.Currency),
	)
	return tx, true
}
