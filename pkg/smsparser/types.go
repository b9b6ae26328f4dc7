// Package smsparser turns bank SMS text into structured transaction candidates.
//
// A Parser runs a fixed pipeline over a single message: normalize the text,
// find an amount and currency, extract the description, classify the category,
// detect transfers, apply user overrides, then resolve date, bank and country.
// Everything except the amount is best-effort; a message without a
// recognizable amount is not a transaction.
package smsparser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the final classification of a parsed message.
type TransactionType string

const (
	TypeExpense  TransactionType = "expense"
	TypeIncome   TransactionType = "income"
	TypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeExpense, TypeIncome, TypeTransfer:
		return true
	}
	return false
}

// ParsedTransaction is the result of parsing one SMS message.
type ParsedTransaction struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Sender      string          `json:"sender"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Description string          `json:"description"`
	RawMessage  string          `json:"raw_message"`
	Currency    string          `json:"currency,omitempty"`
	Country     string          `json:"country,omitempty"`
	FromAccount string          `json:"from_account,omitempty"`
	ToAccount   string          `json:"to_account,omitempty"`
	RTL         bool            `json:"rtl,omitempty"`
	Type        TransactionType `json:"type,omitempty"`
}

// CategoryRule maps a substring or regular expression to a category.
// Rules are evaluated by descending Priority.
type CategoryRule struct {
	Pattern    string `mapstructure:"pattern" json:"pattern"`
	IsRegex    bool   `mapstructure:"is_regex" json:"is_regex"`
	CategoryID string `mapstructure:"category_id" json:"category_id"`
	Priority   int    `mapstructure:"priority" json:"priority"`
}

// CustomParsingRule is a user-authored override. Any keyword found in the
// message forces the rule's type, category and subcategory.
type CustomParsingRule struct {
	ID          string          `mapstructure:"id" json:"id"`
	Keywords    []string        `mapstructure:"keywords" json:"keywords"`
	Type        TransactionType `mapstructure:"type" json:"type"`
	Category    string          `mapstructure:"category" json:"category"`
	Subcategory string          `mapstructure:"subcategory" json:"subcategory,omitempty"`
}

// RuleSource supplies the read-only rule tables consulted on every parse.
// Implementations must be safe for concurrent reads.
type RuleSource interface {
	CustomRules() []CustomParsingRule
	CategoryRules() []CategoryRule
	Subcategories(category string) []string
	PreferredCurrency() string
}

// StaticRules is a RuleSource backed by in-memory tables.
type StaticRules struct {
	Custom     []CustomParsingRule
	Categories []CategoryRule
	// Hierarchy maps a category name to its subcategory names.
	Hierarchy map[string][]string
	Currency  string
}

func (s StaticRules) CustomRules() []CustomParsingRule { return s.Custom }

func (s StaticRules) CategoryRules() []CategoryRule { return s.Categories }

// Subcategories looks category up exactly, then case-insensitively, since
// config loaders commonly lowercase map keys.
func (s StaticRules) Subcategories(category string) []string {
	if subs, ok := s.Hierarchy[category]; ok {
		return subs
	}
	for name, subs := range s.Hierarchy {
		if strings.EqualFold(name, category) {
			return subs
		}
	}
	return nil
}

func (s StaticRules) PreferredCurrency() string { return s.Currency }
