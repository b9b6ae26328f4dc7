package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/sms-extractor/pkg/smsparser"
)

// Transaction represents a single financial transaction
type Transaction struct {
	ID          string                    `json:"id"`
	Date        time.Time                 `json:"date"`
	Description string                    `json:"description"`
	Amount      decimal.Decimal           `json:"amount"`
	Currency    string                    `json:"currency"`
	Category    string                    `json:"category"`
	Subcategory string                    `json:"subcategory,omitempty"`
	Type        smsparser.TransactionType `json:"type"`
	Source      string                    `json:"source"` // e.g., "Al Rajhi Bank", "CIB"
	FromAccount string                    `json:"from_account,omitempty"`
	ToAccount   string                    `json:"to_account,omitempty"`
	Country     string                    `json:"country,omitempty"`
	RawMessage  string                    `json:"raw_message"`
}

// FromParsed turns a parser result into a transaction with a fresh ID
func FromParsed(p *smsparser.ParsedTransaction) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		Date:        p.Date,
		Description: p.Description,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Type:        p.Type,
		Source:      p.Sender,
		FromAccount: p.FromAccount,
		ToAccount:   p.ToAccount,
		Country:     p.Country,
		RawMessage:  p.RawMessage,
	}
}

// TransactionList holds a collection of transactions
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Source       string        `json:"source"`
	ProcessedAt  time.Time     `json:"processed_at"`
}

// AddTransaction appends a transaction to the list
func (tl *TransactionList) AddTransaction(t Transaction) {
	tl.Transactions = append(tl.Transactions, t)
	tl.Total = len(tl.Transactions)
}

// GetByCategory returns all transactions matching the given category
func (tl *TransactionList) GetByCategory(category string) []Transaction {
	return tl.filter(func(t Transaction) bool { return t.Category == category })
}

// GetByType returns all transactions of the given type
func (tl *TransactionList) GetByType(txType smsparser.TransactionType) []Transaction {
	return tl.filter(func(t Transaction) bool { return t.Type == txType })
}

func (tl *TransactionList) filter(keep func(Transaction) bool) []Transaction {
	var filtered []Transaction
	for _, t := range tl.Transactions {
		if keep(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// Totals sums signed amounts per currency
func (tl *TransactionList) Totals() map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, t := range tl.Transactions {
		totals[t.Currency] = totals[t.Currency].Add(t.Amount)
	}
	return totals
}
