package smsparser

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestParser(rules RuleSource) *Parser {
	return New(rules, Options{Now: fixedClock})
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "amount: want %s, got %s", want, got)
}

func TestParse_DebitedGroceryPurchase(t *testing.T) {
	p := newTestParser(nil)

	tx, ok := p.Parse("Your account has been debited with $125.40 for purchase at GROCERY STORE on 05/01.", "Bank ABC")
	require.True(t, ok)

	requireAmount(t, "-125.40", tx.Amount)
	assert.Equal(t, "USD", tx.Currency)
	assert.Equal(t, TypeExpense, tx.Type)
	assert.Equal(t, "Groceries", tx.Category)
	assert.Equal(t, "Bank ABC", tx.Sender)
	assert.Equal(t, "GROCERY STORE", tx.Description)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.False(t, tx.RTL)
}

func TestParse_ArabicSaudiPurchase(t *testing.T) {
	p := newTestParser(nil)

	tx, ok := p.Parse("عملية شراء بمبلغ 175.50 ريال سعودي في سوبرماركت العثيم بتاريخ 07/05/2023", "Al Rajhi Bank")
	require.True(t, ok)

	requireAmount(t, "-175.50", tx.Amount)
	assert.Equal(t, "SAR", tx.Currency)
	assert.Equal(t, "Saudi Arabia", tx.Country)
	assert.True(t, tx.RTL)
	assert.Equal(t, TypeExpense, tx.Type)
	assert.Equal(t, "سوبرماركت العثيم", tx.Description)
	assert.Equal(t, "Groceries", tx.Category)
	assert.Equal(t, "Al Rajhi Bank", tx.Sender)
	assert.Equal(t, 2023, tx.Date.Year())
}

func TestParse_Transfer(t *testing.T) {
	p := newTestParser(nil)

	tx, ok := p.Parse("SAR 500.00 sent to Ahmed account 12345 on 12/03/2024", "STC Pay")
	require.True(t, ok)

	assert.Equal(t, TypeTransfer, tx.Type)
	assert.Equal(t, "Ahmed account 12345", tx.ToAccount)
	requireAmount(t, "500.00", tx.Amount)
	assert.Equal(t, "SAR", tx.Currency)
}

func TestParse_NoAmountIsNotATransaction(t *testing.T) {
	p := newTestParser(nil)

	for _, msg := range []string{"Your OTP is 4821", "", "Hello, see you at 5"} {
		tx, ok := p.Parse(msg, "12345")
		assert.False(t, ok, msg)
		assert.Nil(t, tx, msg)
	}
}

func TestParse_CustomRuleOverridesClassification(t *testing.T) {
	rules := StaticRules{
		Custom: []CustomParsingRule{{
			ID:          "netflix",
			Keywords:    []string{"netflix"},
			Type:        TypeExpense,
			Category:    "Entertainment",
			Subcategory: "Streaming",
		}},
		Categories: []CategoryRule{{Pattern: "netflix", CategoryID: "Subscriptions", Priority: 100}},
	}
	p := newTestParser(rules)

	tx, ok := p.Parse("NETFLIX.COM charged SAR 45", "SNB")
	require.True(t, ok)

	assert.Equal(t, "Entertainment", tx.Category)
	assert.Equal(t, "Streaming", tx.Subcategory)
	assert.Equal(t, TypeExpense, tx.Type)
	requireAmount(t, "-45", tx.Amount)
	assert.Equal(t, "SAR", tx.Currency)
}

func TestParse_CustomRuleTypeReappliesSign(t *testing.T) {
	tests := []struct {
		name    string
		message string
		rule    CustomParsingRule
		amount  string
	}{
		{
			name:    "expense message forced to income",
			message: "Purchase of SAR 80.00 at JARIR. Refund expected",
			rule:    CustomParsingRule{Keywords: []string{"jarir"}, Type: TypeIncome, Category: "Refunds"},
			amount:  "80.00",
		},
		{
			name:    "transfer forced to expense",
			message: "Transfer of SAR 1,200.00 to LANDLORD completed",
			rule:    CustomParsingRule{Keywords: []string{"landlord"}, Type: TypeExpense, Category: "Housing", Subcategory: "Rent"},
			amount:  "-1200.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(StaticRules{Custom: []CustomParsingRule{tt.rule}})
			tx, ok := p.Parse(tt.message, "Bank")
			require.True(t, ok)
			assert.Equal(t, tt.rule.Type, tx.Type)
			assert.Equal(t, tt.rule.Category, tx.Category)
			assert.Equal(t, tt.rule.Subcategory, tx.Subcategory)
			requireAmount(t, tt.amount, tx.Amount)
		})
	}
}

func TestParse_CategoryRulePriority(t *testing.T) {
	rules := StaticRules{Categories: []CategoryRule{
		{Pattern: "amazon", CategoryID: "Online", Priority: 1},
		{Pattern: `amazon\.com`, IsRegex: true, CategoryID: "Shopping", Priority: 10},
	}}
	p := newTestParser(rules)

	tx, ok := p.Parse("Purchase of $75.20 at AMAZON.COM on 05/02. Available balance: $3,240.60", "Credit Card XYZ")
	require.True(t, ok)

	assert.Equal(t, "Shopping", tx.Category)
	requireAmount(t, "-75.20", tx.Amount)
	assert.Equal(t, "AMAZON.COM", tx.Description)
}

func TestParse_MalformedRegexRuleIsSkippedAndLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rules := StaticRules{Categories: []CategoryRule{
		{Pattern: "([", IsRegex: true, CategoryID: "Broken", Priority: 100},
		{Pattern: "amazon", CategoryID: "Online", Priority: 1},
	}}
	p := New(rules, Options{Now: fixedClock, Logger: zap.New(core)})

	for i := 0; i < 3; i++ {
		tx, ok := p.Parse("Purchase of $75.20 at AMAZON.COM on 05/02.", "Card")
		require.True(t, ok)
		assert.Equal(t, "Online", tx.Category)
	}

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "skipping malformed category rule", entry.Message)
	assert.Equal(t, "([", entry.ContextMap()["pattern"])
}

func TestParse_OverlongRegexRuleIsSkipped(t *testing.T) {
	long := make([]byte, maxRulePatternLength+1)
	for i := range long {
		long[i] = 'a'
	}
	rules := StaticRules{Categories: []CategoryRule{
		{Pattern: string(long), IsRegex: true, CategoryID: "Broken", Priority: 5},
	}}
	p := newTestParser(rules)

	tx, ok := p.Parse("Purchase of SAR 20.00 at "+string(long), "Bank")
	require.True(t, ok)
	assert.NotEqual(t, "Broken", tx.Category)
}

func TestParse_CurrencyFallback(t *testing.T) {
	msg := "Your account has been credited with 2,500.00 from ACME PAYROLL on 05/03."

	tests := []struct {
		name  string
		rules RuleSource
		want  string
	}{
		{"user preference", StaticRules{Currency: "EGP"}, "EGP"},
		{"lowercase preference", StaticRules{Currency: "usd"}, "USD"},
		{"no preference", StaticRules{}, DefaultCurrency},
		{"invalid preference", StaticRules{Currency: "dollars"}, DefaultCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, ok := newTestParser(tt.rules).Parse(msg, "Bank ABC")
			require.True(t, ok)
			assert.Equal(t, tt.want, tx.Currency)
			assert.Equal(t, TypeIncome, tx.Type)
			assert.Equal(t, "Income", tx.Category)
			assert.Equal(t, "ACME PAYROLL", tx.Description)
			requireAmount(t, "2500", tx.Amount)
		})
	}

	t.Run("trailing currency code beats preference", func(t *testing.T) {
		tx, ok := newTestParser(StaticRules{Currency: "USD"}).
			Parse("Your account has been debited with 125.40 SAR at PANDA on 05/01.", "Bank ABC")
		require.True(t, ok)
		assert.Equal(t, "SAR", tx.Currency)
		assert.Equal(t, TypeExpense, tx.Type)
		requireAmount(t, "-125.40", tx.Amount)
	})
}

func TestParse_PaymentReceivedIsIncome(t *testing.T) {
	p := newTestParser(nil)

	tx, ok := p.Parse("Payment of SAR 500.00 received from AHMED", "Bank")
	require.True(t, ok)
	assert.Equal(t, TypeIncome, tx.Type)
	assert.Equal(t, "Income", tx.Category)
	requireAmount(t, "500.00", tx.Amount)

	tx, ok = p.Parse("Payment of SAR 200.00 at MOBILY", "Bank")
	require.True(t, ok)
	assert.Equal(t, TypeExpense, tx.Type)
	requireAmount(t, "-200.00", tx.Amount)
}

func TestParse_ZeroAmountIsNotATransaction(t *testing.T) {
	tx, ok := newTestParser(nil).Parse("SAR 0.00 charged. Balance 500 SAR", "Bank")
	assert.False(t, ok)
	assert.Nil(t, tx)
}

func TestParse_PluralTransferVocabulary(t *testing.T) {
	p := newTestParser(nil)

	for _, msg := range []string{"Transfers of SAR 100 completed", "SAR 100 wired to AHMED"} {
		tx, ok := p.Parse(msg, "Bank")
		require.True(t, ok, msg)
		assert.Equal(t, TypeTransfer, tx.Type, msg)
		requireAmount(t, "100", tx.Amount)
	}
}

func TestParse_DescriptionSkipsOwnAccount(t *testing.T) {
	tx, ok := newTestParser(nil).Parse("Dividend of $37.50 has been credited to your account on 05/04.", "Investment Corp")
	require.True(t, ok)
	assert.Equal(t, "Investment Corp", tx.Description)
	assert.Equal(t, TypeIncome, tx.Type)
}

func TestParse_SenderResolution(t *testing.T) {
	p := newTestParser(nil)

	tx, ok := p.Parse("Al Rajhi: Purchase of SAR 45.00 at PANDA", "+966500000000")
	require.True(t, ok)
	assert.Equal(t, "Al Rajhi Bank", tx.Sender)

	tx, ok = p.Parse("Purchase of SAR 45.00 at PANDA", "90001")
	require.True(t, ok)
	assert.Equal(t, DefaultInstitution, tx.Sender)

	tx, ok = p.Parse("Rs.1,250.00 debited from A/c XX1234", "SMS from HDFC")
	require.True(t, ok)
	assert.Equal(t, "HDFC", tx.Sender)
	assert.Equal(t, "INR", tx.Currency)
	assert.Equal(t, "XX1234", tx.FromAccount)
}

func TestParse_LocalizedDigits(t *testing.T) {
	p := newTestParser(nil)

	tx, ok := p.Parse("شراء بمبلغ ١٢٥٫٥٠ ريال لدى صيدلية النهدي", "SABB")
	require.True(t, ok)

	requireAmount(t, "-125.50", tx.Amount)
	assert.Equal(t, "شراء بمبلغ 125.50 ريال لدى صيدلية النهدي", tx.RawMessage)
	assert.Equal(t, "Healthcare", tx.Category)
	assert.Equal(t, "Pharmacy", tx.Subcategory)
}

func TestParse_SubcategoryFromHierarchy(t *testing.T) {
	rules := StaticRules{
		Categories: []CategoryRule{{Pattern: "zara", CategoryID: "Shopping", Priority: 1}},
		Hierarchy:  map[string][]string{"Shopping": {"Electronics", "Clothes"}},
	}
	p := newTestParser(rules)

	tx, ok := p.Parse("Purchase of SAR 300.00 at ZARA clothes", "Bank")
	require.True(t, ok)
	assert.Equal(t, "Shopping", tx.Category)
	assert.Equal(t, "Clothes", tx.Subcategory)

	tx, ok = p.Parse("Purchase of SAR 300.00 at ZARA outlet", "Bank")
	require.True(t, ok)
	assert.Equal(t, "Clothing", tx.Subcategory)
}

func TestParse_DateFallsBackToNow(t *testing.T) {
	tx, ok := newTestParser(nil).Parse("Purchase of SAR 45.00 at PANDA", "Bank")
	require.True(t, ok)
	assert.Equal(t, testNow, tx.Date)
}

func TestParse_DefaultCategory(t *testing.T) {
	p := New(nil, Options{Now: fixedClock, DefaultCategory: "Uncategorized"})

	tx, ok := p.Parse("Purchase of SAR 45.00 at XYZ TRADING", "Bank")
	require.True(t, ok)
	assert.Equal(t, "Uncategorized", tx.Category)

	tx, ok = newTestParser(nil).Parse("Purchase of SAR 45.00 at XYZ TRADING", "Bank")
	require.True(t, ok)
	assert.Equal(t, DefaultCategory, tx.Category)
}

func TestParse_MessageLengthCap(t *testing.T) {
	p := New(nil, Options{Now: fixedClock, MaxMessageLength: 20})

	_, ok := p.Parse("Dear customer, thank you. Purchase of SAR 45.00 at PANDA", "Bank")
	assert.False(t, ok)

	_, ok = p.Parse("SAR 45.00 at PANDA", "Bank")
	assert.True(t, ok)
}

var invariantMessages = []struct{ message, sender string }{
	{"Your account has been debited with $125.40 for purchase at GROCERY STORE on 05/01.", "Bank ABC"},
	{"Purchase of $75.20 at AMAZON.COM on 05/02. Available balance: $3,240.60", "Credit Card XYZ"},
	{"Your account has been credited with $2,500.00 from ACME PAYROLL on 05/03.", "Bank ABC"},
	{"Dividend of $37.50 has been credited to your account on 05/04.", "Investment Corp"},
	{"عملية شراء بمبلغ 175.50 ريال سعودي في سوبرماركت العثيم بتاريخ 07/05/2023", "Al Rajhi Bank"},
	{"تم إيداع راتب بمبلغ 12,000.00 ريال في حسابك", "الراجحي"},
	{"حوالة واردة بمبلغ 300 ريال من خالد", "Alinma"},
	{"SAR 500.00 sent to Ahmed account 12345 on 12/03/2024", "STC Pay"},
	{"INR 2,000 credited to your account by NEFT", "SBI"},
	{"Rs.1,250.00 debited from A/c XX1234 on 12-03-24", "HDFC"},
	{"EGP 150.00 charged at CARREFOUR MAADI", "CIB"},
	{"AED 1,000 transferred to IBAN AE070331234567890123456", "Emirates NBD"},
}

func TestParse_SignInvariant(t *testing.T) {
	p := newTestParser(nil)

	for _, m := range invariantMessages {
		tx, ok := p.Parse(m.message, m.sender)
		require.True(t, ok, m.message)
		if tx.Type == TypeExpense {
			assert.True(t, tx.Amount.IsNegative(), m.message)
		} else {
			assert.True(t, tx.Amount.IsPositive(), m.message)
		}
		assert.NotEmpty(t, tx.Category, m.message)
		assert.NotEmpty(t, tx.Currency, m.message)
	}
}

func TestParse_Idempotent(t *testing.T) {
	p := newTestParser(StaticRules{
		Categories: []CategoryRule{{Pattern: "panda|danube", IsRegex: true, CategoryID: "Groceries", Priority: 3}},
	})

	for _, m := range invariantMessages {
		first, ok1 := p.Parse(m.message, m.sender)
		second, ok2 := p.Parse(m.message, m.sender)
		require.Equal(t, ok1, ok2)
		assert.Equal(t, first, second, m.message)
	}
}

func TestParse_ConcurrentCallsAgree(t *testing.T) {
	p := newTestParser(StaticRules{
		Categories: []CategoryRule{{Pattern: "amazon|noon", IsRegex: true, CategoryID: "Shopping", Priority: 3}},
	})

	want := make([]*ParsedTransaction, len(invariantMessages))
	for i, m := range invariantMessages {
		want[i], _ = p.Parse(m.message, m.sender)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, m := range invariantMessages {
				got, _ := p.Parse(m.message, m.sender)
				assert.Equal(t, want[i], got)
			}
		}()
	}
	wg.Wait()
}

func TestParseAt_UsesReceiveTime(t *testing.T) {
	p := newTestParser(nil)
	received := time.Date(2023, time.December, 31, 23, 59, 0, 0, time.UTC)

	tx, ok := p.ParseAt("Purchase of SAR 45.00 at PANDA", "Bank", received)
	require.True(t, ok)
	assert.Equal(t, received, tx.Date)

	tx, ok = p.ParseAt("Purchase of SAR 45.00 at PANDA on 05/02", "Bank", received)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, time.May, 2, 0, 0, 0, 0, time.UTC), tx.Date)
}
