package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(amount float64, category Category, currency string) Expense {
	return Expense{
		Amount:      amount,
		Description: "test",
		Category:    category,
		Currency:    currency,
		Date:        NewTimestamp(time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)),
		ChildID:     1,
	}
}

func TestSummarize_EmptyHasEverySupportedCurrency(t *testing.T) {
	table := MustCurrencyTable("")

	s := Summarize(7, nil, table)

	assert.Equal(t, int64(7), s.ChildID)
	assert.Equal(t, "GBP", s.ReferenceCurrency)
	assert.Zero(t, s.GrandTotalReference)
	require.Len(t, s.CurrencyTotals, 3)
	for _, code := range []string{"GBP", "EUR", "MAD"} {
		assert.Equal(t, CurrencyTotals{}, s.CurrencyTotals[code], code)
	}
}

func TestSummarize_CashCardBreakdown(t *testing.T) {
	table := MustCurrencyTable("EUR")
	expenses := []Expense{
		expense(10, CategoryCash, "EUR"),
		expense(5, CategoryCash, "EUR"),
		expense(20, CategoryCard, "EUR"),
	}

	s := Summarize(1, expenses, table)

	eur := s.CurrencyTotals["EUR"]
	assert.Equal(t, 35.0, eur.Total)
	assert.Equal(t, 15.0, eur.Cash)
	assert.Equal(t, 20.0, eur.Card)
	assert.InDelta(t, 35.0/1.15, s.GrandTotalReference, 1e-9)
}

func TestSummarize_MixedCurrencies(t *testing.T) {
	table := MustCurrencyTable("EUR")
	expenses := []Expense{
		expense(12.5, CategoryCash, "GBP"),
		expense(100, CategoryCard, "MAD"),
		expense(23, CategoryCash, "EUR"),
	}

	s := Summarize(1, expenses, table)

	assert.Equal(t, CurrencyTotals{Total: 12.5, Cash: 12.5}, s.CurrencyTotals["GBP"])
	assert.Equal(t, CurrencyTotals{Total: 100, Card: 100}, s.CurrencyTotals["MAD"])
	assert.Equal(t, CurrencyTotals{Total: 23, Cash: 23}, s.CurrencyTotals["EUR"])
	assert.InDelta(t, 12.5+100*0.08+23/1.15, s.GrandTotalReference, 1e-9)
}

func TestSummarize_MissingCurrencyUsesDefault(t *testing.T) {
	table := MustCurrencyTable("MAD")

	s := Summarize(1, []Expense{expense(50, CategoryCash, "")}, table)

	assert.Equal(t, 50.0, s.CurrencyTotals["MAD"].Total)
	assert.InDelta(t, 4.0, s.GrandTotalReference, 1e-9)
}

func TestSummarize_UnknownCurrencyIsBucketedButWorthNothing(t *testing.T) {
	table := MustCurrencyTable("EUR")
	expenses := []Expense{
		expense(40, CategoryCash, "USD"),
		expense(10, CategoryCash, "GBP"),
	}

	s := Summarize(1, expenses, table)

	require.Contains(t, s.CurrencyTotals, "USD")
	assert.Equal(t, CurrencyTotals{Total: 40, Cash: 40}, s.CurrencyTotals["USD"])
	assert.InDelta(t, 10.0, s.GrandTotalReference, 1e-9)
	assert.Equal(t, []string{"USD"}, s.UnknownCurrencies(table))
}

func TestSummarize_UnclassifiedCategoryCountsOnlyInTotal(t *testing.T) {
	table := MustCurrencyTable("EUR")
	expenses := []Expense{
		expense(3, CategoryCash, "GBP"),
		expense(4, CategoryCard, "GBP"),
		expense(8, Category("voucher"), "GBP"),
	}

	s := Summarize(1, expenses, table)

	gbp := s.CurrencyTotals["GBP"]
	assert.Equal(t, 15.0, gbp.Total)
	assert.Equal(t, 3.0, gbp.Cash)
	assert.Equal(t, 4.0, gbp.Card)
	assert.Equal(t, 15.0, s.GrandTotalReference)
}

func TestSummarize_GrandTotalMatchesPerExpenseConversion(t *testing.T) {
	table := MustCurrencyTable("EUR")
	var expenses []Expense
	for i, code := range []string{"GBP", "EUR", "MAD", "XXX", ""} {
		for j := 1; j <= 4; j++ {
			category := CategoryCash
			if j%2 == 0 {
				category = CategoryCard
			}
			expenses = append(expenses, expense(float64(i*10+j)+0.25, category, code))
		}
	}

	s := Summarize(1, expenses, table)

	var want float64
	for _, e := range expenses {
		want += e.Amount * table.RateToReference(table.Resolve(e.Currency)).InexactFloat64()
	}
	assert.InDelta(t, want, s.GrandTotalReference, 1e-6)

	for code, b := range s.CurrencyTotals {
		assert.InDelta(t, b.Total, b.Cash+b.Card, 1e-9, code)
	}
}
