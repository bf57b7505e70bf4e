package core

import "github.com/shopspring/decimal"

// CurrencyTotals is the spending of one child in one currency.
// Total includes expenses whose category is neither cash nor card.
type CurrencyTotals struct {
	Total float64 `json:"total"`
	Cash  float64 `json:"cash"`
	Card  float64 `json:"card"`
}

// ChildSummary is the per-child spending report: a breakdown per currency
// plus a grand total converted into the reference currency.
type ChildSummary struct {
	ChildID             int64                     `json:"child_id"`
	ReferenceCurrency   string                    `json:"reference_currency"`
	GrandTotalReference float64                   `json:"grand_total_reference"`
	CurrencyTotals      map[string]CurrencyTotals `json:"currency_totals"`
}

type bucket struct {
	total, cash, card decimal.Decimal
}

// Summarize aggregates a child's expenses. Every supported currency gets a
// bucket even without activity; unknown currencies get a bucket on first use
// and contribute nothing to the grand total.
func Summarize(childID int64, expenses []Expense, table *CurrencyTable) ChildSummary {
	buckets := make(map[string]*bucket, len(table.codes))
	for _, code := range table.codes {
		buckets[code] = &bucket{}
	}

	grand := decimal.Zero
	for _, e := range expenses {
		code := table.Resolve(e.Currency)
		b, ok := buckets[code]
		if !ok {
			b = &bucket{}
			buckets[code] = b
		}

		amount := decimal.NewFromFloat(e.Amount)
		b.total = b.total.Add(amount)
		switch e.Category {
		case CategoryCash:
			b.cash = b.cash.Add(amount)
		case CategoryCard:
			b.card = b.card.Add(amount)
		}

		grand = grand.Add(amount.Mul(table.RateToReference(code)))
	}

	summary := ChildSummary{
		ChildID:             childID,
		ReferenceCurrency:   table.Reference(),
		GrandTotalReference: grand.InexactFloat64(),
		CurrencyTotals:      make(map[string]CurrencyTotals, len(buckets)),
	}
	for code, b := range buckets {
		summary.CurrencyTotals[code] = CurrencyTotals{
			Total: b.total.InexactFloat64(),
			Cash:  b.cash.InexactFloat64(),
			Card:  b.card.InexactFloat64(),
		}
	}
	return summary
}

// UnknownCurrencies lists the codes in s that have no conversion rate.
func (s ChildSummary) UnknownCurrencies(table *CurrencyTable) []string {
	var unknown []string
	for code := range s.CurrencyTotals {
		if !table.IsSupported(code) {
			unknown = append(unknown, code)
		}
	}
	return unknown
}
