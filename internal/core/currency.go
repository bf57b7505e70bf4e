package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// ReferenceCurrency is the currency every grand total is converted into.
	ReferenceCurrency = "GBP"
	// DefaultCurrency applies to expenses recorded without a currency.
	DefaultCurrency = "EUR"
)

// Fixed conversion rates into the reference currency.
// 1 GBP = 1.15 EUR, 1 MAD = 0.08 GBP.
var (
	supportedCodes = []string{"GBP", "EUR", "MAD"}

	ratesToReference = map[string]decimal.Decimal{
		"GBP": decimal.NewFromInt(1),
		"EUR": decimal.NewFromInt(1).Div(decimal.RequireFromString("1.15")),
		"MAD": decimal.RequireFromString("0.08"),
	}
)

// CurrencyTable maps supported currency codes to their fixed rate into the
// reference currency. It is immutable once built.
type CurrencyTable struct {
	reference   string
	defaultCode string
	codes       []string
	rates       map[string]decimal.Decimal
}

// NewCurrencyTable builds the static table with the given default currency.
// An empty default falls back to DefaultCurrency.
func NewCurrencyTable(defaultCode string) (*CurrencyTable, error) {
	defaultCode = strings.TrimSpace(defaultCode)
	if defaultCode == "" {
		defaultCode = DefaultCurrency
	}
	if _, ok := ratesToReference[defaultCode]; !ok {
		return nil, fmt.Errorf("default currency %q is not supported (supported: %s)",
			defaultCode, strings.Join(supportedCodes, ", "))
	}

	return &CurrencyTable{
		reference:   ReferenceCurrency,
		defaultCode: defaultCode,
		codes:       supportedCodes,
		rates:       ratesToReference,
	}, nil
}

// MustCurrencyTable is NewCurrencyTable for known-good defaults.
func MustCurrencyTable(defaultCode string) *CurrencyTable {
	t, err := NewCurrencyTable(defaultCode)
	if err != nil {
		panic(err)
	}
	return t
}

// RateToReference returns the multiplier converting one unit of code into the
// reference currency. Unknown codes are worth nothing: the rate is zero.
func (t *CurrencyTable) RateToReference(code string) decimal.Decimal {
	if rate, ok := t.rates[code]; ok {
		return rate
	}
	return decimal.Zero
}

// SupportedCodes returns the supported currency codes in display order.
func (t *CurrencyTable) SupportedCodes() []string {
	return append([]string(nil), t.codes...)
}

// IsSupported reports whether code has a conversion rate.
func (t *CurrencyTable) IsSupported(code string) bool {
	_, ok := t.rates[code]
	return ok
}

// Reference returns the reference currency code.
func (t *CurrencyTable) Reference() string {
	return t.reference
}

// DefaultCode returns the currency assumed for expenses without one.
func (t *CurrencyTable) DefaultCode() string {
	return t.defaultCode
}

// Resolve returns code with surrounding whitespace removed, or the default
// currency when nothing is left. Unknown codes are returned unchanged.
func (t *CurrencyTable) Resolve(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return t.defaultCode
	}
	return code
}

// Rates returns the conversion table as floats for display.
func (t *CurrencyTable) Rates() map[string]float64 {
	out := make(map[string]float64, len(t.rates))
	for code, rate := range t.rates {
		out[code] = rate.InexactFloat64()
	}
	return out
}
