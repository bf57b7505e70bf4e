package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func validInput() ExpenseInput {
	ts := NewTimestamp(time.Date(2023, 10, 27, 10, 0, 0, 0, time.UTC))
	return ExpenseInput{
		Amount:      ptr(50.0),
		Description: ptr("Gift"),
		Date:        &ts,
		ChildID:     ptr(int64(1)),
	}
}

func TestExpenseInput_BuildDefaults(t *testing.T) {
	table := MustCurrencyTable("EUR")

	e, err := validInput().Build(table)
	require.NoError(t, err)

	assert.Equal(t, 50.0, e.Amount)
	assert.Equal(t, "Gift", e.Description)
	assert.Equal(t, CategoryCash, e.Category)
	assert.Equal(t, "EUR", e.Currency)
	assert.Equal(t, int64(1), e.ChildID)
}

func TestExpenseInput_BuildExplicitFields(t *testing.T) {
	table := MustCurrencyTable("EUR")
	in := validInput()
	in.Category = ptr(CategoryCard)
	in.Currency = ptr(" MAD ")

	e, err := in.Build(table)
	require.NoError(t, err)

	assert.Equal(t, CategoryCard, e.Category)
	assert.Equal(t, "MAD", e.Currency)
}

func TestExpenseInput_BuildKeepsUnknownCurrency(t *testing.T) {
	in := validInput()
	in.Currency = ptr("usd")

	e, err := in.Build(MustCurrencyTable("EUR"))
	require.NoError(t, err)
	assert.Equal(t, "usd", e.Currency)
}

func TestExpenseInput_BuildValidation(t *testing.T) {
	table := MustCurrencyTable("EUR")
	tests := []struct {
		name   string
		mutate func(*ExpenseInput)
		field  string
		err    error
	}{
		{"missing amount", func(in *ExpenseInput) { in.Amount = nil }, "amount", ErrMissingField},
		{"missing description", func(in *ExpenseInput) { in.Description = nil }, "description", ErrMissingField},
		{"missing date", func(in *ExpenseInput) { in.Date = nil }, "date", ErrMissingField},
		{"missing child", func(in *ExpenseInput) { in.ChildID = nil }, "child_id", ErrMissingField},
		{"negative amount", func(in *ExpenseInput) { in.Amount = ptr(-1.0) }, "amount", ErrInvalidAmount},
		{"NaN amount", func(in *ExpenseInput) { in.Amount = ptr(math.NaN()) }, "amount", ErrInvalidAmount},
		{"unknown category", func(in *ExpenseInput) { in.Category = ptr(Category("cheque")) }, "category", ErrInvalidCategory},
		{"zero child", func(in *ExpenseInput) { in.ChildID = ptr(int64(0)) }, "child_id", ErrInvalidChildID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := in.Build(table)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestExpenseInput_ZeroAmountAllowed(t *testing.T) {
	in := validInput()
	in.Amount = ptr(0.0)

	_, err := in.Build(MustCurrencyTable("EUR"))
	assert.NoError(t, err)
}

func TestExpensePatch_ApplyOnlySuppliedFields(t *testing.T) {
	table := MustCurrencyTable("EUR")
	original := Expense{
		ID:          3,
		Amount:      10,
		Description: "Candy",
		Category:    CategoryCash,
		Currency:    "EUR",
		Date:        NewTimestamp(time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)),
		ChildID:     2,
	}

	e := original
	err := ExpensePatch{Amount: ptr(12.5), Currency: ptr("GBP")}.Apply(&e, table)
	require.NoError(t, err)

	assert.Equal(t, 12.5, e.Amount)
	assert.Equal(t, "GBP", e.Currency)
	assert.Equal(t, original.Description, e.Description)
	assert.Equal(t, original.Category, e.Category)
	assert.Equal(t, original.Date, e.Date)
	assert.Equal(t, original.ChildID, e.ChildID)
	assert.Equal(t, original.ID, e.ID)
}

func TestExpensePatch_InvalidLeavesExpenseUntouched(t *testing.T) {
	table := MustCurrencyTable("EUR")
	e := expense(10, CategoryCash, "EUR")
	before := e

	err := ExpensePatch{Amount: ptr(99.0), Category: ptr(Category("bitcoin"))}.Apply(&e, table)

	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.Equal(t, before, e)
}

func TestExpensePatch_DecodeAbsentVersusPresent(t *testing.T) {
	var p ExpensePatch
	require.NoError(t, json.Unmarshal([]byte(`{"description":"Toy","amount":null}`), &p))

	assert.Nil(t, p.Amount)
	require.NotNil(t, p.Description)
	assert.Equal(t, "Toy", *p.Description)
	assert.Nil(t, p.Date)
}

func TestValidateChildName(t *testing.T) {
	name, err := ValidateChildName("  Zoe ")
	require.NoError(t, err)
	assert.Equal(t, "Zoe", name)

	_, err = ValidateChildName("   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestNotFoundErrors(t *testing.T) {
	assert.ErrorIs(t, ErrChildNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrExpenseNotFound, ErrNotFound)
	assert.NotErrorIs(t, ErrChildNotFound, ErrExpenseNotFound)
	assert.Equal(t, "child not found", ErrChildNotFound.Error())
}

func TestExpensePatch_Validate(t *testing.T) {
	assert.NoError(t, ExpensePatch{}.Validate())
	assert.NoError(t, ExpensePatch{Amount: ptr(0.0), Category: ptr(CategoryCard)}.Validate())
	assert.ErrorIs(t, ExpensePatch{Amount: ptr(-0.01)}.Validate(), ErrInvalidAmount)
	assert.ErrorIs(t, ExpensePatch{Category: ptr(Category(""))}.Validate(), ErrInvalidCategory)
	assert.ErrorIs(t, ExpensePatch{ChildID: ptr(int64(-3))}.Validate(), ErrInvalidChildID)
}
