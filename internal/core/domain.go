package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	CategoryCash Category = "cash"
	CategoryCard Category = "card"
)

type (
	// Category is the payment method of an expense.
	Category string

	Child struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	Expense struct {
		ID          int64     `json:"id"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description"`
		Category    Category  `json:"category"`
		Currency    string    `json:"currency"`
		Date        Timestamp `json:"date"`
		ChildID     int64     `json:"child_id"`
	}

	// ExpenseInput is the create request. Pointer fields distinguish a
	// missing field from a zero value.
	ExpenseInput struct {
		Amount      *float64   `json:"amount"`
		Description *string    `json:"description"`
		Category    *Category  `json:"category"`
		Currency    *string    `json:"currency"`
		Date        *Timestamp `json:"date"`
		ChildID     *int64     `json:"child_id"`
	}

	// ExpensePatch is a partial update: only non-nil fields are applied.
	ExpensePatch struct {
		Amount      *float64   `json:"amount"`
		Description *string    `json:"description"`
		Category    *Category  `json:"category"`
		Currency    *string    `json:"currency"`
		Date        *Timestamp `json:"date"`
		ChildID     *int64     `json:"child_id"`
	}
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")

	ErrChildNotFound   = fmt.Errorf("child %w", ErrNotFound)
	ErrExpenseNotFound = fmt.Errorf("expense %w", ErrNotFound)

	ErrMissingField    = errors.New("field required")
	ErrInvalidAmount   = errors.New("amount must be a non-negative number")
	ErrInvalidCategory = errors.New("category must be 'cash' or 'card'")
	ErrInvalidChildID  = errors.New("child_id must be positive")
	ErrEmptyName       = errors.New("name cannot be empty")
)

// ValidationError reports a malformed field in client input.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// Validate checks that c is a known payment category.
func (c Category) Validate() error {
	switch c {
	case CategoryCash, CategoryCard:
		return nil
	default:
		return ErrInvalidCategory
	}
}

func validateAmount(a float64) error {
	if math.IsNaN(a) || math.IsInf(a, 0) || a < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Build validates the input and returns the expense to store. Category
// defaults to cash and currency to the table's default. The date has
// already been normalized to naive UTC while decoding.
func (in ExpenseInput) Build(table *CurrencyTable) (Expense, error) {
	switch {
	case in.Amount == nil:
		return Expense{}, invalid("amount", ErrMissingField)
	case in.Description == nil:
		return Expense{}, invalid("description", ErrMissingField)
	case in.Date == nil:
		return Expense{}, invalid("date", ErrMissingField)
	case in.ChildID == nil:
		return Expense{}, invalid("child_id", ErrMissingField)
	}

	e := Expense{
		Amount:      *in.Amount,
		Description: *in.Description,
		Category:    CategoryCash,
		Currency:    table.DefaultCode(),
		Date:        NewTimestamp(in.Date.Time),
		ChildID:     *in.ChildID,
	}
	if in.Category != nil {
		e.Category = *in.Category
	}
	if in.Currency != nil {
		e.Currency = table.Resolve(*in.Currency)
	}

	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

// Validate checks the invariants of a stored expense.
func (e Expense) Validate() error {
	if err := validateAmount(e.Amount); err != nil {
		return invalid("amount", err)
	}
	if err := e.Category.Validate(); err != nil {
		return invalid("category", err)
	}
	if e.ChildID <= 0 {
		return invalid("child_id", ErrInvalidChildID)
	}
	return nil
}

// Validate checks the supplied fields on their own, before the patch is
// applied to a stored expense.
func (p ExpensePatch) Validate() error {
	if p.Amount != nil {
		if err := validateAmount(*p.Amount); err != nil {
			return invalid("amount", err)
		}
	}
	if p.Category != nil {
		if err := p.Category.Validate(); err != nil {
			return invalid("category", err)
		}
	}
	if p.ChildID != nil && *p.ChildID <= 0 {
		return invalid("child_id", ErrInvalidChildID)
	}
	return nil
}

// Apply copies the supplied fields onto e and validates the result.
// Fields left nil are untouched.
func (p ExpensePatch) Apply(e *Expense, table *CurrencyTable) error {
	updated := *e
	if p.Amount != nil {
		updated.Amount = *p.Amount
	}
	if p.Description != nil {
		updated.Description = *p.Description
	}
	if p.Category != nil {
		updated.Category = *p.Category
	}
	if p.Currency != nil {
		updated.Currency = table.Resolve(*p.Currency)
	}
	if p.Date != nil {
		updated.Date = NewTimestamp(p.Date.Time)
	}
	if p.ChildID != nil {
		updated.ChildID = *p.ChildID
	}

	if err := updated.Validate(); err != nil {
		return err
	}
	*e = updated
	return nil
}

// ValidateChildName trims and checks a child name.
func ValidateChildName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", ErrEmptyName)
	}
	return name, nil
}
