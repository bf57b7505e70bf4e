package services

import (
	"context"
	"fmt"

	"spending/internal/core"
	"spending/internal/log"
	"spending/internal/storage"
)

// SummaryService answers the read side: children, their expenses and
// their currency totals.
type SummaryService struct {
	store  storage.Store
	table  *core.CurrencyTable
	logger *log.Logger
}

// NewSummaryService creates the read service.
func NewSummaryService(store storage.Store, table *core.CurrencyTable, logger *log.Logger) *SummaryService {
	return &SummaryService{
		store:  store,
		table:  table,
		logger: logger.WithComponent(log.ComponentSummary),
	}
}

func (s *SummaryService) GetChildren(ctx context.Context) ([]core.Child, error) {
	children, err := s.store.ListChildren(ctx)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

func (s *SummaryService) GetChild(ctx context.Context, id int64) (core.Child, error) {
	return s.store.GetChild(ctx, id)
}

// GetExpensesByChild lists a child's expenses, newest first.
func (s *SummaryService) GetExpensesByChild(ctx context.Context, childID int64) ([]core.Expense, error) {
	if _, err := s.store.GetChild(ctx, childID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByChild(ctx, childID)
}

// GetTotals aggregates every expense of the child into per-currency
// buckets and a grand total in the reference currency. Totals are
// recomputed from the store on every call so writes from any process are
// reflected immediately.
func (s *SummaryService) GetTotals(ctx context.Context, childID int64) (core.ChildSummary, error) {
	if _, err := s.store.GetChild(ctx, childID); err != nil {
		return core.ChildSummary{}, err
	}
	expenses, err := s.store.ListExpensesByChild(ctx, childID)
	if err != nil {
		return core.ChildSummary{}, fmt.Errorf("totals for child %d: %w", childID, err)
	}

	summary := core.Summarize(childID, expenses, s.table)
	if unknown := summary.UnknownCurrencies(s.table); len(unknown) > 0 {
		s.logger.WarnContext(ctx, "Expenses in currencies without a rate excluded from grand total",
			log.FieldChildID, childID,
			"currencies", unknown)
	}

	return summary, nil
}
