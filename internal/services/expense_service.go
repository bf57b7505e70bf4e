package services

import (
	"context"
	"fmt"
	"time"

	"spending/internal/amqp"
	"spending/internal/core"
	"spending/internal/log"
	"spending/internal/storage"
)

// defaultPublishTimeout caps how long a committed write waits for its
// event to be handed to the broker.
const defaultPublishTimeout = 3 * time.Second

// ExpenseService validates and applies expense writes. Every write runs in
// one transaction; after it commits, an event is published.
type ExpenseService struct {
	repo           Repository
	table          *core.CurrencyTable
	publisher      EventPublisher
	publishTimeout time.Duration
	logger         *log.Logger
	structured     *log.StructuredLogger
}

// NewExpenseService wires the lifecycle manager. publisher may be nil.
func NewExpenseService(repo Repository, table *core.CurrencyTable, publisher EventPublisher, logger *log.Logger) *ExpenseService {
	logger = logger.WithComponent(log.ComponentExpense)
	return &ExpenseService{
		repo:           repo,
		table:          table,
		publisher:      publisher,
		publishTimeout: defaultPublishTimeout,
		logger:         logger,
		structured:     log.NewStructuredLogger(logger),
	}
}

// Create validates in, checks the child exists and stores the expense.
func (s *ExpenseService) Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := in.Build(s.table)
	if err != nil {
		return core.Expense{}, err
	}

	var created core.Expense
	err = s.repo.InTx(ctx, func(tx storage.Store) error {
		if _, err := tx.GetChild(ctx, e.ChildID); err != nil {
			return err
		}
		created, err = tx.InsertExpense(ctx, e)
		return err
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.afterCommit(ctx, amqp.EventCreated, log.OpCreate, created)
	return created, nil
}

// Update applies the fields present in patch to expense id. A changed
// child_id must refer to an existing child.
func (s *ExpenseService) Update(ctx context.Context, id int64, patch core.ExpensePatch) (core.Expense, error) {
	if err := patch.Validate(); err != nil {
		return core.Expense{}, err
	}

	var (
		updated     core.Expense
		prevChildID int64
	)
	err := s.repo.InTx(ctx, func(tx storage.Store) error {
		current, err := tx.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		prevChildID = current.ChildID

		if err := patch.Apply(&current, s.table); err != nil {
			return err
		}
		if current.ChildID != prevChildID {
			if _, err := tx.GetChild(ctx, current.ChildID); err != nil {
				return err
			}
		}

		if err := tx.UpdateExpense(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}

	s.afterCommit(ctx, amqp.EventUpdated, log.OpUpdate, updated)
	return updated, nil
}

// Delete removes expense id and returns the removed record.
func (s *ExpenseService) Delete(ctx context.Context, id int64) (core.Expense, error) {
	var deleted core.Expense
	err := s.repo.InTx(ctx, func(tx storage.Store) error {
		e, err := tx.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteExpense(ctx, id); err != nil {
			return err
		}
		deleted = e
		return nil
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("delete expense %d: %w", id, err)
	}

	s.afterCommit(ctx, amqp.EventDeleted, log.OpDelete, deleted)
	return deleted, nil
}

func (s *ExpenseService) afterCommit(ctx context.Context, eventType amqp.EventType, op string, e core.Expense) {
	s.structured.LogExpenseChange(ctx, op, e.ID, e.ChildID, e.Amount, e.Currency, string(e.Category))

	if s.publisher == nil {
		return
	}
	if err := s.publish(ctx, amqp.NewExpenseEvent(eventType, e)); err != nil {
		// The write is committed; a missed event only delays the ledger.
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			log.FieldError, err,
			log.FieldExpenseID, e.ID,
			log.FieldEventType, eventType,
			log.FieldOperation, log.OpPublish)
	}
}

// publish hands event to the broker without outliving publishTimeout. The
// caller's cancellation is ignored: the write already committed, so a
// client hanging up must not drop its event.
func (s *ExpenseService) publish(ctx context.Context, event *amqp.ExpenseEvent) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.publisher.Publish(ctx, event) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("publish event %s: %w", event.ID, ctx.Err())
	}
}
