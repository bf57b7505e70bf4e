package worker

import (
	"context"
	"fmt"
	"time"

	"spending/internal/amqp"
	"spending/internal/cache"
	"spending/internal/log"
	"spending/internal/sheets"
)

const (
	seenEventsSize = 1024
	seenEventsTTL  = 24 * time.Hour
)

// LedgerWorker mirrors expense events into the spreadsheet ledger, one row
// per event.
type LedgerWorker struct {
	ledger sheets.LedgerWriter
	logger *log.Logger

	// seen remembers recently appended event ids so a redelivery after a
	// lost ack does not duplicate the row.
	seen *cache.LRUCache[string, struct{}]
}

func NewLedgerWorker(ledger sheets.LedgerWriter, logger *log.Logger) *LedgerWorker {
	return &LedgerWorker{
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentWorker),
		seen:   cache.NewLRUCache[string, struct{}](seenEventsSize, seenEventsTTL),
	}
}

// SeenEvents exposes the dedupe cache so it can be registered for cleanup.
func (w *LedgerWorker) SeenEvents() *cache.LRUCache[string, struct{}] {
	return w.seen
}

// HandleEvent appends the row for event. It satisfies amqp.Handler: an
// error requeues the message.
func (w *LedgerWorker) HandleEvent(ctx context.Context, event *amqp.ExpenseEvent) error {
	if _, dup := w.seen.Get(event.ID); dup {
		w.logger.DebugContext(ctx, "Skipping already recorded event", log.FieldMessageID, event.ID)
		return nil
	}

	ref, err := w.ledger.AppendRow(ctx, RowFromEvent(event))
	if err != nil {
		return fmt.Errorf("append ledger row for expense %d: %w", event.ExpenseID, err)
	}
	w.seen.Set(event.ID, struct{}{})

	w.logger.InfoContext(ctx, "Recorded expense event in ledger",
		log.FieldMessageID, event.ID,
		log.FieldEventType, event.Type,
		log.FieldExpenseID, event.ExpenseID,
		log.FieldChildID, event.ChildID,
		"ledger_ref", ref)
	return nil
}

// RowFromEvent flattens an event into its ledger row.
func RowFromEvent(e *amqp.ExpenseEvent) sheets.LedgerRow {
	return sheets.LedgerRow{
		Timestamp:   e.Timestamp.UTC(),
		Event:       string(e.Type),
		ExpenseID:   e.ExpenseID,
		ChildID:     e.ChildID,
		Date:        e.Date.String(),
		Description: e.Description,
		Category:    e.Category,
		Amount:      e.Amount,
		Currency:    e.Currency,
		EventID:     e.ID,
	}
}
