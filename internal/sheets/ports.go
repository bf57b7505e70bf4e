package sheets

import (
	"context"
	"time"
)

// LedgerColumns is the header row of the ledger sheet, in column order.
var LedgerColumns = []string{
	"timestamp", "event", "expense_id", "child_id", "date",
	"description", "category", "amount", "currency", "event_id",
}

// LedgerRow is one line of the spending ledger: a single expense
// lifecycle event.
type LedgerRow struct {
	Timestamp   time.Time
	Event       string
	ExpenseID   int64
	ChildID     int64
	Date        string
	Description string
	Category    string
	Amount      float64
	Currency    string
	EventID     string
}

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		AppendRow(ctx context.Context, row LedgerRow) (rowRef string, err error)
	}

	LedgerReader interface {
		// ListRows returns every ledger row in sheet order.
		ListRows(ctx context.Context) ([]LedgerRow, error)
	}

	Ledger interface {
		LedgerWriter
		LedgerReader
	}
)
