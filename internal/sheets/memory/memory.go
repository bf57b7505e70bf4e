package memory

import (
	"context"
	"fmt"
	"sync"

	"spending/internal/sheets"
)

// Store keeps the ledger in memory. It stands in for the spreadsheet when
// none is configured.
type Store struct {
	mu   sync.Mutex
	rows []sheets.LedgerRow
}

var _ sheets.Ledger = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendRow stores the row and returns a synthetic row reference.
func (s *Store) AppendRow(_ context.Context, row sheets.LedgerRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) ListRows(_ context.Context) ([]sheets.LedgerRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.LedgerRow(nil), s.rows...), nil
}
