package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ports "spending/internal/sheets"
)

// rowValues lays a ledger row out in LedgerColumns order.
func rowValues(r ports.LedgerRow) []any {
	return []any{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Event,
		r.ExpenseID,
		r.ChildID,
		r.Date,
		r.Description,
		r.Category,
		r.Amount,
		r.Currency,
		r.EventID,
	}
}

// parseLedgerRows converts a values matrix (as returned by the Sheets API)
// back into ledger rows. Blank rows are skipped; a malformed row fails the
// whole read with its sheet row number.
func parseLedgerRows(values [][]any) ([]ports.LedgerRow, error) {
	rows := make([]ports.LedgerRow, 0, len(values))
	for i, raw := range values {
		cells := toStrings(raw)
		if isBlank(cells) {
			continue
		}

		row, err := parseLedgerRow(cells)
		if err != nil {
			// Data starts on sheet row 2.
			return nil, fmt.Errorf("ledger row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseLedgerRow(cells []string) (ports.LedgerRow, error) {
	var (
		row ports.LedgerRow
		err error
	)

	if ts := safeGet(cells, 0); ts != "" {
		if row.Timestamp, err = time.Parse(time.RFC3339, ts); err != nil {
			return row, fmt.Errorf("timestamp %q: %w", ts, err)
		}
	}
	row.Event = safeGet(cells, 1)
	if row.ExpenseID, err = parseInt(safeGet(cells, 2)); err != nil {
		return row, fmt.Errorf("expense_id: %w", err)
	}
	if row.ChildID, err = parseInt(safeGet(cells, 3)); err != nil {
		return row, fmt.Errorf("child_id: %w", err)
	}
	row.Date = safeGet(cells, 4)
	row.Description = safeGet(cells, 5)
	row.Category = safeGet(cells, 6)
	if amount := safeGet(cells, 7); amount != "" {
		if row.Amount, err = strconv.ParseFloat(amount, 64); err != nil {
			return row, fmt.Errorf("amount %q: %w", amount, err)
		}
	}
	row.Currency = safeGet(cells, 8)
	row.EventID = safeGet(cells, 9)
	return row, nil
}

// parseInt accepts integers rendered either plainly or as whole floats.
func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int64(f), nil
}

func toStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(x))
		}
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func safeGet(row []string, i int) string {
	if i >= 0 && i < len(row) {
		return row[i]
	}
	return ""
}
