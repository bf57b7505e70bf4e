package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spending/internal/core"
	"spending/internal/sheets"
	"spending/internal/sheets/memory"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "spending.db"))
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	t.Setenv("SEED_CHILDREN", "Xav,Emma")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite database at schema version")

	// Applying again is a no-op.
	_, err = run(t, "migrate")
	require.NoError(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "created 1 Xav")
	assert.Contains(t, out, "created 2 Emma")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Equal(t, "all children already exist\n", out)

	out, err = run(t, "seed", "Zoe", "Xav")
	require.NoError(t, err)
	assert.Equal(t, "created 3 Zoe\n", out)
}

func TestSeedRejectsBlankName(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "seed", "   ")
	require.Error(t, err)
}

func TestChildren(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "seed")
	require.NoError(t, err)

	out, err := run(t, "children")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ID", "NAME"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "Xav"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "Emma"}, strings.Fields(lines[2]))
}

func TestTotals(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "seed")
	require.NoError(t, err)

	out, err := run(t, "totals", "2")
	require.NoError(t, err)

	var summary core.ChildSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, int64(2), summary.ChildID)
	assert.Equal(t, core.ReferenceCurrency, summary.ReferenceCurrency)
	assert.Zero(t, summary.GrandTotalReference)
}

func TestTotalsErrors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing id", args: []string{"totals"}, want: "accepts 1 arg"},
		{name: "not a number", args: []string{"totals", "abc"}, want: "invalid child id"},
		{name: "zero", args: []string{"totals", "0"}, want: "invalid child id"},
		{name: "unknown child", args: []string{"totals", "99"}, want: "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(err.Error()), tt.want)
		})
	}
}

func TestLedger(t *testing.T) {
	setupEnv(t)

	ledger := memory.New()
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	for i := int64(1); i <= 3; i++ {
		_, err := ledger.AppendRow(context.Background(), sheets.LedgerRow{
			Timestamp: ts, Event: "expense.created", ExpenseID: i, ChildID: 1,
			Date: "2026-03-01", Description: "Pocket money", Category: "cash",
			Amount: 5, Currency: "EUR", EventID: "evt",
		})
		require.NoError(t, err)
	}

	orig := openLedger
	openLedger = func(context.Context, *env) (sheets.LedgerReader, error) { return ledger, nil }
	t.Cleanup(func() { openLedger = orig })

	out, err := run(t, "ledger", "--limit", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "TIMESTAMP")
	assert.Contains(t, lines[1], "2026-03-01T09:30:00Z")
	assert.Equal(t, "2", strings.Fields(lines[1])[2])
	assert.Contains(t, lines[2], "5.00 EUR")
}

func TestLedgerRequiresSpreadsheet(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "ledger")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SPREADSHEET_ID")
}
