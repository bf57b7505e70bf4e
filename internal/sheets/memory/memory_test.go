package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spending/internal/sheets"
)

func TestStore_AppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.AppendRow(ctx, sheets.LedgerRow{Event: "created", ExpenseID: 1, Timestamp: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, "mem:1", ref)

	ref, err = s.AppendRow(ctx, sheets.LedgerRow{Event: "deleted", ExpenseID: 1})
	require.NoError(t, err)
	assert.Equal(t, "mem:2", ref)

	rows, err := s.ListRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "created", rows[0].Event)
	assert.Equal(t, "deleted", rows[1].Event)

	rows[0].Event = "mutated"
	again, _ := s.ListRows(ctx)
	assert.Equal(t, "created", again[0].Event, "ListRows returns a copy")
}
