package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"spending/internal/backend"
	"spending/internal/sheets"
)

// openLedger is replaced in tests.
var openLedger = func(ctx context.Context, e *env) (sheets.LedgerReader, error) {
	if !e.cfg.SheetsEnabled() {
		return nil, errors.New("GOOGLE_SPREADSHEET_ID is not set")
	}
	return backend.Open(ctx, backend.FromAppConfig(e.cfg), e.logger)
}

func newLedgerCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show the most recent rows of the spreadsheet ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			ledger, err := openLedger(ctx, e)
			if err != nil {
				return err
			}
			rows, err := ledger.ListRows(ctx)
			if err != nil {
				return err
			}
			if limit > 0 && len(rows) > limit {
				rows = rows[len(rows)-limit:]
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIMESTAMP\tEVENT\tEXPENSE\tCHILD\tDATE\tAMOUNT\tCATEGORY\tDESCRIPTION")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%.2f %s\t%s\t%s\n",
					r.Timestamp.Format(time.RFC3339), r.Event, r.ExpenseID, r.ChildID,
					r.Date, r.Amount, r.Currency, r.Category, r.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of rows to show (0 for all)")
	return cmd
}
