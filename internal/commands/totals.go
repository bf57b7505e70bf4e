package commands

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"spending/internal/services"
	"spending/internal/storage"
)

func newTotalsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "totals <child-id>",
		Short: "Print a child's spending summary as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			childID, err := parseChildID(args[0])
			if err != nil {
				return err
			}

			return withRepository(cmd, func(ctx context.Context, e *env, repo *storage.Repository) error {
				summary, err := services.NewSummaryService(repo, e.table, e.logger).GetTotals(ctx, childID)
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			})
		},
	}
}
