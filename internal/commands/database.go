package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spending/internal/cli"
	"spending/internal/services"
	"spending/internal/storage"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
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

			db, err := storage.OpenDB(ctx, cli.StorageConfig(e.cfg))
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			version, err := storage.RunMigrations(ctx, db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s database at schema version %d\n", db.Dialect.Name(), version)
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [name...]",
		Short: "Create the household's children (SEED_CHILDREN by default); existing names are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(ctx context.Context, e *env, repo *storage.Repository) error {
				names := args
				if len(names) == 0 {
					names = e.cfg.SeedChildren
				}

				created, err := services.SeedChildren(ctx, repo, names, e.logger)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(created) == 0 {
					fmt.Fprintln(out, "all children already exist")
					return nil
				}
				for _, c := range created {
					fmt.Fprintf(out, "created %d %s\n", c.ID, c.Name)
				}
				return nil
			})
		},
	}
}

func newChildrenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "children",
		Short: "List children",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(ctx context.Context, e *env, repo *storage.Repository) error {
				children, err := repo.ListChildren(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME")
				for _, c := range children {
					fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
				}
				return tw.Flush()
			})
		},
	}
}
