package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"spending/internal/cli"
	"spending/internal/config"
	"spending/internal/core"
	"spending/internal/log"
	"spending/internal/storage"
)

// NewRootCommand creates the spendctl command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spendctl",
		Short: "Administer the children's spending tracker",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newMigrateCommand(),
		newSeedCommand(),
		newChildrenCommand(),
		newTotalsCommand(),
		newLedgerCommand(),
	)

	return rootCmd
}

// env is what every subcommand needs: validated config and a logger
// writing to the command's stderr.
type env struct {
	cfg    *config.Config
	logger *log.Logger
	table  *core.CurrencyTable
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, logger, err := cli.LoadConfig(log.ComponentCLI, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	table, err := core.NewCurrencyTable(cfg.DefaultCurrency)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, table: table}, nil
}

// withRepository opens the migrated store for the duration of fn.
func withRepository(cmd *cobra.Command, fn func(ctx context.Context, e *env, repo *storage.Repository) error) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	repo, err := cli.OpenRepository(ctx, e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	return fn(ctx, e, repo)
}

func parseChildID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid child id %q: must be a positive integer", arg)
	}
	return id, nil
}
