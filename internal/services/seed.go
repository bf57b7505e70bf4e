package services

import (
	"context"
	"errors"
	"fmt"

	"spending/internal/core"
	"spending/internal/log"
	"spending/internal/storage"
)

// SeedChildren creates every named child that does not exist yet and
// returns the ones it created. Running it again is a no-op.
func SeedChildren(ctx context.Context, repo Repository, names []string, logger *log.Logger) ([]core.Child, error) {
	logger = logger.WithComponent(log.ComponentSeed)

	var created []core.Child
	err := repo.InTx(ctx, func(tx storage.Store) error {
		for _, raw := range names {
			name, err := core.ValidateChildName(raw)
			if err != nil {
				return err
			}

			_, err = tx.GetChildByName(ctx, name)
			if err == nil {
				continue
			}
			if !errors.Is(err, core.ErrNotFound) {
				return err
			}

			child, err := tx.CreateChild(ctx, name)
			if err != nil {
				return err
			}
			created = append(created, child)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed children: %w", err)
	}

	if len(created) > 0 {
		logger.InfoContext(ctx, "Seeded children", "count", len(created), log.FieldOperation, log.OpSeed)
	}
	return created, nil
}
