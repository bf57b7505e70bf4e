package services

import (
	"context"

	"spending/internal/amqp"
	"spending/internal/storage"
)

// Repository is the transactional expense store.
type Repository interface {
	storage.Store
	InTx(ctx context.Context, fn func(storage.Store) error) error
}

// EventPublisher announces committed expense changes.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.ExpenseEvent) error
}

var _ Repository = (*storage.Repository)(nil)
