package ports

import (
	"context"

	"consolidation/internal/core/domain/model/batch"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// It provides transaction control and tracks aggregate changes.
// Client code must explicitly manage transaction lifecycle.
type UnitOfWork interface {
	// Begin starts a new transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// BatchRepository returns a repository bound to the current transaction.
	BatchRepository() BatchRepository

	// OrderRepository returns a repository bound to the current transaction.
	OrderRepository() OrderRepository

	// PendingEvents drains the domain events raised by aggregates written
	// through this unit of work. Call it only after a successful Commit.
	PendingEvents() []batch.DomainEvent
}
