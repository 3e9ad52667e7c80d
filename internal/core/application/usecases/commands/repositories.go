// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// Every batch mutation runs through the DestinationCoordinator: lock the
// destination, open a unit of work, mutate, commit, publish events.
package commands

import (
	"context"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// BatchRepoFactory provides access to batch repository within a transaction.
	BatchRepoFactory interface {
		BatchRepository() ports.BatchRepository
	}

	// EventSource drains events raised by aggregates written in the transaction.
	EventSource interface {
		PendingEvents() []batch.DomainEvent
	}

	// UoW manages transactions across batch and order aggregates.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   batches := uow.BatchRepository()
	//   orders := uow.OrderRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	//   events := uow.PendingEvents()
	UoW interface {
		TxManager
		BatchRepoFactory
		OrderRepoFactory
		EventSource
	}

	// UoWFactory creates new unit of work instances for batch operations.
	UoWFactory interface {
		Create() UoW
	}
)
