package ports

import (
	"context"

	"consolidation/internal/core/domain/model/batch"
)

// EventPublisher hands committed domain events to the outside world.
type EventPublisher interface {
	Publish(ctx context.Context, events ...batch.DomainEvent) error
}
