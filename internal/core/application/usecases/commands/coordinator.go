package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/metrics"
)

// DestinationCoordinator serializes every batch mutation per destination office.
//
// Execute takes the destination lock, opens a unit of work, runs the mutation,
// commits and then publishes the events raised by the written aggregates.
// The lock is held until after the commit, so a second request for the same
// destination always reads the committed state of the first one.
//
// Example:
//
//	err := coordinator.Execute(ctx, "seal", destinationID, func(ctx context.Context, uow UoW) error {
//	    b, err := uow.BatchRepository().Get(ctx, batchID)
//	    if err != nil {
//	        return err
//	    }
//	    if err = b.Seal(coordinator.Now()); err != nil {
//	        return err
//	    }
//	    return uow.BatchRepository().Update(ctx, b)
//	})
type DestinationCoordinator struct {
	uowFactory UoWFactory
	locker     ports.DestinationLocker
	publisher  ports.EventPublisher
	logger     *slog.Logger
	clock      func() time.Time
}

// CoordinatorOption customizes a DestinationCoordinator.
type CoordinatorOption func(*DestinationCoordinator)

// WithClock replaces time.Now, used by tests.
func WithClock(clock func() time.Time) CoordinatorOption {
	return func(c *DestinationCoordinator) {
		c.clock = clock
	}
}

func NewDestinationCoordinator(
	uowFactory UoWFactory,
	locker ports.DestinationLocker,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	opts ...CoordinatorOption,
) *DestinationCoordinator {
	c := &DestinationCoordinator{
		uowFactory: uowFactory,
		locker:     locker,
		publisher:  publisher,
		logger:     logger.With("component", "DestinationCoordinator"),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now is the coordinator's clock in UTC.
func (c *DestinationCoordinator) Now() time.Time {
	return c.clock().UTC()
}

// Execute runs fn under the destination lock inside a fresh unit of work.
func (c *DestinationCoordinator) Execute(
	ctx context.Context,
	operation string,
	destinationOfficeID kernel.UUID,
	fn func(ctx context.Context, uow UoW) error,
) (err error) {
	defer func() {
		metrics.ObserveOperation(operation, metrics.Outcome(err, ports.ErrBusy))
	}()

	started := time.Now()
	unlock, err := c.locker.Lock(ctx, destinationOfficeID)
	metrics.ObserveLockWait(operation, metrics.Outcome(err, ports.ErrBusy), time.Since(started))
	if err != nil {
		if errors.Is(err, ports.ErrBusy) {
			c.logger.WarnContext(ctx, "destination lock not acquired",
				"operation", operation, "destination", destinationOfficeID.String())
		}
		return err
	}
	defer unlock()

	uow := c.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = fn(ctx, uow); err != nil {
		if errors.Is(err, batch.ErrInvariantViolated) {
			c.logger.ErrorContext(ctx, "invariant violated, rolling back",
				"operation", operation, "destination", destinationOfficeID.String(), "error", err)
		}
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	c.publish(ctx, uow.PendingEvents())
	return nil
}

// DestinationOfBatch reads the batch outside any lock. A batch's destination
// never changes, so the answer is safe to lock on.
func (c *DestinationCoordinator) DestinationOfBatch(ctx context.Context, batchID kernel.UUID) (kernel.UUID, error) {
	b, err := c.uowFactory.Create().BatchRepository().Get(ctx, batchID)
	if err != nil {
		return kernel.UUID{}, err
	}
	return b.DestinationOfficeID(), nil
}

func (c *DestinationCoordinator) publish(ctx context.Context, events []batch.DomainEvent) {
	if len(events) == 0 || c.publisher == nil {
		return
	}

	err := c.publisher.Publish(ctx, events...)
	outcome := metrics.Outcome(err, nil)
	for _, e := range events {
		metrics.EventPublished(e.EventName(), outcome)
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to publish domain events", "count", len(events), "error", err)
	}
}
