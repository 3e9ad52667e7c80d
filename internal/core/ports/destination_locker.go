package ports

import (
	"context"
	"errors"

	"consolidation/internal/core/domain/model/kernel"
)

// ErrBusy is returned when a destination lock could not be acquired within
// the configured wait. Callers may retry.
var ErrBusy = errors.New("destination is busy, retry later")

// DestinationLocker serializes mutations per destination office.
// Different destinations never block each other.
type DestinationLocker interface {
	// Lock blocks until the destination is free, the wait expires (ErrBusy)
	// or ctx is done. The returned func releases the lock and is safe to call once.
	Lock(ctx context.Context, destinationOfficeID kernel.UUID) (unlock func(), err error)
}
