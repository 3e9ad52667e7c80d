package ports

import (
	"context"

	"consolidation/internal/core/domain/model/kernel"
)

// OfficeDirectory answers whether an office id is known to the network.
type OfficeDirectory interface {
	Exists(ctx context.Context, officeID kernel.UUID) (bool, error)
}
