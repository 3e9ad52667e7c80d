package queries

import (
	"context"

	"consolidation/internal/core/ports"
)

type ListBatchesQueryHandler struct {
	readModel ports.BatchReadModel
}

func NewListBatchesQueryHandler(readModel ports.BatchReadModel) ListBatchesQueryHandler {
	return ListBatchesQueryHandler{readModel: readModel}
}

func (h ListBatchesQueryHandler) Handle(ctx context.Context, query ListBatchesQuery) (ports.Page[ports.BatchView], error) {
	if err := query.Validate(); err != nil {
		return ports.Page[ports.BatchView]{}, err
	}

	return h.readModel.ListBatches(ctx, query.Filter())
}
