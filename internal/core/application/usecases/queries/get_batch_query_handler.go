package queries

import (
	"context"

	"consolidation/internal/core/ports"
)

type GetBatchQueryHandler struct {
	readModel ports.BatchReadModel
}

func NewGetBatchQueryHandler(readModel ports.BatchReadModel) GetBatchQueryHandler {
	return GetBatchQueryHandler{readModel: readModel}
}

// Handle returns an errs.ObjectNotFoundError for an unknown id or code.
func (h GetBatchQueryHandler) Handle(ctx context.Context, query GetBatchQuery) (ports.BatchView, error) {
	if err := query.Validate(); err != nil {
		return ports.BatchView{}, err
	}

	if id := query.ID(); id != nil {
		return h.readModel.GetBatch(ctx, *id, query.IncludeOrders())
	}
	return h.readModel.GetBatchByCode(ctx, query.Code(), query.IncludeOrders())
}
