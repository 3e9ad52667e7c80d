package queries

import (
	"context"

	"consolidation/internal/core/ports"
)

// GetUnbatchedOrdersQueryHandler serves the order ledger index. An office
// with no eligible orders, known or not, yields an empty slice.
type GetUnbatchedOrdersQueryHandler struct {
	readModel ports.BatchReadModel
}

func NewGetUnbatchedOrdersQueryHandler(readModel ports.BatchReadModel) GetUnbatchedOrdersQueryHandler {
	return GetUnbatchedOrdersQueryHandler{readModel: readModel}
}

func (h GetUnbatchedOrdersQueryHandler) Handle(ctx context.Context, query GetUnbatchedOrdersQuery) ([]ports.OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.readModel.UnbatchedOrders(ctx, query.Filter())
}

type GetDestinationsWithUnbatchedOrdersQueryHandler struct {
	readModel ports.BatchReadModel
}

func NewGetDestinationsWithUnbatchedOrdersQueryHandler(
	readModel ports.BatchReadModel,
) GetDestinationsWithUnbatchedOrdersQueryHandler {
	return GetDestinationsWithUnbatchedOrdersQueryHandler{readModel: readModel}
}

func (h GetDestinationsWithUnbatchedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetDestinationsWithUnbatchedOrdersQuery,
) ([]ports.DestinationSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.readModel.DestinationsWithUnbatchedOrders(ctx, query.OriginOfficeID())
}
