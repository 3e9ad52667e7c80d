package http

import (
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/ports"
	"consolidation/internal/generated/servers"
	"consolidation/internal/pkg/errs"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

func toKernelUUID(paramName string, id openapi_types.UUID) (kernel.UUID, error) {
	u, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(paramName, err)
	}
	return u, nil
}

func toKernelUUIDPtr(paramName string, id *openapi_types.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	u, err := toKernelUUID(paramName, *id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func toKernelUUIDs(paramName string, ids []openapi_types.UUID) ([]kernel.UUID, error) {
	out := make([]kernel.UUID, 0, len(ids))
	for _, id := range ids {
		u, err := toKernelUUID(paramName, id)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func batchResponse(b *batch.Batch) servers.Batch {
	return servers.Batch{
		Id:                  b.ID().Bytes(),
		Code:                b.Code().String(),
		Status:              b.Status().String(),
		OriginOfficeId:      b.OriginOfficeID().Bytes(),
		DestinationOfficeId: b.DestinationOfficeID().Bytes(),
		MaxWeightKg:         b.MaxWeight().Kg(),
		TotalWeightKg:       b.TotalWeight().Kg(),
		OrderCount:          b.OrderCount(),
		CreatedAt:           b.CreatedAt(),
		UpdatedAt:           b.UpdatedAt(),
	}
}

func batchViewResponse(v ports.BatchView, withOrders bool) servers.Batch {
	resp := servers.Batch{
		Id:                  v.ID.Bytes(),
		Code:                v.Code.String(),
		Status:              v.Status.String(),
		OriginOfficeId:      v.OriginOfficeID.Bytes(),
		DestinationOfficeId: v.DestinationOfficeID.Bytes(),
		MaxWeightKg:         v.MaxWeight.Kg(),
		TotalWeightKg:       v.TotalWeight.Kg(),
		OrderCount:          v.OrderCount,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
	if withOrders {
		batchID := v.ID.Bytes()
		orders := make([]servers.Order, len(v.Orders))
		for i, o := range v.Orders {
			orders[i] = orderViewResponse(o)
			orders[i].BatchId = &batchID
		}
		resp.Orders = &orders
	}
	return resp
}

func orderViewResponse(o ports.OrderView) servers.Order {
	createdAt := o.CreatedAt
	return servers.Order{
		Id:                  o.ID.Bytes(),
		TrackingNumber:      o.TrackingNumber,
		WeightKg:            o.Weight.Kg(),
		OriginOfficeId:      o.OriginOfficeID.Bytes(),
		DestinationOfficeId: o.DestinationOfficeID.Bytes(),
		Status:              o.Status.String(),
		CreatedAt:           &createdAt,
	}
}

func orderResponse(o *order.Order) servers.Order {
	createdAt := o.CreatedAt()
	resp := servers.Order{
		Id:                  o.ID().Bytes(),
		TrackingNumber:      o.TrackingNumber(),
		WeightKg:            o.Weight().Kg(),
		OriginOfficeId:      o.OriginOfficeID().Bytes(),
		DestinationOfficeId: o.DestinationOfficeID().Bytes(),
		Status:              o.Status().String(),
		CreatedAt:           &createdAt,
	}
	if id := o.BatchID(); id != nil {
		batchID := id.Bytes()
		resp.BatchId = &batchID
	}
	return resp
}

func batchPageResponse(page ports.Page[ports.BatchView]) servers.BatchPage {
	items := make([]servers.Batch, len(page.Items))
	for i, v := range page.Items {
		items[i] = batchViewResponse(v, false)
	}
	return servers.BatchPage{
		Items:      items,
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
}

func destinationResponse(d ports.DestinationSummary) servers.DestinationSummary {
	resp := servers.DestinationSummary{
		OfficeId:            d.DestinationOfficeID.Bytes(),
		UnbatchedOrderCount: d.OrderCount,
		TotalWeightKg:       d.TotalWeight.Kg(),
		OpenBatchCount:      d.OpenBatchCount,
	}
	if !d.OldestCreatedAt.IsZero() {
		oldest := d.OldestCreatedAt
		resp.OldestCreatedAt = &oldest
	}
	return resp
}
