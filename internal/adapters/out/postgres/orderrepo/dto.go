// Package orderrepo maps order references to the orders table.
package orderrepo

import (
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is a row of the orders table. The composite pool index serves
// the unbatched pool scans, which filter on status and batch_id and sort by
// created_at.
type OrderDTO struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TrackingNumber      string     `gorm:"type:varchar(64);not null"`
	WeightGrams         int64      `gorm:"type:bigint;not null"`
	OriginOfficeID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_orders_pool,priority:3"`
	DestinationOfficeID uuid.UUID  `gorm:"type:uuid;not null;index:idx_orders_pool,priority:2"`
	Status              int        `gorm:"type:smallint;not null;index:idx_orders_pool,priority:1"`
	BatchID             *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt           time.Time  `gorm:"not null;index:idx_orders_pool,priority:4;autoCreateTime:false"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(o *order.Order) OrderDTO {
	var batchID *uuid.UUID
	if id := o.BatchID(); id != nil {
		raw := id.Bytes()
		batchID = &raw
	}

	return OrderDTO{
		ID:                  o.ID().Bytes(),
		TrackingNumber:      o.TrackingNumber(),
		WeightGrams:         o.Weight().Grams(),
		OriginOfficeID:      o.OriginOfficeID().Bytes(),
		DestinationOfficeID: o.DestinationOfficeID().Bytes(),
		Status:              int(o.Status()),
		BatchID:             batchID,
		CreatedAt:           o.CreatedAt(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	origin, err := kernel.UUIDFromBytes(dto.OriginOfficeID[:])
	if err != nil {
		return nil, err
	}
	destination, err := kernel.UUIDFromBytes(dto.DestinationOfficeID[:])
	if err != nil {
		return nil, err
	}
	weight, err := kernel.NewWeightFromGrams(dto.WeightGrams)
	if err != nil {
		return nil, err
	}

	var batchID *kernel.UUID
	if dto.BatchID != nil {
		bID, batchErr := kernel.UUIDFromBytes((*dto.BatchID)[:])
		if batchErr != nil {
			return nil, batchErr
		}
		batchID = &bID
	}

	return order.RestoreOrder(
		id,
		dto.TrackingNumber,
		weight,
		origin,
		destination,
		order.Status(dto.Status),
		batchID,
		dto.CreatedAt.UTC(),
	)
}
