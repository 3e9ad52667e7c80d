// Package batchrepo maps batch aggregates and their member lists to the
// batches and batch_members tables.
package batchrepo

import (
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// BatchDTO is a row of the batches table. Totals are cached in the row so
// listings never aggregate members.
type BatchDTO struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Code                string           `gorm:"type:varchar(32);not null;uniqueIndex"`
	Status              int              `gorm:"type:smallint;not null;index"`
	OriginOfficeID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	DestinationOfficeID uuid.UUID        `gorm:"type:uuid;not null;index"`
	MaxWeightGrams      int64            `gorm:"type:bigint;not null"`
	TotalWeightGrams    int64            `gorm:"type:bigint;not null"`
	OrderCount          int              `gorm:"type:int;not null"`
	CreatedAt           time.Time        `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt           time.Time        `gorm:"not null;autoUpdateTime:false"`
	Members             []BatchMemberDTO `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
}

func (BatchDTO) TableName() string {
	return "batches"
}

// BatchMemberDTO links an order to a batch. The unique order_id index keeps
// an order in at most one batch even if a writer bypasses the aggregate.
type BatchMemberDTO struct {
	BatchID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:ux_batch_members_order_id"`
	WeightGrams int64     `gorm:"type:bigint;not null"`
}

func (BatchMemberDTO) TableName() string {
	return "batch_members"
}

func fromDomain(b *batch.Batch) BatchDTO {
	batchID := b.ID().Bytes()
	members := make([]BatchMemberDTO, 0, b.OrderCount())
	for _, m := range b.Members() {
		members = append(members, BatchMemberDTO{
			BatchID:     batchID,
			OrderID:     m.OrderID.Bytes(),
			WeightGrams: m.Weight.Grams(),
		})
	}

	return BatchDTO{
		ID:                  batchID,
		Code:                b.Code().String(),
		Status:              int(b.Status()),
		OriginOfficeID:      b.OriginOfficeID().Bytes(),
		DestinationOfficeID: b.DestinationOfficeID().Bytes(),
		MaxWeightGrams:      b.MaxWeight().Grams(),
		TotalWeightGrams:    b.TotalWeight().Grams(),
		OrderCount:          b.OrderCount(),
		CreatedAt:           b.CreatedAt(),
		UpdatedAt:           b.UpdatedAt(),
		Members:             members,
	}
}

func toDomain(dto BatchDTO) (*batch.Batch, error) {
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
	maxWeight, err := kernel.RestoreWeight(dto.MaxWeightGrams)
	if err != nil {
		return nil, err
	}
	totalWeight, err := kernel.RestoreWeight(dto.TotalWeightGrams)
	if err != nil {
		return nil, err
	}

	members := make([]batch.Member, 0, len(dto.Members))
	for _, m := range dto.Members {
		member, memberErr := memberToDomain(m)
		if memberErr != nil {
			return nil, memberErr
		}
		members = append(members, member)
	}

	return batch.RestoreBatch(
		id,
		batch.Code(dto.Code),
		batch.Status(dto.Status),
		origin,
		destination,
		maxWeight,
		totalWeight,
		members,
		dto.CreatedAt.UTC(),
		dto.UpdatedAt.UTC(),
	)
}

func memberToDomain(dto BatchMemberDTO) (batch.Member, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return batch.Member{}, err
	}
	weight, err := kernel.NewWeightFromGrams(dto.WeightGrams)
	if err != nil {
		return batch.Member{}, err
	}
	return batch.Member{OrderID: orderID, Weight: weight}, nil
}
