package batchrepo

import (
	"context"
	"errors"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormBatchRepository implements BatchRepository using GORM.
type GormBatchRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormBatchRepository(db *gorm.DB, tracker aggregateTracker) *GormBatchRepository {
	return &GormBatchRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the batch row and its members. Members are written
// separately so a duplicate order surfaces as an error instead of being
// skipped by GORM's association upsert.
func (r *GormBatchRepository) Add(ctx context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	if err := db.Omit("Members").Create(&dto).Error; err != nil {
		return err
	}
	if len(dto.Members) > 0 {
		if err := db.Create(&dto.Members).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update rewrites the batch row and replaces its member list.
func (r *GormBatchRepository) Update(ctx context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&BatchDTO{}).Where("id = ?", dto.ID).Updates(map[string]any{
		"status":             dto.Status,
		"total_weight_grams": dto.TotalWeightGrams,
		"order_count":        dto.OrderCount,
		"updated_at":         dto.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("batch", aggregate.ID().String())
	}

	if err := db.Where("batch_id = ?", dto.ID).Delete(&BatchMemberDTO{}).Error; err != nil {
		return err
	}
	if len(dto.Members) > 0 {
		if err := db.Create(&dto.Members).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormBatchRepository) Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BatchDTO
	if err := r.preloaded(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("batch", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormBatchRepository) GetByCode(ctx context.Context, code batch.Code) (*batch.Batch, error) {
	var dto BatchDTO
	if err := r.preloaded(ctx).First(&dto, "code = ?", code.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("batchCode", code.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormBatchRepository) CodeExists(ctx context.Context, code batch.Code) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BatchDTO{}).Where("code = ?", code.String()).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormBatchRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_id")
	})
}
