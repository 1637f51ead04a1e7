package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tair/commerce-core/internal/adjustment/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

type GormAdjustmentRepository struct {
	db *gorm.DB
}

func NewGormAdjustmentRepository(db *gorm.DB) *GormAdjustmentRepository {
	return &GormAdjustmentRepository{db: db}
}

func (r *GormAdjustmentRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Adjustment{}, &domain.AdjustmentLine{})
}

func (r *GormAdjustmentRepository) Create(ctx context.Context, adjustment *domain.Adjustment) error {
	if err := r.db.WithContext(ctx).Create(adjustment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.DuplicateReference(adjustment.Number)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *GormAdjustmentRepository) FindByID(ctx context.Context, id uint) (*domain.Adjustment, error) {
	var adjustment domain.Adjustment
	err := r.db.WithContext(ctx).Preload("Lines").First(&adjustment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Adjustment %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	return &adjustment, nil
}

func (r *GormAdjustmentRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Adjustment, error) {
	var adjustments []domain.Adjustment
	err := r.db.WithContext(ctx).Preload("Lines").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&adjustments).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return adjustments, nil
}
