package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tair/commerce-core/internal/purchase/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

type GormPurchaseRepository struct {
	db *gorm.DB
}

func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

func (r *GormPurchaseRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Purchase{}, &domain.PurchaseLine{})
}

func (r *GormPurchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) error {
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		// A collision on the generated number is a retryable conflict
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.DuplicateReference(purchase.Number)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uint) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := r.db.WithContext(ctx).Preload("Lines").First(&purchase, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Purchase %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	return &purchase, nil
}

func (r *GormPurchaseRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	err := r.db.WithContext(ctx).Preload("Lines").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&purchases).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return purchases, nil
}
