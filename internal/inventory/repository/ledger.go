package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

type GormLedgerRepository struct {
	db *gorm.DB
}

func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

func (r *GormLedgerRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.LedgerEntry{})
}

func (r *GormLedgerRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *GormLedgerRepository) FindByProduct(ctx context.Context, productID uint, variantSKU string, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.LedgerEntry{}).
		Where("product_id = ?", productID)
	if variantSKU != "" {
		q = q.Where("variant_sku = ?", variantSKU)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal(err)
	}

	var entries []domain.LedgerEntry
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return entries, total, nil
}

func (r *GormLedgerRepository) SummarizeByType(ctx context.Context, since time.Time) ([]domain.TypeSummary, error) {
	var summaries []domain.TypeSummary
	err := r.db.WithContext(ctx).Model(&domain.LedgerEntry{}).
		Select("type, COUNT(*) AS entries, COALESCE(SUM(quantity), 0) AS total_quantity").
		Where("created_at >= ?", since).
		Group("type").
		Scan(&summaries).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return summaries, nil
}
