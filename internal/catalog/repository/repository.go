package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tair/commerce-core/internal/catalog/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Product{}, &domain.Variant{})
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Preload("Variants").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Product %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	return &product, nil
}

func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Preload("Variants").Where("sku = ?", sku).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Product with SKU '%s' not found", sku)
		}
		return nil, apperror.Internal(err)
	}
	return &product, nil
}

func (r *GormProductRepository) FindVariant(ctx context.Context, productID uint, sku string) (*domain.Variant, error) {
	var variant domain.Variant
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND sku = ?", productID, sku).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Variant '%s' not found for product %d", sku, productID)
		}
		return nil, apperror.Internal(err)
	}
	return &variant, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal(err)
	}
	var products []domain.Product
	err := r.db.WithContext(ctx).Preload("Variants").Limit(limit).Offset(offset).Find(&products).Error
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return products, total, nil
}

func (r *GormProductRepository) FindByCategory(ctx context.Context, category string, limit, offset int) ([]domain.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("category = ?", category).Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal(err)
	}
	var products []domain.Product
	err := r.db.WithContext(ctx).Preload("Variants").
		Where("category = ?", category).
		Limit(limit).Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return products, total, nil
}

// Update writes the product's scalar columns. Stock and cost columns belong
// to the stock mutator and associations are never written through here.
func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Select("name", "description", "category", "price", "low_stock_threshold", "is_active").
		Updates(product)
	if res.Error != nil {
		return apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Product %d not found", product.ID)
	}
	return nil
}

// UpdateVariant writes a variant's scalar columns by id, leaving
// stock_quantity to the mutator.
func (r *GormProductRepository) UpdateVariant(ctx context.Context, variant *domain.Variant) error {
	res := r.db.WithContext(ctx).Model(&domain.Variant{}).
		Where("id = ?", variant.ID).
		Select("name", "cost_price", "current_price", "low_stock_threshold").
		Updates(variant)
	if res.Error != nil {
		return apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Variant %d not found", variant.ID)
	}
	return nil
}

func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&count).Error; err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

// IncrementSoldCount bumps the lifetime-sold counter with a server-side
// atomic increment.
func (r *GormProductRepository) IncrementSoldCount(ctx context.Context, productID uint, quantity int) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", productID).
		UpdateColumn("sold_count", gorm.Expr("sold_count + ?", quantity))
	if res.Error != nil {
		return apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Product %d not found", productID)
	}
	return nil
}
