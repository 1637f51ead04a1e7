package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	catalog "github.com/tair/commerce-core/internal/catalog/domain"
	"github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

// GormStockMutator applies stock deltas as atomic conditional updates
// against storage. A variant decrement is one UPDATE guarded by
// "stock_quantity + delta >= 0": two concurrent confirmations of the last
// unit can never both succeed, whatever each of them read beforehand.
type GormStockMutator struct {
	db *gorm.DB
}

func NewGormStockMutator(db *gorm.DB) *GormStockMutator {
	return &GormStockMutator{db: db}
}

func (m *GormStockMutator) Apply(ctx context.Context, delta domain.Delta) (*domain.Applied, error) {
	var applied *domain.Applied
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		applied, txErr = applyDelta(tx, delta)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

// ApplyAll applies every delta in a single transaction. The first failing
// delta rolls the whole batch back, so callers see either all mutations and
// ledger entries or none.
func (m *GormStockMutator) ApplyAll(ctx context.Context, deltas []domain.Delta) ([]domain.Applied, error) {
	results := make([]domain.Applied, 0, len(deltas))
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, delta := range deltas {
			applied, txErr := applyDelta(tx, delta)
			if txErr != nil {
				return txErr
			}
			results = append(results, *applied)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func applyDelta(tx *gorm.DB, delta domain.Delta) (*domain.Applied, error) {
	if delta.Quantity == 0 {
		return nil, apperror.Validation("Quantity must not be zero")
	}
	if !domain.ValidLedgerType(delta.Type) {
		return nil, apperror.Validation("Unknown stock mutation type '%s'", delta.Type)
	}

	if delta.VariantSKU != "" {
		return applyVariantDelta(tx, delta)
	}
	return applyProductDelta(tx, delta)
}

func applyVariantDelta(tx *gorm.DB, delta domain.Delta) (*domain.Applied, error) {
	res := tx.Model(&catalog.Variant{}).
		Where("product_id = ? AND sku = ? AND stock_quantity + ? >= 0",
			delta.ProductID, delta.VariantSKU, delta.Quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta.Quantity))
	if res.Error != nil {
		return nil, apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the variant does not exist or the guard rejected the delta
		var variant catalog.Variant
		err := tx.Where("product_id = ? AND sku = ?", delta.ProductID, delta.VariantSKU).
			First(&variant).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Variant '%s' not found for product %d", delta.VariantSKU, delta.ProductID)
		}
		if err != nil {
			return nil, apperror.Internal(err)
		}
		return nil, apperror.InsufficientStock(-delta.Quantity, variant.StockQuantity)
	}

	var variant catalog.Variant
	if err := tx.Where("product_id = ? AND sku = ?", delta.ProductID, delta.VariantSKU).
		First(&variant).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	if delta.UnitCost != nil {
		// Last-purchase price always overwrites, not a weighted average
		if err := tx.Model(&catalog.Variant{}).
			Where("id = ?", variant.ID).
			UpdateColumn("cost_price", *delta.UnitCost).Error; err != nil {
			return nil, apperror.Internal(err)
		}
	}

	if err := recomputeAggregate(tx, delta.ProductID); err != nil {
		return nil, err
	}

	entry, err := appendEntry(tx, delta, &variant.ID, variant.StockQuantity)
	if err != nil {
		return nil, err
	}

	return &domain.Applied{
		ProductID:         delta.ProductID,
		VariantSKU:        delta.VariantSKU,
		PreviousStock:     variant.StockQuantity - delta.Quantity,
		NewStock:          variant.StockQuantity,
		LowStockThreshold: variant.LowStockThreshold,
		Entry:             entry,
	}, nil
}

func applyProductDelta(tx *gorm.DB, delta domain.Delta) (*domain.Applied, error) {
	// Aggregate stock of a variant-managed product is derived, never mutated
	// directly.
	var variantCount int64
	if err := tx.Model(&catalog.Variant{}).
		Where("product_id = ?", delta.ProductID).
		Count(&variantCount).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	if variantCount > 0 {
		return nil, apperror.Validation("Product %d has variants; specify a variant SKU", delta.ProductID)
	}

	res := tx.Model(&catalog.Product{}).
		Where("id = ? AND total_stock + ? >= 0", delta.ProductID, delta.Quantity).
		UpdateColumn("total_stock", gorm.Expr("total_stock + ?", delta.Quantity))
	if res.Error != nil {
		return nil, apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		var product catalog.Product
		err := tx.First(&product, delta.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Product %d not found", delta.ProductID)
		}
		if err != nil {
			return nil, apperror.Internal(err)
		}
		return nil, apperror.InsufficientStock(-delta.Quantity, product.TotalStock)
	}

	var product catalog.Product
	if err := tx.First(&product, delta.ProductID).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	if delta.UnitCost != nil {
		if err := tx.Model(&catalog.Product{}).
			Where("id = ?", product.ID).
			UpdateColumn("cost_price", *delta.UnitCost).Error; err != nil {
			return nil, apperror.Internal(err)
		}
	}

	entry, err := appendEntry(tx, delta, nil, product.TotalStock)
	if err != nil {
		return nil, err
	}

	return &domain.Applied{
		ProductID:         delta.ProductID,
		PreviousStock:     product.TotalStock - delta.Quantity,
		NewStock:          product.TotalStock,
		LowStockThreshold: product.LowStockThreshold,
		Entry:             entry,
	}, nil
}

// recomputeAggregate keeps total_stock equal to the sum of variant stock,
// inside the same transaction as the variant mutation.
func recomputeAggregate(tx *gorm.DB, productID uint) error {
	err := tx.Exec(
		`UPDATE products
		 SET total_stock = (
		     SELECT COALESCE(SUM(stock_quantity), 0)
		     FROM variants
		     WHERE product_id = ? AND deleted_at IS NULL
		 ),
		 updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		productID, productID,
	).Error
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func appendEntry(tx *gorm.DB, delta domain.Delta, variantID *uint, newStock int) (*domain.LedgerEntry, error) {
	quantity := delta.Quantity
	if quantity < 0 {
		quantity = -quantity
	}
	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		ProductID:     delta.ProductID,
		VariantID:     variantID,
		VariantSKU:    delta.VariantSKU,
		Type:          delta.Type,
		Quantity:      quantity,
		PreviousStock: newStock - delta.Quantity,
		NewStock:      newStock,
		Reason:        delta.Reason,
		Reference:     delta.Reference,
		Actor:         delta.Actor,
		UnitCost:      delta.UnitCost,
		Notes:         delta.Notes,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return entry, nil
}
