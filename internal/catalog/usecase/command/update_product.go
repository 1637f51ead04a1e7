package command

import (
	"context"

	"github.com/tair/commerce-core/internal/catalog/domain"
	inventory "github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/logger"
)

// VariantPatch updates a single variant by SKU. Nil fields are left unchanged.
type VariantPatch struct {
	SKU               string
	Name              *string
	StockQuantity     *int
	CostPrice         *float64
	CurrentPrice      *float64
	LowStockThreshold *int
}

// UpdateProductCommand represents the command to update a product.
// Nil fields are left unchanged.
type UpdateProductCommand struct {
	ProductID         uint
	Name              *string
	Description       *string
	Category          *string
	Price             *float64
	LowStockThreshold *int
	IsActive          *bool
	TotalStock        *int
	Variants          []VariantPatch
	Actor             string
}

// UpdateProductHandler handles product updates. Stock fields are never
// written directly: any change against the stored value is turned into a
// delta and routed through the stock mutator so the edit lands in the ledger.
type UpdateProductHandler struct {
	repo    domain.ProductRepository
	mutator inventory.StockMutator
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(repo domain.ProductRepository, mutator inventory.StockMutator) *UpdateProductHandler {
	return &UpdateProductHandler{repo: repo, mutator: mutator}
}

// Handle executes the update product command
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	product, err := h.repo.FindByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		if *cmd.Name == "" {
			return nil, apperror.Validation("Product name is required")
		}
		product.Name = *cmd.Name
	}
	if cmd.Description != nil {
		product.Description = *cmd.Description
	}
	if cmd.Category != nil {
		product.Category = *cmd.Category
	}
	if cmd.Price != nil {
		if *cmd.Price < 0 {
			return nil, apperror.Validation("Price must not be negative")
		}
		product.Price = *cmd.Price
	}
	if cmd.LowStockThreshold != nil {
		if *cmd.LowStockThreshold <= 0 {
			return nil, apperror.Validation("Low stock threshold must be positive")
		}
		product.LowStockThreshold = *cmd.LowStockThreshold
	}
	if cmd.IsActive != nil {
		product.IsActive = *cmd.IsActive
	}

	// Collect stock diffs before saving scalar fields. The mutator owns the
	// stock columns and the aggregate recompute.
	deltas, err := h.stockDeltas(product, cmd)
	if err != nil {
		return nil, err
	}

	// Variant field patches are written per row; the repository never saves
	// the association wholesale.
	patched := make([]*domain.Variant, 0, len(cmd.Variants))
	for _, patch := range cmd.Variants {
		variant := findVariant(product, patch.SKU)
		if variant == nil {
			return nil, apperror.NotFound("Variant '%s' not found for product %d", patch.SKU, product.ID)
		}
		touched := false
		if patch.Name != nil {
			variant.Name = *patch.Name
			touched = true
		}
		if patch.CostPrice != nil {
			if *patch.CostPrice < 0 {
				return nil, apperror.Validation("Cost price must not be negative")
			}
			variant.CostPrice = *patch.CostPrice
			touched = true
		}
		if patch.CurrentPrice != nil {
			if *patch.CurrentPrice < 0 {
				return nil, apperror.Validation("Price must not be negative")
			}
			variant.CurrentPrice = *patch.CurrentPrice
			touched = true
		}
		if patch.LowStockThreshold != nil {
			if *patch.LowStockThreshold <= 0 {
				return nil, apperror.Validation("Low stock threshold must be positive")
			}
			variant.LowStockThreshold = *patch.LowStockThreshold
			touched = true
		}
		if touched {
			patched = append(patched, variant)
		}
	}

	if err := h.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	for _, variant := range patched {
		if err := h.repo.UpdateVariant(ctx, variant); err != nil {
			return nil, err
		}
	}

	if len(deltas) > 0 {
		if _, err := h.mutator.ApplyAll(ctx, deltas); err != nil {
			return nil, err
		}
	}

	updated, err := h.repo.FindByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("product_id", updated.ID).
		Int("stock_edits", len(deltas)).
		Msg("Product updated")

	return updated, nil
}

func (h *UpdateProductHandler) stockDeltas(product *domain.Product, cmd UpdateProductCommand) ([]inventory.Delta, error) {
	var deltas []inventory.Delta

	if cmd.TotalStock != nil {
		if product.HasVariants() {
			return nil, apperror.Validation("Stock of a variant product is tracked per variant")
		}
		if *cmd.TotalStock < 0 {
			return nil, apperror.Validation("Stock must not be negative")
		}
		if diff := *cmd.TotalStock - product.TotalStock; diff != 0 {
			deltas = append(deltas, editDelta(product.ID, "", diff, cmd.Actor))
		}
	}

	for _, patch := range cmd.Variants {
		if patch.StockQuantity == nil {
			continue
		}
		variant := findVariant(product, patch.SKU)
		if variant == nil {
			return nil, apperror.NotFound("Variant '%s' not found for product %d", patch.SKU, product.ID)
		}
		if *patch.StockQuantity < 0 {
			return nil, apperror.Validation("Stock must not be negative")
		}
		if diff := *patch.StockQuantity - variant.StockQuantity; diff != 0 {
			deltas = append(deltas, editDelta(product.ID, patch.SKU, diff, cmd.Actor))
		}
	}
	return deltas, nil
}

func editDelta(productID uint, sku string, diff int, actor string) inventory.Delta {
	d := inventory.Delta{
		ProductID:  productID,
		VariantSKU: sku,
		Quantity:   diff,
		Reason:     "product_edit",
		Actor:      actor,
	}
	if diff > 0 {
		d.Type = inventory.LedgerTypeAdd
	} else {
		d.Type = inventory.LedgerTypeRemove
	}
	return d
}

func findVariant(product *domain.Product, sku string) *domain.Variant {
	for i := range product.Variants {
		if product.Variants[i].SKU == sku {
			return &product.Variants[i]
		}
	}
	return nil
}
