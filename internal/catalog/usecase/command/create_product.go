package command

import (
	"context"

	"github.com/tair/commerce-core/internal/catalog/domain"
	inventory "github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/logger"
)

// VariantInput describes one variant at product creation
type VariantInput struct {
	SKU               string
	Name              string
	StockQuantity     int
	CostPrice         float64
	CurrentPrice      float64
	LowStockThreshold int
}

// CreateProductCommand represents the command to create a product
type CreateProductCommand struct {
	Name              string
	Description       string
	Category          string
	SKU               string
	Price             float64
	InitialStock      int
	LowStockThreshold int
	IsActive          bool
	Variants          []VariantInput
	Actor             string
}

// CreateProductHandler handles product creation. Initial stock is applied
// through the stock mutator so even the first units show up in the ledger.
type CreateProductHandler struct {
	repo    domain.ProductRepository
	mutator inventory.StockMutator
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(repo domain.ProductRepository, mutator inventory.StockMutator) *CreateProductHandler {
	return &CreateProductHandler{repo: repo, mutator: mutator}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	if cmd.Name == "" {
		return nil, apperror.Validation("Product name is required")
	}
	if cmd.SKU == "" {
		return nil, apperror.Validation("Product SKU is required")
	}
	if cmd.Price < 0 {
		return nil, apperror.Validation("Price must not be negative")
	}
	if cmd.InitialStock < 0 {
		return nil, apperror.Validation("Initial stock must not be negative")
	}
	if len(cmd.Variants) > 0 && cmd.InitialStock > 0 {
		return nil, apperror.Validation("Initial stock of a variant product is set per variant")
	}

	threshold := cmd.LowStockThreshold
	if threshold <= 0 {
		threshold = domain.DefaultLowStockThreshold
	}

	product := &domain.Product{
		Name:              cmd.Name,
		Description:       cmd.Description,
		Category:          cmd.Category,
		SKU:               cmd.SKU,
		Price:             cmd.Price,
		LowStockThreshold: threshold,
		IsActive:          cmd.IsActive,
	}
	for _, v := range cmd.Variants {
		if v.SKU == "" {
			return nil, apperror.Validation("Variant SKU is required")
		}
		if v.StockQuantity < 0 {
			return nil, apperror.Validation("Variant stock must not be negative")
		}
		vt := v.LowStockThreshold
		if vt <= 0 {
			vt = domain.DefaultLowStockThreshold
		}
		product.Variants = append(product.Variants, domain.Variant{
			SKU:               v.SKU,
			Name:              v.Name,
			CostPrice:         v.CostPrice,
			CurrentPrice:      v.CurrentPrice,
			LowStockThreshold: vt,
		})
	}

	if err := h.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	// Record the initial stock through the mutator so the ledger covers the
	// product from its very first unit.
	var deltas []inventory.Delta
	if cmd.InitialStock > 0 {
		deltas = append(deltas, inventory.Delta{
			ProductID: product.ID,
			Quantity:  cmd.InitialStock,
			Type:      inventory.LedgerTypeAdd,
			Reason:    "initial_stock",
			Actor:     cmd.Actor,
		})
	}
	for _, v := range cmd.Variants {
		if v.StockQuantity > 0 {
			deltas = append(deltas, inventory.Delta{
				ProductID:  product.ID,
				VariantSKU: v.SKU,
				Quantity:   v.StockQuantity,
				Type:       inventory.LedgerTypeAdd,
				Reason:     "initial_stock",
				Actor:      cmd.Actor,
			})
		}
	}
	if len(deltas) > 0 {
		if _, err := h.mutator.ApplyAll(ctx, deltas); err != nil {
			return nil, err
		}
	}

	created, err := h.repo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("product_id", created.ID).
		Str("sku", created.SKU).
		Int("variants", len(created.Variants)).
		Int("total_stock", created.TotalStock).
		Msg("Product created")

	return created, nil
}
