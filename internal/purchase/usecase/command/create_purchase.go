package command

import (
	"context"
	"fmt"

	catalog "github.com/tair/commerce-core/internal/catalog/domain"
	inventory "github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/internal/purchase/domain"
	"github.com/tair/commerce-core/internal/sequence"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/logger"
)

const sequenceName = "purchase"

// PurchaseLineInput is one requested restock line
type PurchaseLineInput struct {
	ProductID  uint
	VariantSKU string
	Quantity   int
	UnitCost   float64
}

// CreatePurchaseCommand represents the command to create a purchase
type CreatePurchaseCommand struct {
	Lines    []PurchaseLineInput
	Supplier string
	Notes    string
	Actor    string
}

// CreatePurchaseHandler handles purchase creation. The whole batch is
// validated before any stock is touched; a valid batch is then applied in
// one transaction together with its ledger entries.
type CreatePurchaseHandler struct {
	products  catalog.ProductRepository
	mutator   inventory.StockMutator
	purchases domain.PurchaseRepository
	numbers   sequence.Generator
}

// NewCreatePurchaseHandler creates a new create purchase handler
func NewCreatePurchaseHandler(
	products catalog.ProductRepository,
	mutator inventory.StockMutator,
	purchases domain.PurchaseRepository,
	numbers sequence.Generator,
) *CreatePurchaseHandler {
	return &CreatePurchaseHandler{
		products:  products,
		mutator:   mutator,
		purchases: purchases,
		numbers:   numbers,
	}
}

// Handle executes the create purchase command
func (h *CreatePurchaseHandler) Handle(ctx context.Context, cmd CreatePurchaseCommand) (*domain.Purchase, error) {
	if len(cmd.Lines) == 0 {
		return nil, apperror.Validation("At least one purchase line is required")
	}

	if lineErrs := h.validate(ctx, cmd.Lines); len(lineErrs) > 0 {
		return nil, apperror.ValidationBatch(lineErrs)
	}

	number, err := h.numbers.Next(ctx, sequenceName, "PUR")
	if err != nil {
		return nil, err
	}

	deltas := make([]inventory.Delta, len(cmd.Lines))
	for i, line := range cmd.Lines {
		unitCost := line.UnitCost
		deltas[i] = inventory.Delta{
			ProductID:  line.ProductID,
			VariantSKU: line.VariantSKU,
			Quantity:   line.Quantity,
			Type:       inventory.LedgerTypeAdd,
			Reason:     "purchase",
			Reference:  number,
			Actor:      cmd.Actor,
			UnitCost:   &unitCost,
			Notes:      cmd.Notes,
		}
	}

	applied, err := h.mutator.ApplyAll(ctx, deltas)
	if err != nil {
		return nil, err
	}

	purchase := &domain.Purchase{
		Number:   number,
		Supplier: cmd.Supplier,
		Actor:    cmd.Actor,
		Notes:    cmd.Notes,
	}
	for i, line := range cmd.Lines {
		lineTotal := float64(line.Quantity) * line.UnitCost
		purchase.Lines = append(purchase.Lines, domain.PurchaseLine{
			ProductID:     line.ProductID,
			VariantSKU:    line.VariantSKU,
			Quantity:      line.Quantity,
			UnitCost:      line.UnitCost,
			PreviousStock: applied[i].PreviousStock,
			NewStock:      applied[i].NewStock,
			LineTotal:     lineTotal,
		})
		purchase.TotalQuantity += line.Quantity
		purchase.TotalCost += lineTotal
	}

	if err := h.purchases.Create(ctx, purchase); err != nil {
		// Stock and ledger are already committed; the ledger entries tagged
		// with the purchase number remain the audit trail.
		logger.Error(ctx).Err(err).Str("number", number).Msg("Failed to persist purchase document")
		return nil, err
	}

	logger.Info(ctx).
		Str("number", number).
		Int("lines", len(purchase.Lines)).
		Int("total_quantity", purchase.TotalQuantity).
		Float64("total_cost", purchase.TotalCost).
		Str("actor", cmd.Actor).
		Msg("Purchase created")

	return purchase, nil
}

// validate checks every line before anything is applied
func (h *CreatePurchaseHandler) validate(ctx context.Context, lines []PurchaseLineInput) []apperror.LineError {
	var lineErrs []apperror.LineError
	for i, line := range lines {
		if msg := h.validateLine(ctx, line); msg != "" {
			lineErrs = append(lineErrs, apperror.LineError{Index: i, Message: msg})
		}
	}
	return lineErrs
}

func (h *CreatePurchaseHandler) validateLine(ctx context.Context, line PurchaseLineInput) string {
	if line.ProductID == 0 {
		return "product_id is required"
	}
	if line.Quantity <= 0 {
		return "Quantity must be greater than 0"
	}
	if line.UnitCost < 0 {
		return "Unit cost must not be negative"
	}
	product, err := h.products.FindByID(ctx, line.ProductID)
	if err != nil {
		return apperror.MessageOf(err)
	}
	if line.VariantSKU != "" {
		if _, err := h.products.FindVariant(ctx, line.ProductID, line.VariantSKU); err != nil {
			return apperror.MessageOf(err)
		}
	} else if product.HasVariants() {
		return fmt.Sprintf("Product %d has variants; specify a variant SKU", line.ProductID)
	}
	return ""
}
