package command

import (
	"context"
	"fmt"

	"github.com/tair/commerce-core/internal/adjustment/domain"
	catalog "github.com/tair/commerce-core/internal/catalog/domain"
	inventory "github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/internal/sequence"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/logger"
)

const sequenceName = "adjustment"

// AdjustmentLineInput is one requested write-off line
type AdjustmentLineInput struct {
	ProductID  uint
	VariantSKU string
	Quantity   int
	Reason     domain.Reason
}

// CreateAdjustmentCommand represents the command to create an adjustment
type CreateAdjustmentCommand struct {
	Lines []AdjustmentLineInput
	Notes string
	Actor string
}

// CreateAdjustmentHandler handles adjustment creation. The operation is
// all-or-nothing: the whole batch is validated first and any invalid line
// aborts the request with a per-line error list and zero stock changes.
// The apply step runs in a single transaction with conditional decrements,
// so stock depleted between validation and apply still fails atomically.
type CreateAdjustmentHandler struct {
	products    catalog.ProductRepository
	mutator     inventory.StockMutator
	adjustments domain.AdjustmentRepository
	numbers     sequence.Generator
}

// NewCreateAdjustmentHandler creates a new create adjustment handler
func NewCreateAdjustmentHandler(
	products catalog.ProductRepository,
	mutator inventory.StockMutator,
	adjustments domain.AdjustmentRepository,
	numbers sequence.Generator,
) *CreateAdjustmentHandler {
	return &CreateAdjustmentHandler{
		products:    products,
		mutator:     mutator,
		adjustments: adjustments,
		numbers:     numbers,
	}
}

// Handle executes the create adjustment command
func (h *CreateAdjustmentHandler) Handle(ctx context.Context, cmd CreateAdjustmentCommand) (*domain.Adjustment, error) {
	if len(cmd.Lines) == 0 {
		return nil, apperror.Validation("At least one adjustment line is required")
	}

	if lineErrs := h.validate(ctx, cmd.Lines); len(lineErrs) > 0 {
		return nil, apperror.ValidationBatch(lineErrs)
	}

	number, err := h.numbers.Next(ctx, sequenceName, "ADJ")
	if err != nil {
		return nil, err
	}

	deltas := make([]inventory.Delta, len(cmd.Lines))
	for i, line := range cmd.Lines {
		deltas[i] = inventory.Delta{
			ProductID:  line.ProductID,
			VariantSKU: line.VariantSKU,
			Quantity:   -line.Quantity,
			Type:       inventory.LedgerTypeAdjustment,
			Reason:     string(line.Reason),
			Reference:  number,
			Actor:      cmd.Actor,
			Notes:      cmd.Notes,
		}
	}

	applied, err := h.mutator.ApplyAll(ctx, deltas)
	if err != nil {
		return nil, err
	}

	adjustment := &domain.Adjustment{
		Number: number,
		Actor:  cmd.Actor,
		Notes:  cmd.Notes,
	}
	for i, line := range cmd.Lines {
		adjustment.Lines = append(adjustment.Lines, domain.AdjustmentLine{
			ProductID:     line.ProductID,
			VariantSKU:    line.VariantSKU,
			Quantity:      line.Quantity,
			Reason:        line.Reason,
			PreviousStock: applied[i].PreviousStock,
			NewStock:      applied[i].NewStock,
		})
		adjustment.TotalQuantity += line.Quantity
	}

	if err := h.adjustments.Create(ctx, adjustment); err != nil {
		logger.Error(ctx).Err(err).Str("number", number).Msg("Failed to persist adjustment document")
		return nil, err
	}

	logger.Info(ctx).
		Str("number", number).
		Int("lines", len(adjustment.Lines)).
		Int("total_quantity", adjustment.TotalQuantity).
		Str("actor", cmd.Actor).
		Msg("Adjustment created")

	return adjustment, nil
}

// validate checks the whole batch before any mutation is attempted
func (h *CreateAdjustmentHandler) validate(ctx context.Context, lines []AdjustmentLineInput) []apperror.LineError {
	var lineErrs []apperror.LineError
	for i, line := range lines {
		if msg := h.validateLine(ctx, line); msg != "" {
			lineErrs = append(lineErrs, apperror.LineError{Index: i, Message: msg})
		}
	}
	return lineErrs
}

func (h *CreateAdjustmentHandler) validateLine(ctx context.Context, line AdjustmentLineInput) string {
	if line.ProductID == 0 {
		return "product_id is required"
	}
	if line.Quantity <= 0 {
		return "Quantity must be greater than 0"
	}
	if !domain.ValidReason(line.Reason) {
		return fmt.Sprintf("Unknown adjustment reason '%s'", line.Reason)
	}

	product, err := h.products.FindByID(ctx, line.ProductID)
	if err != nil {
		return apperror.MessageOf(err)
	}

	current := product.TotalStock
	if line.VariantSKU != "" {
		variant, err := h.products.FindVariant(ctx, line.ProductID, line.VariantSKU)
		if err != nil {
			return apperror.MessageOf(err)
		}
		current = variant.StockQuantity
	} else if product.HasVariants() {
		return fmt.Sprintf("Product %d has variants; specify a variant SKU", line.ProductID)
	}

	if line.Quantity > current {
		return fmt.Sprintf("Cannot remove %d items. Current stock is only %d.", line.Quantity, current)
	}
	return ""
}
