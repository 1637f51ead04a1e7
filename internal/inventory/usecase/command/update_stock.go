package command

import (
	"context"

	"github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/logger"
)

// UpdateStockCommand represents a single manual stock edit
type UpdateStockCommand struct {
	ProductID  uint
	VariantSKU string
	Type       domain.LedgerType
	Quantity   int
	Reason     string
	Reference  string
	UnitCost   *float64
	Notes      string
	Actor      string
}

// UpdateStockHandler handles single stock update commands
type UpdateStockHandler struct {
	mutator  domain.StockMutator
	notifier domain.LowStockNotifier
}

// NewUpdateStockHandler creates a new update stock handler
func NewUpdateStockHandler(mutator domain.StockMutator, notifier domain.LowStockNotifier) *UpdateStockHandler {
	return &UpdateStockHandler{mutator: mutator, notifier: notifier}
}

// Handle executes the update stock command
func (h *UpdateStockHandler) Handle(ctx context.Context, cmd UpdateStockCommand) (*domain.Applied, error) {
	delta, err := cmd.delta()
	if err != nil {
		return nil, err
	}

	applied, err := h.mutator.Apply(ctx, delta)
	if err != nil {
		return nil, err
	}

	if h.notifier != nil && applied.LowStock() {
		// Best-effort: a lost notification never fails the stock edit
		h.notifier.NotifyLowStock(ctx, *applied)
	}

	logger.Info(ctx).
		Uint("product_id", cmd.ProductID).
		Str("variant_sku", cmd.VariantSKU).
		Str("type", string(cmd.Type)).
		Int("quantity", cmd.Quantity).
		Int("new_stock", applied.NewStock).
		Str("actor", cmd.Actor).
		Msg("Stock updated")

	return applied, nil
}

func (cmd UpdateStockCommand) delta() (domain.Delta, error) {
	if cmd.ProductID == 0 {
		return domain.Delta{}, apperror.Validation("product_id is required")
	}
	if cmd.Quantity <= 0 {
		return domain.Delta{}, apperror.Validation("Quantity must be greater than 0")
	}
	if !domain.ValidLedgerType(cmd.Type) {
		return domain.Delta{}, apperror.Validation("Unknown stock mutation type '%s'", cmd.Type)
	}
	if cmd.Reason == "" {
		return domain.Delta{}, apperror.Validation("Reason is required")
	}
	if cmd.UnitCost != nil && *cmd.UnitCost < 0 {
		return domain.Delta{}, apperror.Validation("Unit cost must not be negative")
	}

	quantity := cmd.Quantity
	if cmd.Type != domain.LedgerTypeAdd {
		quantity = -quantity
	}

	return domain.Delta{
		ProductID:  cmd.ProductID,
		VariantSKU: cmd.VariantSKU,
		Quantity:   quantity,
		Type:       cmd.Type,
		Reason:     cmd.Reason,
		Reference:  cmd.Reference,
		Actor:      cmd.Actor,
		UnitCost:   cmd.UnitCost,
		Notes:      cmd.Notes,
	}, nil
}
