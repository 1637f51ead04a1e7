package command

import (
	"context"

	"github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/logger"
)

// BulkUpdateCommand carries a batch of independent stock edits
type BulkUpdateCommand struct {
	Items []UpdateStockCommand
	Actor string
}

// BulkLineResult reports the outcome of one line in a bulk update
type BulkLineResult struct {
	Index   int             `json:"index"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Applied *domain.Applied `json:"applied,omitempty"`
}

// BulkUpdateHandler handles bulk stock update commands. Unlike adjustments,
// bulk lines are independent: each valid line is applied even when other
// lines fail, and the caller gets a per-line result list.
type BulkUpdateHandler struct {
	update *UpdateStockHandler
}

// NewBulkUpdateHandler creates a new bulk update handler
func NewBulkUpdateHandler(update *UpdateStockHandler) *BulkUpdateHandler {
	return &BulkUpdateHandler{update: update}
}

// Handle executes the bulk update command
func (h *BulkUpdateHandler) Handle(ctx context.Context, cmd BulkUpdateCommand) ([]BulkLineResult, error) {
	if len(cmd.Items) == 0 {
		return nil, apperror.Validation("At least one item is required")
	}

	results := make([]BulkLineResult, 0, len(cmd.Items))
	failures := 0
	for i, item := range cmd.Items {
		if item.Actor == "" {
			item.Actor = cmd.Actor
		}
		applied, err := h.update.Handle(ctx, item)
		if err != nil {
			failures++
			results = append(results, BulkLineResult{
				Index: i,
				Error: apperror.MessageOf(err),
			})
			continue
		}
		results = append(results, BulkLineResult{
			Index:   i,
			Success: true,
			Applied: applied,
		})
	}

	logger.Info(ctx).
		Int("lines", len(cmd.Items)).
		Int("failed", failures).
		Str("actor", cmd.Actor).
		Msg("Bulk stock update processed")

	return results, nil
}
