package query

import (
	"context"

	"github.com/tair/commerce-core/internal/adjustment/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

// GetAdjustmentQuery represents the query to get an adjustment by id
type GetAdjustmentQuery struct {
	AdjustmentID uint
}

// GetAdjustmentHandler handles get adjustment queries
type GetAdjustmentHandler struct {
	repo domain.AdjustmentRepository
}

// NewGetAdjustmentHandler creates a new get adjustment handler
func NewGetAdjustmentHandler(repo domain.AdjustmentRepository) *GetAdjustmentHandler {
	return &GetAdjustmentHandler{repo: repo}
}

// Handle executes the get adjustment query
func (h *GetAdjustmentHandler) Handle(ctx context.Context, q GetAdjustmentQuery) (*domain.Adjustment, error) {
	if q.AdjustmentID == 0 {
		return nil, apperror.Validation("adjustment id is required")
	}
	return h.repo.FindByID(ctx, q.AdjustmentID)
}
