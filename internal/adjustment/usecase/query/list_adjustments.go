package query

import (
	"context"

	"github.com/tair/commerce-core/internal/adjustment/domain"
)

// ListAdjustmentsQuery represents the query to list adjustments
type ListAdjustmentsQuery struct {
	Limit  int
	Offset int
}

// ListAdjustmentsHandler handles list adjustments queries
type ListAdjustmentsHandler struct {
	repo domain.AdjustmentRepository
}

// NewListAdjustmentsHandler creates a new list adjustments handler
func NewListAdjustmentsHandler(repo domain.AdjustmentRepository) *ListAdjustmentsHandler {
	return &ListAdjustmentsHandler{repo: repo}
}

// Handle executes the list adjustments query
func (h *ListAdjustmentsHandler) Handle(ctx context.Context, q ListAdjustmentsQuery) ([]domain.Adjustment, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return h.repo.FindAll(ctx, q.Limit, q.Offset)
}
