package query

import (
	"context"

	"github.com/tair/commerce-core/internal/purchase/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

// GetPurchaseQuery represents the query to get a purchase by id
type GetPurchaseQuery struct {
	PurchaseID uint
}

// GetPurchaseHandler handles get purchase queries
type GetPurchaseHandler struct {
	repo domain.PurchaseRepository
}

// NewGetPurchaseHandler creates a new get purchase handler
func NewGetPurchaseHandler(repo domain.PurchaseRepository) *GetPurchaseHandler {
	return &GetPurchaseHandler{repo: repo}
}

// Handle executes the get purchase query
func (h *GetPurchaseHandler) Handle(ctx context.Context, q GetPurchaseQuery) (*domain.Purchase, error) {
	if q.PurchaseID == 0 {
		return nil, apperror.Validation("purchase id is required")
	}
	return h.repo.FindByID(ctx, q.PurchaseID)
}
