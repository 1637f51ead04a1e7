package query

import (
	"context"

	"github.com/tair/commerce-core/internal/purchase/domain"
)

// ListPurchasesQuery represents the query to list purchases
type ListPurchasesQuery struct {
	Limit  int
	Offset int
}

// ListPurchasesHandler handles list purchases queries
type ListPurchasesHandler struct {
	repo domain.PurchaseRepository
}

// NewListPurchasesHandler creates a new list purchases handler
func NewListPurchasesHandler(repo domain.PurchaseRepository) *ListPurchasesHandler {
	return &ListPurchasesHandler{repo: repo}
}

// Handle executes the list purchases query
func (h *ListPurchasesHandler) Handle(ctx context.Context, q ListPurchasesQuery) ([]domain.Purchase, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return h.repo.FindAll(ctx, q.Limit, q.Offset)
}
