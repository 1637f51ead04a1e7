package query

import (
	"context"

	"github.com/tair/commerce-core/internal/order/domain"
)

// ListOrdersQuery represents the query to list orders, optionally scoped to
// one user
type ListOrdersQuery struct {
	UserID uint
	Limit  int
	Offset int
}

// ListOrdersHandler handles list orders queries
type ListOrdersHandler struct {
	repo domain.OrderRepository
}

// NewListOrdersHandler creates a new list orders handler
func NewListOrdersHandler(repo domain.OrderRepository) *ListOrdersHandler {
	return &ListOrdersHandler{repo: repo}
}

// Handle executes the list orders query
func (h *ListOrdersHandler) Handle(ctx context.Context, q ListOrdersQuery) ([]domain.Order, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.UserID != 0 {
		return h.repo.FindByUser(ctx, q.UserID, q.Limit, q.Offset)
	}
	return h.repo.FindAll(ctx, q.Limit, q.Offset)
}
