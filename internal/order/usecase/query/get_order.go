package query

import (
	"context"

	"github.com/tair/commerce-core/internal/order/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

// GetOrderQuery represents the query to get an order by id
type GetOrderQuery struct {
	OrderID uint
}

// GetOrderHandler handles get order queries
type GetOrderHandler struct {
	repo domain.OrderRepository
}

// NewGetOrderHandler creates a new get order handler
func NewGetOrderHandler(repo domain.OrderRepository) *GetOrderHandler {
	return &GetOrderHandler{repo: repo}
}

// Handle executes the get order query
func (h *GetOrderHandler) Handle(ctx context.Context, q GetOrderQuery) (*domain.Order, error) {
	if q.OrderID == 0 {
		return nil, apperror.Validation("order id is required")
	}
	return h.repo.FindByID(ctx, q.OrderID)
}
