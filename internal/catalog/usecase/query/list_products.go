package query

import (
	"context"

	"github.com/tair/commerce-core/internal/catalog/domain"
)

// ListProductsQuery represents the query to list products
type ListProductsQuery struct {
	Category string
	Page     int
	Limit    int
}

// ProductPage is one page of products
type ProductPage struct {
	Products []domain.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// ListProductsHandler handles listing products
type ListProductsHandler struct {
	repo domain.ProductRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Handle executes the list products query
func (h *ListProductsHandler) Handle(ctx context.Context, q ListProductsQuery) (*ProductPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	offset := (q.Page - 1) * q.Limit

	var (
		products []domain.Product
		total    int64
		err      error
	)
	if q.Category != "" {
		products, total, err = h.repo.FindByCategory(ctx, q.Category, q.Limit, offset)
	} else {
		products, total, err = h.repo.FindAll(ctx, q.Limit, offset)
	}
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Products: products,
		Total:    total,
		Page:     q.Page,
		Limit:    q.Limit,
	}, nil
}
