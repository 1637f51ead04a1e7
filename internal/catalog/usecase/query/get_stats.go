package query

import (
	"context"

	"github.com/tair/commerce-core/internal/catalog/domain"
)

// GetStatsQuery represents the query to get catalog stock statistics
type GetStatsQuery struct{}

// CatalogStats represents catalog-wide stock statistics
type CatalogStats struct {
	TotalProducts    int64 `json:"total_products"`
	ActiveProducts   int64 `json:"active_products"`
	TotalStockUnits  int64 `json:"total_stock_units"`
	TotalSold        int64 `json:"total_sold"`
	LowStockProducts int64 `json:"low_stock_products"`
	OutOfStock       int64 `json:"out_of_stock"`
}

// GetStatsHandler handles get stats query
type GetStatsHandler struct {
	repo domain.ProductRepository
}

// NewGetStatsHandler creates a new get stats handler
func NewGetStatsHandler(repo domain.ProductRepository) *GetStatsHandler {
	return &GetStatsHandler{repo: repo}
}

// Handle executes the get stats query
func (h *GetStatsHandler) Handle(ctx context.Context, _ GetStatsQuery) (*CatalogStats, error) {
	total, err := h.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	// Walk the whole catalog; stock status is derived, not stored, so it
	// cannot be aggregated in SQL without duplicating the classification.
	products, _, err := h.repo.FindAll(ctx, 10000, 0)
	if err != nil {
		return nil, err
	}

	stats := &CatalogStats{TotalProducts: total}
	for i := range products {
		p := &products[i]
		if p.IsActive {
			stats.ActiveProducts++
		}
		stats.TotalStockUnits += int64(p.TotalStock)
		stats.TotalSold += int64(p.SoldCount)
		switch p.StockStatus() {
		case domain.StockStatusOut:
			stats.OutOfStock++
		case domain.StockStatusLow:
			stats.LowStockProducts++
		}
	}

	return stats, nil
}
