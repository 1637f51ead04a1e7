package query

import (
	"context"

	"github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

// HistoryQuery represents the query for a product's ledger history
type HistoryQuery struct {
	ProductID  uint
	VariantSKU string
	Limit      int
	Offset     int
}

// HistoryPage is one page of ledger entries
type HistoryPage struct {
	Entries []domain.LedgerEntry `json:"entries"`
	Total   int64                `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

// HistoryHandler handles ledger history queries
type HistoryHandler struct {
	ledger domain.LedgerRepository
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(ledger domain.LedgerRepository) *HistoryHandler {
	return &HistoryHandler{ledger: ledger}
}

// Handle executes the history query
func (h *HistoryHandler) Handle(ctx context.Context, q HistoryQuery) (*HistoryPage, error) {
	if q.ProductID == 0 {
		return nil, apperror.Validation("product_id is required")
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	entries, total, err := h.ledger.FindByProduct(ctx, q.ProductID, q.VariantSKU, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}

	return &HistoryPage{
		Entries: entries,
		Total:   total,
		Limit:   q.Limit,
		Offset:  q.Offset,
	}, nil
}
