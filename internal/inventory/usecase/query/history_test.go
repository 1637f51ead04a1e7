package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

type ledgerCall struct {
	ProductID  uint
	VariantSKU string
	Limit      int
	Offset     int
}

// fakeLedger returns canned entries and records the paging it was asked for
type fakeLedger struct {
	entries   []domain.LedgerEntry
	total     int64
	summaries []domain.TypeSummary
	lastCall  ledgerCall
	err       error
}

func (l *fakeLedger) Append(ctx context.Context, entry *domain.LedgerEntry) error { return nil }

func (l *fakeLedger) FindByProduct(ctx context.Context, productID uint, variantSKU string, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	if l.err != nil {
		return nil, 0, l.err
	}
	l.lastCall = ledgerCall{ProductID: productID, VariantSKU: variantSKU, Limit: limit, Offset: offset}
	return l.entries, l.total, nil
}

func (l *fakeLedger) SummarizeByType(ctx context.Context, since time.Time) ([]domain.TypeSummary, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.summaries, nil
}

func TestHistory_RequiresProductID(t *testing.T) {
	h := NewHistoryHandler(&fakeLedger{})
	_, err := h.Handle(context.Background(), HistoryQuery{})

	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestHistory_PagingDefaults(t *testing.T) {
	tests := []struct {
		name           string
		limit, offset  int
		expectedLimit  int
		expectedOffset int
	}{
		{"zero limit", 0, 0, 20, 0},
		{"negative offset", 10, -3, 10, 0},
		{"limit over cap", 500, 40, 20, 40},
		{"valid", 50, 100, 50, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{}
			h := NewHistoryHandler(ledger)
			page, err := h.Handle(context.Background(), HistoryQuery{
				ProductID: 1, Limit: tt.limit, Offset: tt.offset,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedLimit, ledger.lastCall.Limit)
			assert.Equal(t, tt.expectedOffset, ledger.lastCall.Offset)
			assert.Equal(t, tt.expectedLimit, page.Limit)
			assert.Equal(t, tt.expectedOffset, page.Offset)
		})
	}
}

func TestHistory_PassesVariantFilter(t *testing.T) {
	ledger := &fakeLedger{
		entries: []domain.LedgerEntry{{ProductID: 1, VariantSKU: "SKU-A", Type: domain.LedgerTypeAdd, Quantity: 5}},
		total:   37,
	}
	h := NewHistoryHandler(ledger)

	page, err := h.Handle(context.Background(), HistoryQuery{ProductID: 1, VariantSKU: "SKU-A"})

	require.NoError(t, err)
	assert.Equal(t, "SKU-A", ledger.lastCall.VariantSKU)
	assert.Equal(t, int64(37), page.Total)
	require.Len(t, page.Entries, 1)
}

func TestSummary_WithoutCache(t *testing.T) {
	ledger := &fakeLedger{summaries: []domain.TypeSummary{
		{Type: domain.LedgerTypeAdd, Entries: 4, TotalQuantity: 120},
		{Type: domain.LedgerTypeAdjustment, Entries: 1, TotalQuantity: 3},
	}}
	h := NewSummaryHandler(ledger, nil)

	summary, err := h.Handle(context.Background())

	require.NoError(t, err)
	assert.False(t, summary.FromCache)
	require.Len(t, summary.ByType, 2)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), summary.Since, 5*time.Second)
}
