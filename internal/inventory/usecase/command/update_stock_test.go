package command

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

// fakeMutator tracks stock per product/variant key and rejects removals that
// would go negative.
type fakeMutator struct {
	mu        sync.Mutex
	stock     map[string]int
	threshold int
	applied   []domain.Delta
}

func newFakeMutator() *fakeMutator {
	return &fakeMutator{stock: make(map[string]int)}
}

func key(productID uint, sku string) string {
	return fmt.Sprintf("%d/%s", productID, sku)
}

func (m *fakeMutator) set(productID uint, sku string, quantity int) {
	m.stock[key(productID, sku)] = quantity
}

func (m *fakeMutator) Apply(ctx context.Context, delta domain.Delta) (*domain.Applied, error) {
	applied, err := m.ApplyAll(ctx, []domain.Delta{delta})
	if err != nil {
		return nil, err
	}
	return &applied[0], nil
}

func (m *fakeMutator) ApplyAll(ctx context.Context, deltas []domain.Delta) ([]domain.Applied, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range deltas {
		current := m.stock[key(d.ProductID, d.VariantSKU)]
		if current+d.Quantity < 0 {
			return nil, apperror.InsufficientStock(-d.Quantity, current)
		}
	}

	results := make([]domain.Applied, len(deltas))
	for i, d := range deltas {
		k := key(d.ProductID, d.VariantSKU)
		previous := m.stock[k]
		m.stock[k] = previous + d.Quantity
		m.applied = append(m.applied, d)
		results[i] = domain.Applied{
			ProductID:         d.ProductID,
			VariantSKU:        d.VariantSKU,
			PreviousStock:     previous,
			NewStock:          previous + d.Quantity,
			LowStockThreshold: m.threshold,
		}
	}
	return results, nil
}

type fakeNotifier struct {
	notified []domain.Applied
}

func (n *fakeNotifier) NotifyLowStock(ctx context.Context, applied domain.Applied) {
	n.notified = append(n.notified, applied)
}

func TestUpdateStock_Add(t *testing.T) {
	mutator := newFakeMutator()
	mutator.set(1, "", 3)

	h := NewUpdateStockHandler(mutator, nil)
	applied, err := h.Handle(context.Background(), UpdateStockCommand{
		ProductID: 1,
		Type:      domain.LedgerTypeAdd,
		Quantity:  5,
		Reason:    "restock",
		Actor:     "staff",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, applied.PreviousStock)
	assert.Equal(t, 8, applied.NewStock)
}

func TestUpdateStock_RemoveFlipsSign(t *testing.T) {
	mutator := newFakeMutator()
	mutator.set(1, "SKU-A", 10)

	h := NewUpdateStockHandler(mutator, nil)
	applied, err := h.Handle(context.Background(), UpdateStockCommand{
		ProductID:  1,
		VariantSKU: "SKU-A",
		Type:       domain.LedgerTypeRemove,
		Quantity:   4,
		Reason:     "damaged in transit",
	})

	require.NoError(t, err)
	assert.Equal(t, 6, applied.NewStock)

	require.Len(t, mutator.applied, 1)
	assert.Equal(t, -4, mutator.applied[0].Quantity)
}

func TestUpdateStock_RemoveBeyondStock(t *testing.T) {
	mutator := newFakeMutator()
	mutator.set(1, "", 3)

	h := NewUpdateStockHandler(mutator, nil)
	_, err := h.Handle(context.Background(), UpdateStockCommand{
		ProductID: 1,
		Type:      domain.LedgerTypeRemove,
		Quantity:  10,
		Reason:    "shrinkage",
	})

	require.Error(t, err)
	assert.Equal(t, apperror.KindInsufficientStock, apperror.KindOf(err))
	assert.Equal(t, "Cannot remove 10 items. Current stock is only 3.", apperror.MessageOf(err))
	assert.Equal(t, 3, mutator.stock[key(1, "")])
}

func TestUpdateStock_Validation(t *testing.T) {
	negativeCost := -1.0
	tests := []struct {
		name string
		cmd  UpdateStockCommand
	}{
		{"missing product", UpdateStockCommand{Type: domain.LedgerTypeAdd, Quantity: 1, Reason: "x"}},
		{"zero quantity", UpdateStockCommand{ProductID: 1, Type: domain.LedgerTypeAdd, Quantity: 0, Reason: "x"}},
		{"negative quantity", UpdateStockCommand{ProductID: 1, Type: domain.LedgerTypeAdd, Quantity: -2, Reason: "x"}},
		{"unknown type", UpdateStockCommand{ProductID: 1, Type: "transfer", Quantity: 1, Reason: "x"}},
		{"missing reason", UpdateStockCommand{ProductID: 1, Type: domain.LedgerTypeAdd, Quantity: 1}},
		{"negative unit cost", UpdateStockCommand{ProductID: 1, Type: domain.LedgerTypeAdd, Quantity: 1, Reason: "x", UnitCost: &negativeCost}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUpdateStockHandler(newFakeMutator(), nil)
			_, err := h.Handle(context.Background(), tt.cmd)

			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
}

func TestUpdateStock_LowStockNotification(t *testing.T) {
	mutator := newFakeMutator()
	mutator.set(1, "", 7)
	notifier := &fakeNotifier{}

	h := NewUpdateStockHandler(mutator, notifier)
	_, err := h.Handle(context.Background(), UpdateStockCommand{
		ProductID: 1,
		Type:      domain.LedgerTypeRemove,
		Quantity:  4,
		Reason:    "order pick",
	})

	require.NoError(t, err)
	require.Len(t, notifier.notified, 1, "3 left is at or below the default threshold")
	assert.Equal(t, 3, notifier.notified[0].NewStock)
}

func TestUpdateStock_NoNotificationAboveThreshold(t *testing.T) {
	mutator := newFakeMutator()
	mutator.set(1, "", 50)
	notifier := &fakeNotifier{}

	h := NewUpdateStockHandler(mutator, notifier)
	_, err := h.Handle(context.Background(), UpdateStockCommand{
		ProductID: 1,
		Type:      domain.LedgerTypeRemove,
		Quantity:  4,
		Reason:    "order pick",
	})

	require.NoError(t, err)
	assert.Empty(t, notifier.notified)
}
