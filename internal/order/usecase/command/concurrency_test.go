package command

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tair/commerce-core/internal/order/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

// With stock=1, N concurrent confirmations of independent single-unit orders
// must yield exactly one success and N-1 insufficient-stock rejections.
func TestTransitionOrder_ConcurrentConfirmationsCannotOversell(t *testing.T) {
	const n = 20

	orders := newFakeOrderRepo()
	mutator := newFakeMutator()
	mutator.set(1, "SKU-LAST", 1)

	ids := make([]uint, n)
	for i := 0; i < n; i++ {
		order := orders.put(&domain.Order{
			Number: "ORD-race0001",
			UserID: uint(i + 1),
			Status: domain.StatusPending,
			Items:  []domain.OrderItem{{ProductID: 1, VariantSKU: "SKU-LAST", Quantity: 1}},
		})
		ids[i] = order.ID
	}

	h := NewTransitionOrderHandler(orders, newFakeProductRepo(), mutator, nil, nil, Policy{})

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.Handle(context.Background(), TransitionOrderCommand{
				OrderID:   ids[i],
				NewStatus: domain.StatusConfirmed,
			})
		}(i)
	}
	wg.Wait()

	successes, rejections := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperror.KindOf(err) == apperror.KindInsufficientStock:
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, rejections)
	assert.Equal(t, 0, mutator.get(1, "SKU-LAST"))
}
