package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/tair/commerce-core/internal/catalog/domain"
	"github.com/tair/commerce-core/internal/order/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

func catalogFixture() *fakeProductRepo {
	return newFakeProductRepo(
		&catalog.Product{ID: 1, Name: "Plain Tee", SKU: "TEE-1", Price: 25, TotalStock: 50},
		&catalog.Product{ID: 2, Name: "Hoodie", SKU: "HOOD-1", Price: 80, Variants: []catalog.Variant{
			{ID: 10, ProductID: 2, SKU: "HOOD-1-M", CurrentPrice: 85, StockQuantity: 20},
			{ID: 11, ProductID: 2, SKU: "HOOD-1-L", CurrentPrice: 90, StockQuantity: 5},
		}},
	)
}

func newCreateHandler(orders *fakeOrderRepo, products *fakeProductRepo, mutator *fakeMutator, coupons domain.CouponService) *CreateOrderHandler {
	transition := NewTransitionOrderHandler(orders, products, mutator, nil, nil, Policy{})
	return NewCreateOrderHandler(orders, products, coupons, transition)
}

func TestCreateOrder_SnapshotsCatalogPricing(t *testing.T) {
	orders := newFakeOrderRepo()
	h := newCreateHandler(orders, catalogFixture(), newFakeMutator(), nil)

	order, err := h.Handle(context.Background(), CreateOrderCommand{
		UserID:          7,
		PaymentMethod:   domain.PaymentMethodCard,
		ShippingAddress: "12 Abay Ave",
		Items: []OrderItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, VariantSKU: "HOOD-1-L", Quantity: 1},
		},
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.Number, "ORD-"))
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Plain Tee", order.Items[0].ProductName)
	assert.Equal(t, 25.0, order.Items[0].UnitPrice)
	assert.Equal(t, 90.0, order.Items[1].UnitPrice, "variant price overrides the product price")
	assert.Equal(t, 140.0, order.Subtotal)
	assert.Equal(t, 140.0, order.TotalAmount)
}

func TestCreateOrder_Validation(t *testing.T) {
	tests := []struct {
		name string
		cmd  CreateOrderCommand
	}{
		{"missing user", CreateOrderCommand{
			PaymentMethod: domain.PaymentMethodCard,
			Items:         []OrderItemInput{{ProductID: 1, Quantity: 1}},
		}},
		{"no items", CreateOrderCommand{
			UserID: 7, PaymentMethod: domain.PaymentMethodCard,
		}},
		{"unknown payment method", CreateOrderCommand{
			UserID: 7, PaymentMethod: "barter",
			Items: []OrderItemInput{{ProductID: 1, Quantity: 1}},
		}},
		{"negative points", CreateOrderCommand{
			UserID: 7, PaymentMethod: domain.PaymentMethodCard, LoyaltyPointsUsed: -5,
			Items: []OrderItemInput{{ProductID: 1, Quantity: 1}},
		}},
		{"zero quantity", CreateOrderCommand{
			UserID: 7, PaymentMethod: domain.PaymentMethodCard,
			Items: []OrderItemInput{{ProductID: 1, Quantity: 0}},
		}},
		{"missing product id", CreateOrderCommand{
			UserID: 7, PaymentMethod: domain.PaymentMethodCard,
			Items: []OrderItemInput{{Quantity: 1}},
		}},
		{"variant product without sku", CreateOrderCommand{
			UserID: 7, PaymentMethod: domain.PaymentMethodCard,
			Items: []OrderItemInput{{ProductID: 2, Quantity: 1}},
		}},
		{"points exceed subtotal", CreateOrderCommand{
			UserID: 7, PaymentMethod: domain.PaymentMethodCard, LoyaltyPointsUsed: 1000,
			Items: []OrderItemInput{{ProductID: 1, Quantity: 1}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCreateHandler(newFakeOrderRepo(), catalogFixture(), newFakeMutator(), nil)
			_, err := h.Handle(context.Background(), tt.cmd)

			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	h := newCreateHandler(newFakeOrderRepo(), catalogFixture(), newFakeMutator(), nil)
	_, err := h.Handle(context.Background(), CreateOrderCommand{
		UserID:        7,
		PaymentMethod: domain.PaymentMethodCard,
		Items:         []OrderItemInput{{ProductID: 99, Quantity: 1}},
	})

	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCreateOrder_LoyaltyPointsReduceTotal(t *testing.T) {
	h := newCreateHandler(newFakeOrderRepo(), catalogFixture(), newFakeMutator(), nil)

	order, err := h.Handle(context.Background(), CreateOrderCommand{
		UserID:            7,
		PaymentMethod:     domain.PaymentMethodCard,
		LoyaltyPointsUsed: 10,
		Items:             []OrderItemInput{{ProductID: 1, Quantity: 2}},
	})

	require.NoError(t, err)
	assert.Equal(t, 50.0, order.Subtotal)
	assert.Equal(t, 40.0, order.TotalAmount)
	assert.Equal(t, domain.StatusPending, order.Status, "partially points-paid orders stay pending")
}

func TestCreateOrder_FullyPointsPaidAutoConfirms(t *testing.T) {
	orders := newFakeOrderRepo()
	mutator := newFakeMutator()
	mutator.set(1, "", 10)
	h := newCreateHandler(orders, catalogFixture(), mutator, nil)

	order, err := h.Handle(context.Background(), CreateOrderCommand{
		UserID:            7,
		PaymentMethod:     domain.PaymentMethodOnline,
		LoyaltyPointsUsed: 50,
		Items:             []OrderItemInput{{ProductID: 1, Quantity: 2}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, order.Status)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, 8, mutator.get(1, ""), "auto-confirm reserves stock through the regular path")
}

func TestCreateOrder_AutoConfirmFailureLeavesOrderPending(t *testing.T) {
	orders := newFakeOrderRepo()
	mutator := newFakeMutator()
	mutator.set(1, "", 1)
	h := newCreateHandler(orders, catalogFixture(), mutator, nil)

	order, err := h.Handle(context.Background(), CreateOrderCommand{
		UserID:            7,
		PaymentMethod:     domain.PaymentMethodOnline,
		LoyaltyPointsUsed: 50,
		Items:             []OrderItemInput{{ProductID: 1, Quantity: 2}},
	})

	require.NoError(t, err, "the order itself is created even when auto-confirm fails")
	assert.Equal(t, domain.StatusPending, orders.statusOf(order.ID))
	assert.Equal(t, 1, mutator.get(1, ""))
}

func TestCreateOrder_CouponUsageRecorded(t *testing.T) {
	coupons := &fakeCoupons{}
	h := newCreateHandler(newFakeOrderRepo(), catalogFixture(), newFakeMutator(), coupons)

	_, err := h.Handle(context.Background(), CreateOrderCommand{
		UserID:        7,
		PaymentMethod: domain.PaymentMethodCard,
		CouponCode:    "SUMMER10",
		Items:         []OrderItemInput{{ProductID: 1, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"SUMMER10"}, coupons.codes)
}

func TestCreateOrder_CouponFailureDoesNotAbort(t *testing.T) {
	coupons := &fakeCoupons{err: assert.AnError}
	h := newCreateHandler(newFakeOrderRepo(), catalogFixture(), newFakeMutator(), coupons)

	order, err := h.Handle(context.Background(), CreateOrderCommand{
		UserID:        7,
		PaymentMethod: domain.PaymentMethodCard,
		CouponCode:    "SUMMER10",
		Items:         []OrderItemInput{{ProductID: 1, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.NotZero(t, order.ID)
}
