package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/commerce-core/internal/order/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

func TestUpdatePayment_MarksPaid(t *testing.T) {
	orders := newFakeOrderRepo()
	order := orders.put(&domain.Order{
		Number:        "ORD-pay00001",
		UserID:        7,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		PaymentMethod: domain.PaymentMethodOnline,
	})

	h := NewUpdatePaymentHandler(orders, nil)
	result, err := h.Handle(context.Background(), UpdatePaymentCommand{
		OrderID:   order.ID,
		NewStatus: domain.PaymentPaid,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, result.PaymentStatus)
}

func TestUpdatePayment_SameStatusRejected(t *testing.T) {
	orders := newFakeOrderRepo()
	order := orders.put(&domain.Order{Number: "ORD-pay00002", PaymentStatus: domain.PaymentPaid})

	h := NewUpdatePaymentHandler(orders, nil)
	_, err := h.Handle(context.Background(), UpdatePaymentCommand{
		OrderID:   order.ID,
		NewStatus: domain.PaymentPaid,
	})

	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUpdatePayment_UnknownStatus(t *testing.T) {
	h := NewUpdatePaymentHandler(newFakeOrderRepo(), nil)
	_, err := h.Handle(context.Background(), UpdatePaymentCommand{OrderID: 1, NewStatus: "chargeback"})

	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUpdatePayment_PaidEarnsLoyalty(t *testing.T) {
	orders := newFakeOrderRepo()
	loyalty := &fakeLoyalty{}
	order := orders.put(&domain.Order{
		Number:        "ORD-pay00003",
		UserID:        9,
		PaymentStatus: domain.PaymentPending,
	})

	h := NewUpdatePaymentHandler(orders, loyalty)
	_, err := h.Handle(context.Background(), UpdatePaymentCommand{
		OrderID:   order.ID,
		NewStatus: domain.PaymentPaid,
	})

	require.NoError(t, err)
	require.Len(t, loyalty.calls, 1)
	assert.Equal(t, uint(9), loyalty.calls[0].UserID)
	assert.Equal(t, domain.TriggerPaymentSuccess, loyalty.calls[0].Trigger)
}

func TestUpdatePayment_NoLoyaltyWhenPointsSpent(t *testing.T) {
	orders := newFakeOrderRepo()
	loyalty := &fakeLoyalty{}
	order := orders.put(&domain.Order{
		Number:            "ORD-pay00004",
		UserID:            9,
		PaymentStatus:     domain.PaymentPending,
		LoyaltyPointsUsed: 30,
	})

	h := NewUpdatePaymentHandler(orders, loyalty)
	_, err := h.Handle(context.Background(), UpdatePaymentCommand{
		OrderID:   order.ID,
		NewStatus: domain.PaymentPaid,
	})

	require.NoError(t, err)
	assert.Empty(t, loyalty.calls)
}

func TestUpdatePayment_RefundAfterPaid(t *testing.T) {
	orders := newFakeOrderRepo()
	order := orders.put(&domain.Order{Number: "ORD-pay00005", PaymentStatus: domain.PaymentPaid})

	h := NewUpdatePaymentHandler(orders, nil)
	result, err := h.Handle(context.Background(), UpdatePaymentCommand{
		OrderID:   order.ID,
		NewStatus: domain.PaymentRefunded,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, result.PaymentStatus)
}
