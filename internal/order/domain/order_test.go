package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func allStatuses() []Status {
	return []Status{
		StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled, StatusReturned,
	}
}

func TestCanTransition(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:    {StatusConfirmed, StatusCancelled},
		StatusConfirmed:  {StatusProcessing, StatusCancelled},
		StatusProcessing: {StatusShipped, StatusCancelled},
		StatusShipped:    {StatusDelivered, StatusReturned},
		StatusDelivered:  {StatusReturned},
		StatusCancelled:  {},
		StatusReturned:   {},
	}

	for _, from := range allStatuses() {
		for _, to := range allStatuses() {
			expected := false
			for _, next := range allowed[from] {
				if next == to {
					expected = true
				}
			}
			assert.Equal(t, expected, CanTransition(from, to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestCanTransition_SelfTransitionRejected(t *testing.T) {
	for _, s := range allStatuses() {
		assert.False(t, CanTransition(s, s), "self transition %s", s)
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition("bogus", StatusConfirmed))
	assert.False(t, CanTransition(StatusPending, "bogus"))
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal(StatusCancelled))
	assert.True(t, Terminal(StatusReturned))
	assert.False(t, Terminal(StatusPending))
	assert.False(t, Terminal(StatusDelivered))
}

func TestValidStatus(t *testing.T) {
	for _, s := range allStatuses() {
		assert.True(t, ValidStatus(s), "status %s", s)
	}
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidStatus(""))
}

func TestValidPaymentStatus(t *testing.T) {
	for _, s := range []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded} {
		assert.True(t, ValidPaymentStatus(s), "payment status %s", s)
	}
	assert.False(t, ValidPaymentStatus("chargeback"))
	assert.False(t, ValidPaymentStatus(""))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PaymentMethodCOD))
	assert.True(t, ValidPaymentMethod(PaymentMethodCard))
	assert.True(t, ValidPaymentMethod(PaymentMethodOnline))
	assert.False(t, ValidPaymentMethod("barter"))
	assert.False(t, ValidPaymentMethod(""))
}
