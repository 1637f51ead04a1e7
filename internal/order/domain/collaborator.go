package domain

import "context"

// LoyaltyTrigger names the event that caused a loyalty earn request
type LoyaltyTrigger string

const (
	TriggerDeliveryCOD    LoyaltyTrigger = "delivery_cod"
	TriggerPaymentSuccess LoyaltyTrigger = "payment_success"
)

// LoyaltyService is the opaque loyalty collaborator. Calls are best-effort:
// a failure is logged by the implementation and never aborts the order
// operation that triggered it.
type LoyaltyService interface {
	EarnFromOrder(ctx context.Context, userID uint, orderNumber string, items []OrderItem, trigger LoyaltyTrigger) error
}

// CouponService is the opaque coupon collaborator; usage counting happens
// elsewhere, this core only reports redemptions. Best-effort.
type CouponService interface {
	IncrementUsage(ctx context.Context, code string) error
}

// EventPublisher announces order lifecycle changes. Best-effort.
type EventPublisher interface {
	OrderStatusChanged(ctx context.Context, order *Order, previous Status) error
}
