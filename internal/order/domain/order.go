package domain

import (
	"context"
	"time"
)

// Status is an order lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusReturned   Status = "returned"
)

// transitions is the full lifecycle graph. cancelled and returned are
// terminal: they have no outgoing edges.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusReturned},
	StatusDelivered:  {StatusReturned},
	StatusCancelled:  {},
	StatusReturned:   {},
}

// ValidStatus reports whether s is a known order status
func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether the edge from → to exists in the lifecycle
// graph. A self-transition is never allowed.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no outgoing edges
func Terminal(s Status) bool {
	return len(transitions[s]) == 0
}

// PaymentStatus is the payment axis, independent of the lifecycle status
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// ValidPaymentStatus reports whether s is a known payment status
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Payment methods
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodCard   = "card"
	PaymentMethodOnline = "online"
)

// ValidPaymentMethod reports whether m is a known payment method
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodOnline:
		return true
	}
	return false
}

// Order represents the order entity. The item list is an immutable snapshot
// taken at checkout; after creation the order is only ever mutated through
// status and payment transitions, and never deleted.
type Order struct {
	ID                uint          `json:"id" gorm:"primaryKey"`
	Number            string        `json:"number" gorm:"uniqueIndex;not null;size:20"`
	UserID            uint          `json:"user_id" gorm:"not null;index"`
	Status            Status        `json:"status" gorm:"size:20;not null;default:'pending';index"`
	PaymentStatus     PaymentStatus `json:"payment_status" gorm:"size:20;not null;default:'pending'"`
	PaymentMethod     string        `json:"payment_method" gorm:"size:20;not null"`
	ShippingAddress   string        `json:"shipping_address" gorm:"size:500"`
	CouponCode        string        `json:"coupon_code,omitempty" gorm:"size:50"`
	Subtotal          float64       `json:"subtotal" gorm:"not null"`
	DiscountAmount    float64       `json:"discount_amount" gorm:"not null;default:0"`
	LoyaltyPointsUsed int           `json:"loyalty_points_used" gorm:"not null;default:0"`
	TotalAmount       float64       `json:"total_amount" gorm:"not null"`
	Items             []OrderItem   `json:"items" gorm:"foreignKey:OrderID"`
	StatusEvents      []StatusEvent `json:"status_events,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one snapshotted line of an order
type OrderItem struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	OrderID     uint    `json:"order_id" gorm:"not null;index"`
	ProductID   uint    `json:"product_id" gorm:"not null;index"`
	VariantSKU  string  `json:"variant_sku,omitempty" gorm:"size:100"`
	ProductName string  `json:"product_name" gorm:"size:200"`
	UnitPrice   float64 `json:"unit_price" gorm:"not null"`
	Quantity    int     `json:"quantity" gorm:"not null"`
}

// TableName specifies the table name
func (OrderItem) TableName() string {
	return "order_items"
}

// StatusEvent records one entry into a state. The list is append-only, so
// repeated or out-of-order recording stays unambiguous.
type StatusEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"not null;index"`
	Status    Status    `json:"status" gorm:"size:20;not null"`
	Actor     string    `json:"actor" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name
func (StatusEvent) TableName() string {
	return "order_status_events"
}

// OrderRepository defines the contract for order data access. Status
// updates are compare-and-swap on the current value so concurrent
// transitions serialize at the storage layer.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uint) (*Order, error)
	FindAll(ctx context.Context, limit, offset int) ([]Order, error)
	FindByUser(ctx context.Context, userID uint, limit, offset int) ([]Order, error)
	// UpdateStatus moves id from → to; reports false when the order was not
	// in the expected from state.
	UpdateStatus(ctx context.Context, id uint, from, to Status) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id uint, from, to PaymentStatus) (bool, error)
	AppendStatusEvent(ctx context.Context, event *StatusEvent) error
}
