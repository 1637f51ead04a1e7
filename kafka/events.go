package kafka

import "time"

// Event types
const (
	EventTypeOrderStatusChanged = "order.status_changed"
	EventTypeLoyaltyEarn        = "loyalty.earn_requested"
	EventTypeCouponRedeemed     = "coupon.redeemed"
	EventTypeLowStock           = "stock.low"
)

// Kafka topics
const (
	TopicOrderEvents = "order-events"
	TopicLoyalty     = "loyalty-events"
	TopicCoupon      = "coupon-events"
	TopicStockAlerts = "stock-alerts"
)

// Envelope carries the metadata shared by every event
type Envelope struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderStatusChangedEvent announces one order lifecycle transition
type OrderStatusChangedEvent struct {
	Envelope
	OrderID        uint   `json:"order_id"`
	OrderNumber    string `json:"order_number"`
	UserID         uint   `json:"user_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
}

// LoyaltyEarnItem is one order line forwarded to the loyalty collaborator
type LoyaltyEarnItem struct {
	ProductID uint    `json:"product_id"`
	SKU       string  `json:"sku,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// LoyaltyEarnEvent asks the loyalty service to credit coins for an order
type LoyaltyEarnEvent struct {
	Envelope
	UserID      uint              `json:"user_id"`
	OrderNumber string            `json:"order_number"`
	Trigger     string            `json:"trigger"`
	Items       []LoyaltyEarnItem `json:"items"`
}

// CouponRedeemedEvent reports one coupon redemption for usage counting
type CouponRedeemedEvent struct {
	Envelope
	Code string `json:"code"`
}

// LowStockEvent announces a stock level at or below its threshold
type LowStockEvent struct {
	Envelope
	ProductID  uint   `json:"product_id"`
	VariantSKU string `json:"variant_sku,omitempty"`
	NewStock   int    `json:"new_stock"`
	Threshold  int    `json:"threshold"`
}
