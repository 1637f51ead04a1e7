// Package collaborator carries the kafka-backed implementations of the
// opaque order collaborators. Loyalty and coupon logic live in their own
// services; this core only emits the triggering events.
package collaborator

import (
	"context"

	"github.com/tair/commerce-core/internal/order/domain"
	"github.com/tair/commerce-core/kafka"
)

// KafkaLoyaltyService publishes loyalty earn requests
type KafkaLoyaltyService struct {
	publisher *kafka.Publisher
}

func NewKafkaLoyaltyService(publisher *kafka.Publisher) *KafkaLoyaltyService {
	return &KafkaLoyaltyService{publisher: publisher}
}

func (s *KafkaLoyaltyService) EarnFromOrder(ctx context.Context, userID uint, orderNumber string, items []domain.OrderItem, trigger domain.LoyaltyTrigger) error {
	earnItems := make([]kafka.LoyaltyEarnItem, len(items))
	for i, item := range items {
		earnItems[i] = kafka.LoyaltyEarnItem{
			ProductID: item.ProductID,
			SKU:       item.VariantSKU,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}
	event := kafka.LoyaltyEarnEvent{
		Envelope:    kafka.NewEnvelope(kafka.EventTypeLoyaltyEarn),
		UserID:      userID,
		OrderNumber: orderNumber,
		Trigger:     string(trigger),
		Items:       earnItems,
	}
	return s.publisher.Publish(ctx, kafka.TopicLoyalty, kafka.EventTypeLoyaltyEarn, orderNumber, event)
}

// KafkaCouponService publishes coupon redemptions
type KafkaCouponService struct {
	publisher *kafka.Publisher
}

func NewKafkaCouponService(publisher *kafka.Publisher) *KafkaCouponService {
	return &KafkaCouponService{publisher: publisher}
}

func (s *KafkaCouponService) IncrementUsage(ctx context.Context, code string) error {
	event := kafka.CouponRedeemedEvent{
		Envelope: kafka.NewEnvelope(kafka.EventTypeCouponRedeemed),
		Code:     code,
	}
	return s.publisher.Publish(ctx, kafka.TopicCoupon, kafka.EventTypeCouponRedeemed, code, event)
}

// KafkaEventPublisher publishes order lifecycle events
type KafkaEventPublisher struct {
	publisher *kafka.Publisher
}

func NewKafkaEventPublisher(publisher *kafka.Publisher) *KafkaEventPublisher {
	return &KafkaEventPublisher{publisher: publisher}
}

func (s *KafkaEventPublisher) OrderStatusChanged(ctx context.Context, order *domain.Order, previous domain.Status) error {
	event := kafka.OrderStatusChangedEvent{
		Envelope:       kafka.NewEnvelope(kafka.EventTypeOrderStatusChanged),
		OrderID:        order.ID,
		OrderNumber:    order.Number,
		UserID:         order.UserID,
		PreviousStatus: string(previous),
		NewStatus:      string(order.Status),
	}
	return s.publisher.Publish(ctx, kafka.TopicOrderEvents, kafka.EventTypeOrderStatusChanged, order.Number, event)
}
