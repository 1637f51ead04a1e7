// Package notifier implements the low-stock notification hook over kafka.
package notifier

import (
	"context"

	"github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/kafka"
	"github.com/tair/commerce-core/pkg/logger"
)

// KafkaLowStockNotifier publishes stock alerts. Best-effort: publish
// failures are logged and swallowed.
type KafkaLowStockNotifier struct {
	publisher *kafka.Publisher
}

func NewKafkaLowStockNotifier(publisher *kafka.Publisher) *KafkaLowStockNotifier {
	return &KafkaLowStockNotifier{publisher: publisher}
}

func (n *KafkaLowStockNotifier) NotifyLowStock(ctx context.Context, applied domain.Applied) {
	event := kafka.LowStockEvent{
		Envelope:   kafka.NewEnvelope(kafka.EventTypeLowStock),
		ProductID:  applied.ProductID,
		VariantSKU: applied.VariantSKU,
		NewStock:   applied.NewStock,
		Threshold:  applied.LowStockThreshold,
	}
	key := applied.VariantSKU
	if key == "" {
		key = "product"
	}
	if err := n.publisher.Publish(ctx, kafka.TopicStockAlerts, kafka.EventTypeLowStock, key, event); err != nil {
		logger.Warn(ctx).Err(err).
			Uint("product_id", applied.ProductID).
			Str("variant_sku", applied.VariantSKU).
			Msg("Failed to publish low stock alert")
	}
}
