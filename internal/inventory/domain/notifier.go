package domain

import "context"

// LowStockNotifier is notified when a mutation leaves a stock level at or
// below its threshold. Implementations are best-effort: they log failures
// and never propagate them to the mutating operation.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, applied Applied)
}
