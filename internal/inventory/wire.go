//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/commerce-core/internal/inventory/delivery/http"
	"github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/internal/inventory/repository"
	"github.com/tair/commerce-core/internal/inventory/usecase/command"
	"github.com/tair/commerce-core/internal/inventory/usecase/query"
)

// ProvideStockMutator provides the transactional stock mutator
func ProvideStockMutator(db *gorm.DB) domain.StockMutator {
	return repository.NewGormStockMutator(db)
}

// ProvideLedgerRepository provides the stock ledger repository with tracing
func ProvideLedgerRepository(db *gorm.DB) domain.LedgerRepository {
	return repository.NewGormLedgerRepositoryWithTracing(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideStockMutator,
	ProvideLedgerRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewUpdateStockHandler,
	command.NewBulkUpdateHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewHistoryHandler,
	query.NewSummaryHandler,
)

// InitializeInventoryHandler initializes the inventory HTTP handler with all
// dependencies. notifier and cache may be nil.
func InitializeInventoryHandler(db *gorm.DB, notifier domain.LowStockNotifier, cache *redis.Client) (*http.InventoryHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		http.NewInventoryHandler,
	)
	return nil, nil
}
