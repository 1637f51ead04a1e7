//go:build wireinject
// +build wireinject

package order

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	catalogdomain "github.com/tair/commerce-core/internal/catalog/domain"
	catalogrepo "github.com/tair/commerce-core/internal/catalog/repository"
	inventorydomain "github.com/tair/commerce-core/internal/inventory/domain"
	inventoryrepo "github.com/tair/commerce-core/internal/inventory/repository"
	"github.com/tair/commerce-core/internal/order/delivery/http"
	"github.com/tair/commerce-core/internal/order/domain"
	"github.com/tair/commerce-core/internal/order/repository"
	"github.com/tair/commerce-core/internal/order/usecase/command"
	"github.com/tair/commerce-core/internal/order/usecase/query"
)

// ProvideOrderRepository provides the order repository
func ProvideOrderRepository(db *gorm.DB) domain.OrderRepository {
	return repository.NewGormOrderRepository(db)
}

// ProvideProductRepository provides the product repository wrapped with tracing
func ProvideProductRepository(db *gorm.DB) catalogdomain.ProductRepository {
	return catalogrepo.NewTracingProductRepository(catalogrepo.NewGormProductRepository(db))
}

// ProvideStockMutator provides the transactional stock mutator
func ProvideStockMutator(db *gorm.DB) inventorydomain.StockMutator {
	return inventoryrepo.NewGormStockMutator(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideOrderRepository,
	ProvideProductRepository,
	ProvideStockMutator,
)

var CommandHandlerSet = wire.NewSet(
	command.NewTransitionOrderHandler,
	command.NewCreateOrderHandler,
	command.NewUpdatePaymentHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetOrderHandler,
	query.NewListOrdersHandler,
)

// InitializeOrderHandler initializes the order HTTP handler with all
// dependencies. loyalty, coupons and publisher may be nil.
func InitializeOrderHandler(
	db *gorm.DB,
	loyalty domain.LoyaltyService,
	coupons domain.CouponService,
	publisher domain.EventPublisher,
	policy command.Policy,
) (*http.OrderHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		http.NewOrderHandler,
	)
	return nil, nil
}
