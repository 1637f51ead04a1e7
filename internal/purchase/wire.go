//go:build wireinject
// +build wireinject

package purchase

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	catalogdomain "github.com/tair/commerce-core/internal/catalog/domain"
	catalogrepo "github.com/tair/commerce-core/internal/catalog/repository"
	inventorydomain "github.com/tair/commerce-core/internal/inventory/domain"
	inventoryrepo "github.com/tair/commerce-core/internal/inventory/repository"
	"github.com/tair/commerce-core/internal/purchase/delivery/http"
	"github.com/tair/commerce-core/internal/purchase/domain"
	"github.com/tair/commerce-core/internal/purchase/repository"
	"github.com/tair/commerce-core/internal/purchase/usecase/command"
	"github.com/tair/commerce-core/internal/purchase/usecase/query"
	"github.com/tair/commerce-core/internal/sequence"
)

// ProvidePurchaseRepository provides the purchase repository
func ProvidePurchaseRepository(db *gorm.DB) domain.PurchaseRepository {
	return repository.NewGormPurchaseRepository(db)
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
	ProvidePurchaseRepository,
	ProvideProductRepository,
	ProvideStockMutator,
)

var HandlerSet = wire.NewSet(
	command.NewCreatePurchaseHandler,
	query.NewGetPurchaseHandler,
	query.NewListPurchasesHandler,
)

// InitializePurchaseHandler initializes the purchase HTTP handler with all dependencies
func InitializePurchaseHandler(db *gorm.DB, numbers sequence.Generator) (*http.PurchaseHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		http.NewPurchaseHandler,
	)
	return nil, nil
}
