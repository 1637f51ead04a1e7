//go:build wireinject
// +build wireinject

package catalog

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/commerce-core/internal/catalog/delivery/http"
	"github.com/tair/commerce-core/internal/catalog/domain"
	"github.com/tair/commerce-core/internal/catalog/repository"
	"github.com/tair/commerce-core/internal/catalog/usecase/command"
	"github.com/tair/commerce-core/internal/catalog/usecase/query"
	inventorydomain "github.com/tair/commerce-core/internal/inventory/domain"
	inventoryrepo "github.com/tair/commerce-core/internal/inventory/repository"
)

// ProvideProductRepository provides the product repository wrapped with tracing
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewTracingProductRepository(repository.NewGormProductRepository(db))
}

// ProvideStockMutator provides the transactional stock mutator
func ProvideStockMutator(db *gorm.DB) inventorydomain.StockMutator {
	return inventoryrepo.NewGormStockMutator(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideProductRepository,
	ProvideStockMutator,
)

var CommandHandlerSet = wire.NewSet(
	command.NewCreateProductHandler,
	command.NewUpdateProductHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetProductHandler,
	query.NewListProductsHandler,
	query.NewGetStatsHandler,
)

// InitializeProductHandler initializes the product HTTP handler with all dependencies
func InitializeProductHandler(db *gorm.DB) (*http.ProductHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		http.NewProductHandler,
	)
	return nil, nil
}
