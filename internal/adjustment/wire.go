//go:build wireinject
// +build wireinject

package adjustment

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/commerce-core/internal/adjustment/delivery/http"
	"github.com/tair/commerce-core/internal/adjustment/domain"
	"github.com/tair/commerce-core/internal/adjustment/repository"
	"github.com/tair/commerce-core/internal/adjustment/usecase/command"
	"github.com/tair/commerce-core/internal/adjustment/usecase/query"
	catalogdomain "github.com/tair/commerce-core/internal/catalog/domain"
	catalogrepo "github.com/tair/commerce-core/internal/catalog/repository"
	inventorydomain "github.com/tair/commerce-core/internal/inventory/domain"
	inventoryrepo "github.com/tair/commerce-core/internal/inventory/repository"
	"github.com/tair/commerce-core/internal/sequence"
)

// ProvideAdjustmentRepository provides the adjustment repository
func ProvideAdjustmentRepository(db *gorm.DB) domain.AdjustmentRepository {
	return repository.NewGormAdjustmentRepository(db)
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
	ProvideAdjustmentRepository,
	ProvideProductRepository,
	ProvideStockMutator,
)

var HandlerSet = wire.NewSet(
	command.NewCreateAdjustmentHandler,
	query.NewGetAdjustmentHandler,
	query.NewListAdjustmentsHandler,
)

// InitializeAdjustmentHandler initializes the adjustment HTTP handler with all dependencies
func InitializeAdjustmentHandler(db *gorm.DB, numbers sequence.Generator) (*http.AdjustmentHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		http.NewAdjustmentHandler,
	)
	return nil, nil
}
