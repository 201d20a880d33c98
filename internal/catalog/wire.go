//go:build wireinject
// +build wireinject

package catalog

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/croptivize/catalog/internal/catalog/delivery/http"
	"github.com/croptivize/catalog/internal/catalog/domain"
	"github.com/croptivize/catalog/internal/catalog/repository"
	"github.com/croptivize/catalog/internal/catalog/usecase/command"
	"github.com/croptivize/catalog/internal/catalog/usecase/query"
	"github.com/croptivize/catalog/kafka"
)

// ProvideProductRepository provides the traced product repository
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewGormProductRepositoryWithTracing(db)
}

// Command Handlers Providers
func ProvideCreateProductHandler(repo domain.ProductRepository) *command.CreateProductHandler {
	return command.NewCreateProductHandler(repo)
}

func ProvideUpdateProductHandler(repo domain.ProductRepository) *command.UpdateProductHandler {
	return command.NewUpdateProductHandler(repo)
}

func ProvideDeleteProductHandler(repo domain.ProductRepository) *command.DeleteProductHandler {
	return command.NewDeleteProductHandler(repo)
}

func ProvideRecordOrderHandler(repo domain.ProductRepository) *command.RecordOrderHandler {
	return command.NewRecordOrderHandler(repo)
}

// Query Handlers Providers
func ProvideGetProductHandler(repo domain.ProductRepository) *query.GetProductHandler {
	return query.NewGetProductHandler(repo)
}

func ProvideListProductsHandler(repo domain.ProductRepository) *query.ListProductsHandler {
	return query.NewListProductsHandler(repo)
}

func ProvideGetAnalyticsHandler(repo domain.ProductRepository) *query.GetAnalyticsHandler {
	return query.NewGetAnalyticsHandler(repo)
}

func ProvideListOrdersHandler(repo domain.ProductRepository) *query.ListOrdersHandler {
	return query.NewListOrdersHandler(repo)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideProductRepository,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreateProductHandler,
	ProvideUpdateProductHandler,
	ProvideDeleteProductHandler,
	ProvideRecordOrderHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetProductHandler,
	ProvideListProductsHandler,
	ProvideGetAnalyticsHandler,
	ProvideListOrdersHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, publisher *kafka.Publisher) (*http.ProductHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewProductHandlerWithDI,
	)
	return nil, nil
}
