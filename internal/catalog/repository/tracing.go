package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/croptivize/catalog/internal/catalog/domain"
)

var tracer = otel.Tracer("catalog-repository")

// GormProductRepositoryWithTracing wraps GormProductRepository with tracing.
// Its methods shadow the embedded ones, so callers holding the
// domain.ProductRepository interface get the traced variants.
type GormProductRepositoryWithTracing struct {
	*GormProductRepository
}

// NewGormProductRepositoryWithTracing creates a new repository with tracing
func NewGormProductRepositoryWithTracing(db *gorm.DB) *GormProductRepositoryWithTracing {
	return &GormProductRepositoryWithTracing{
		GormProductRepository: NewGormProductRepository(db),
	}
}

// FindPage runs the paged catalog query under a span carrying the filter
// attributes.
func (r *GormProductRepositoryWithTracing) FindPage(ctx context.Context, f domain.Filter) ([]domain.Product, int64, error) {
	ctx, span := tracer.Start(ctx, "repository.FindPage",
		trace.WithAttributes(
			attribute.Int("filter.page", f.Page),
			attribute.Int("filter.limit", f.Limit),
			attribute.String("filter.search", f.Search),
			attribute.String("filter.category", f.Category),
			attribute.String("filter.sort", f.Sort),
			attribute.Bool("filter.featured", f.Featured),
		),
	)
	defer span.End()

	products, total, err := r.GormProductRepository.FindPage(ctx, f)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(
		attribute.Int("result.count", len(products)),
		attribute.Int64("result.total_docs", total),
	)
	return products, total, nil
}

// FindByID fetches one product under a span.
func (r *GormProductRepositoryWithTracing) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(attribute.Int("product.id", int(id))),
	)
	defer span.End()

	product, err := r.GormProductRepository.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("product.name", product.Name),
		attribute.String("product.category", product.Category),
	)
	return product, nil
}

// Create inserts a product under a span.
func (r *GormProductRepositoryWithTracing) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("product.name", product.Name),
			attribute.String("product.category", product.Category),
			attribute.Float64("product.price", product.Price),
		),
	)
	defer span.End()

	if err := r.GormProductRepository.Create(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("product.id", int(product.ID)))
	return nil
}
