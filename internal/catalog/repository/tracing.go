package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/commerce-core/internal/catalog/domain"
)

var tracer = otel.Tracer("catalog-repository")

// TracingProductRepository decorates a ProductRepository with OpenTelemetry spans
type TracingProductRepository struct {
	next domain.ProductRepository
}

func NewTracingProductRepository(next domain.ProductRepository) *TracingProductRepository {
	return &TracingProductRepository{next: next}
}

func (r *TracingProductRepository) span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *TracingProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.span(ctx, "repository.product.Create",
		attribute.String("product.sku", product.SKU))
	err := r.next.Create(ctx, product)
	finish(span, err)
	return err
}

func (r *TracingProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	ctx, span := r.span(ctx, "repository.product.FindByID",
		attribute.Int("product.id", int(id)))
	product, err := r.next.FindByID(ctx, id)
	if err == nil {
		span.SetAttributes(attribute.Int("product.total_stock", product.TotalStock))
	}
	finish(span, err)
	return product, err
}

func (r *TracingProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	ctx, span := r.span(ctx, "repository.product.FindBySKU",
		attribute.String("product.sku", sku))
	product, err := r.next.FindBySKU(ctx, sku)
	finish(span, err)
	return product, err
}

func (r *TracingProductRepository) FindVariant(ctx context.Context, productID uint, sku string) (*domain.Variant, error) {
	ctx, span := r.span(ctx, "repository.product.FindVariant",
		attribute.Int("product.id", int(productID)),
		attribute.String("variant.sku", sku))
	variant, err := r.next.FindVariant(ctx, productID, sku)
	if err == nil {
		span.SetAttributes(attribute.Int("variant.stock_quantity", variant.StockQuantity))
	}
	finish(span, err)
	return variant, err
}

func (r *TracingProductRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Product, int64, error) {
	ctx, span := r.span(ctx, "repository.product.FindAll",
		attribute.Int("query.limit", limit),
		attribute.Int("query.offset", offset))
	products, total, err := r.next.FindAll(ctx, limit, offset)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(products)))
	}
	finish(span, err)
	return products, total, err
}

func (r *TracingProductRepository) FindByCategory(ctx context.Context, category string, limit, offset int) ([]domain.Product, int64, error) {
	ctx, span := r.span(ctx, "repository.product.FindByCategory",
		attribute.String("query.category", category))
	products, total, err := r.next.FindByCategory(ctx, category, limit, offset)
	finish(span, err)
	return products, total, err
}

func (r *TracingProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.span(ctx, "repository.product.Update",
		attribute.Int("product.id", int(product.ID)))
	err := r.next.Update(ctx, product)
	finish(span, err)
	return err
}

func (r *TracingProductRepository) UpdateVariant(ctx context.Context, variant *domain.Variant) error {
	ctx, span := r.span(ctx, "repository.product.UpdateVariant",
		attribute.Int("variant.id", int(variant.ID)),
		attribute.String("variant.sku", variant.SKU))
	err := r.next.UpdateVariant(ctx, variant)
	finish(span, err)
	return err
}

func (r *TracingProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := r.span(ctx, "repository.product.Count")
	count, err := r.next.Count(ctx)
	finish(span, err)
	return count, err
}

func (r *TracingProductRepository) IncrementSoldCount(ctx context.Context, productID uint, quantity int) error {
	ctx, span := r.span(ctx, "repository.product.IncrementSoldCount",
		attribute.Int("product.id", int(productID)),
		attribute.Int("sold.delta", quantity))
	err := r.next.IncrementSoldCount(ctx, productID, quantity)
	finish(span, err)
	return err
}
