package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tair/commerce-core/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// GormLedgerRepositoryWithTracing wraps GormLedgerRepository with tracing
type GormLedgerRepositoryWithTracing struct {
	*GormLedgerRepository
}

// NewGormLedgerRepositoryWithTracing creates a new ledger repository with tracing
func NewGormLedgerRepositoryWithTracing(db *gorm.DB) *GormLedgerRepositoryWithTracing {
	return &GormLedgerRepositoryWithTracing{
		GormLedgerRepository: NewGormLedgerRepository(db),
	}
}

// Append with tracing
func (r *GormLedgerRepositoryWithTracing) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	ctx, span := tracer.Start(ctx, "repository.Append",
		trace.WithAttributes(
			attribute.Int("ledger.product_id", int(entry.ProductID)),
			attribute.String("ledger.type", string(entry.Type)),
			attribute.Int("ledger.quantity", entry.Quantity),
			attribute.String("ledger.reason", entry.Reason),
		),
	)
	defer span.End()

	err := r.GormLedgerRepository.Append(ctx, entry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("ledger.id", entry.ID.String()))
	return nil
}

// FindByProduct with tracing
func (r *GormLedgerRepositoryWithTracing) FindByProduct(ctx context.Context, productID uint, variantSKU string, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByProduct",
		trace.WithAttributes(
			attribute.Int("ledger.product_id", int(productID)),
			attribute.String("ledger.variant_sku", variantSKU),
			attribute.Int("query.limit", limit),
			attribute.Int("query.offset", offset),
		),
	)
	defer span.End()

	entries, total, err := r.GormLedgerRepository.FindByProduct(ctx, productID, variantSKU, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(
		attribute.Int("result.count", len(entries)),
		attribute.Int64("result.total", total),
	)
	return entries, total, nil
}

// SummarizeByType with tracing
func (r *GormLedgerRepositoryWithTracing) SummarizeByType(ctx context.Context, since time.Time) ([]domain.TypeSummary, error) {
	ctx, span := tracer.Start(ctx, "repository.SummarizeByType",
		trace.WithAttributes(
			attribute.String("query.since", since.Format(time.RFC3339)),
		),
	)
	defer span.End()

	summaries, err := r.GormLedgerRepository.SummarizeByType(ctx, since)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(summaries)))
	return summaries, nil
}
