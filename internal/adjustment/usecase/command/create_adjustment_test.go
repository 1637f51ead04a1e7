package command

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/commerce-core/internal/adjustment/domain"
	catalog "github.com/tair/commerce-core/internal/catalog/domain"
	inventory "github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

type fakeProductRepo struct {
	products map[uint]*catalog.Product
}

func newFakeProductRepo(products ...*catalog.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uint]*catalog.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(ctx context.Context, product *catalog.Product) error { return nil }

func (r *fakeProductRepo) FindByID(ctx context.Context, id uint) (*catalog.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, apperror.NotFound("Product %d not found", id)
	}
	return product, nil
}

func (r *fakeProductRepo) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	return nil, apperror.NotFound("Product with SKU '%s' not found", sku)
}

func (r *fakeProductRepo) FindVariant(ctx context.Context, productID uint, sku string) (*catalog.Variant, error) {
	product, ok := r.products[productID]
	if ok {
		for i := range product.Variants {
			if product.Variants[i].SKU == sku {
				return &product.Variants[i], nil
			}
		}
	}
	return nil, apperror.NotFound("Variant '%s' not found for product %d", sku, productID)
}

func (r *fakeProductRepo) FindAll(ctx context.Context, limit, offset int) ([]catalog.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) FindByCategory(ctx context.Context, category string, limit, offset int) ([]catalog.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *catalog.Product) error { return nil }

func (r *fakeProductRepo) UpdateVariant(ctx context.Context, variant *catalog.Variant) error {
	return nil
}

func (r *fakeProductRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func (r *fakeProductRepo) IncrementSoldCount(ctx context.Context, productID uint, quantity int) error {
	return nil
}

type fakeMutator struct {
	stock   map[string]int
	applied []inventory.Delta
}

func newFakeMutator() *fakeMutator {
	return &fakeMutator{stock: make(map[string]int)}
}

func key(productID uint, sku string) string {
	return fmt.Sprintf("%d/%s", productID, sku)
}

func (m *fakeMutator) Apply(ctx context.Context, delta inventory.Delta) (*inventory.Applied, error) {
	applied, err := m.ApplyAll(ctx, []inventory.Delta{delta})
	if err != nil {
		return nil, err
	}
	return &applied[0], nil
}

func (m *fakeMutator) ApplyAll(ctx context.Context, deltas []inventory.Delta) ([]inventory.Applied, error) {
	for _, d := range deltas {
		if current := m.stock[key(d.ProductID, d.VariantSKU)]; current+d.Quantity < 0 {
			return nil, apperror.InsufficientStock(-d.Quantity, current)
		}
	}
	results := make([]inventory.Applied, len(deltas))
	for i, d := range deltas {
		k := key(d.ProductID, d.VariantSKU)
		previous := m.stock[k]
		m.stock[k] = previous + d.Quantity
		m.applied = append(m.applied, d)
		results[i] = inventory.Applied{
			ProductID:     d.ProductID,
			VariantSKU:    d.VariantSKU,
			PreviousStock: previous,
			NewStock:      previous + d.Quantity,
		}
	}
	return results, nil
}

type fakeAdjustmentRepo struct {
	created []*domain.Adjustment
}

func (r *fakeAdjustmentRepo) Create(ctx context.Context, adjustment *domain.Adjustment) error {
	r.created = append(r.created, adjustment)
	return nil
}

func (r *fakeAdjustmentRepo) FindByID(ctx context.Context, id uint) (*domain.Adjustment, error) {
	return nil, apperror.NotFound("Adjustment %d not found", id)
}

func (r *fakeAdjustmentRepo) FindAll(ctx context.Context, limit, offset int) ([]domain.Adjustment, error) {
	return nil, nil
}

type fakeSequence struct {
	next int64
}

func (s *fakeSequence) Next(ctx context.Context, name, prefix string) (string, error) {
	s.next++
	return fmt.Sprintf("%s-%06d", prefix, s.next), nil
}

func adjustmentFixture() (*fakeMutator, *fakeAdjustmentRepo, *CreateAdjustmentHandler) {
	products := newFakeProductRepo(
		&catalog.Product{ID: 1, Name: "Plain Tee", SKU: "TEE-1", TotalStock: 10},
		&catalog.Product{ID: 2, Name: "Hoodie", SKU: "HOOD-1", TotalStock: 3, Variants: []catalog.Variant{
			{ID: 10, ProductID: 2, SKU: "HOOD-1-M", StockQuantity: 3},
		}},
	)
	mutator := newFakeMutator()
	mutator.stock[key(1, "")] = 10
	mutator.stock[key(2, "HOOD-1-M")] = 3
	adjustments := &fakeAdjustmentRepo{}
	h := NewCreateAdjustmentHandler(products, mutator, adjustments, &fakeSequence{})
	return mutator, adjustments, h
}

func TestCreateAdjustment_HappyPath(t *testing.T) {
	mutator, adjustments, h := adjustmentFixture()

	adjustment, err := h.Handle(context.Background(), CreateAdjustmentCommand{
		Actor: "warehouse",
		Notes: "water damage in aisle 3",
		Lines: []AdjustmentLineInput{
			{ProductID: 1, Quantity: 4, Reason: domain.ReasonDamaged},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "ADJ-000001", adjustment.Number)
	assert.Equal(t, 4, adjustment.TotalQuantity)

	require.Len(t, adjustment.Lines, 1)
	assert.Equal(t, 10, adjustment.Lines[0].PreviousStock)
	assert.Equal(t, 6, adjustment.Lines[0].NewStock)
	assert.Equal(t, domain.ReasonDamaged, adjustment.Lines[0].Reason)

	assert.Equal(t, 6, mutator.stock[key(1, "")])
	require.Len(t, mutator.applied, 1)
	assert.Equal(t, inventory.LedgerTypeAdjustment, mutator.applied[0].Type)
	assert.Equal(t, -4, mutator.applied[0].Quantity)
	assert.Equal(t, "damaged", mutator.applied[0].Reason)
	assert.Equal(t, "ADJ-000001", mutator.applied[0].Reference)

	require.Len(t, adjustments.created, 1)
}

func TestCreateAdjustment_InsufficientStockAbortsBatch(t *testing.T) {
	mutator, adjustments, h := adjustmentFixture()

	_, err := h.Handle(context.Background(), CreateAdjustmentCommand{
		Lines: []AdjustmentLineInput{
			{ProductID: 1, Quantity: 2, Reason: domain.ReasonExpired},
			{ProductID: 2, VariantSKU: "HOOD-1-M", Quantity: 4, Reason: domain.ReasonDamaged},
		},
	})

	require.Error(t, err)
	lines := apperror.LinesOf(err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Index)
	assert.Equal(t, "Cannot remove 4 items. Current stock is only 3.", lines[0].Message)

	assert.Empty(t, mutator.applied, "any invalid line aborts the whole batch with zero stock changes")
	assert.Equal(t, 10, mutator.stock[key(1, "")])
	assert.Empty(t, adjustments.created)
}

func TestCreateAdjustment_UnknownReason(t *testing.T) {
	_, _, h := adjustmentFixture()

	_, err := h.Handle(context.Background(), CreateAdjustmentCommand{
		Lines: []AdjustmentLineInput{{ProductID: 1, Quantity: 1, Reason: "vaporized"}},
	})

	require.Error(t, err)
	lines := apperror.LinesOf(err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Unknown adjustment reason 'vaporized'", lines[0].Message)
}

func TestCreateAdjustment_VariantProductRequiresSKU(t *testing.T) {
	_, _, h := adjustmentFixture()

	_, err := h.Handle(context.Background(), CreateAdjustmentCommand{
		Lines: []AdjustmentLineInput{{ProductID: 2, Quantity: 1, Reason: domain.ReasonLost}},
	})

	require.Error(t, err)
	lines := apperror.LinesOf(err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Product 2 has variants; specify a variant SKU", lines[0].Message)
}

func TestCreateAdjustment_EmptyBatchRejected(t *testing.T) {
	_, _, h := adjustmentFixture()
	_, err := h.Handle(context.Background(), CreateAdjustmentCommand{})

	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Empty(t, apperror.LinesOf(err))
}

func TestValidReason(t *testing.T) {
	for _, r := range []domain.Reason{
		domain.ReasonDamaged, domain.ReasonExpired, domain.ReasonLost, domain.ReasonTheft,
		domain.ReasonReturned, domain.ReasonDefective, domain.ReasonWaste, domain.ReasonOther,
	} {
		assert.True(t, domain.ValidReason(r), "reason %s", r)
	}
	assert.False(t, domain.ValidReason("vaporized"))
	assert.False(t, domain.ValidReason(""))
}
