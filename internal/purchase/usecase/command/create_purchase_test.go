package command

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/tair/commerce-core/internal/catalog/domain"
	inventory "github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/internal/purchase/domain"
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

// fakeMutator records applied deltas against an in-memory stock table
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

type fakePurchaseRepo struct {
	created []*domain.Purchase
	err     error
}

func (r *fakePurchaseRepo) Create(ctx context.Context, purchase *domain.Purchase) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, purchase)
	return nil
}

func (r *fakePurchaseRepo) FindByID(ctx context.Context, id uint) (*domain.Purchase, error) {
	return nil, apperror.NotFound("Purchase %d not found", id)
}

func (r *fakePurchaseRepo) FindAll(ctx context.Context, limit, offset int) ([]domain.Purchase, error) {
	return nil, nil
}

// fakeSequence issues deterministic numbers
type fakeSequence struct {
	next int64
}

func (s *fakeSequence) Next(ctx context.Context, name, prefix string) (string, error) {
	s.next++
	return fmt.Sprintf("%s-%06d", prefix, s.next), nil
}

func purchaseFixture() (*fakeProductRepo, *fakeMutator, *fakePurchaseRepo, *CreatePurchaseHandler) {
	products := newFakeProductRepo(
		&catalog.Product{ID: 1, Name: "Plain Tee", SKU: "TEE-1", TotalStock: 2},
		&catalog.Product{ID: 2, Name: "Hoodie", SKU: "HOOD-1", Variants: []catalog.Variant{
			{ID: 10, ProductID: 2, SKU: "HOOD-1-M", StockQuantity: 20},
		}},
	)
	mutator := newFakeMutator()
	mutator.stock[key(1, "")] = 2
	purchases := &fakePurchaseRepo{}
	h := NewCreatePurchaseHandler(products, mutator, purchases, &fakeSequence{})
	return products, mutator, purchases, h
}

func TestCreatePurchase_HappyPath(t *testing.T) {
	_, mutator, purchases, h := purchaseFixture()

	purchase, err := h.Handle(context.Background(), CreatePurchaseCommand{
		Supplier: "Acme Textiles",
		Actor:    "buyer",
		Lines: []PurchaseLineInput{
			{ProductID: 1, Quantity: 5, UnitCost: 100},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "PUR-000001", purchase.Number)
	assert.Equal(t, 5, purchase.TotalQuantity)
	assert.Equal(t, 500.0, purchase.TotalCost)

	require.Len(t, purchase.Lines, 1)
	assert.Equal(t, 2, purchase.Lines[0].PreviousStock)
	assert.Equal(t, 7, purchase.Lines[0].NewStock)
	assert.Equal(t, 500.0, purchase.Lines[0].LineTotal)

	assert.Equal(t, 7, mutator.stock[key(1, "")])
	require.Len(t, mutator.applied, 1)
	assert.Equal(t, inventory.LedgerTypeAdd, mutator.applied[0].Type)
	assert.Equal(t, "purchase", mutator.applied[0].Reason)
	assert.Equal(t, "PUR-000001", mutator.applied[0].Reference)
	require.NotNil(t, mutator.applied[0].UnitCost)
	assert.Equal(t, 100.0, *mutator.applied[0].UnitCost)

	require.Len(t, purchases.created, 1)
}

func TestCreatePurchase_MultiLineTotals(t *testing.T) {
	_, _, _, h := purchaseFixture()

	purchase, err := h.Handle(context.Background(), CreatePurchaseCommand{
		Lines: []PurchaseLineInput{
			{ProductID: 1, Quantity: 3, UnitCost: 50},
			{ProductID: 2, VariantSKU: "HOOD-1-M", Quantity: 10, UnitCost: 40},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 13, purchase.TotalQuantity)
	assert.Equal(t, 550.0, purchase.TotalCost)
}

func TestCreatePurchase_EmptyBatchRejected(t *testing.T) {
	_, _, _, h := purchaseFixture()
	_, err := h.Handle(context.Background(), CreatePurchaseCommand{})

	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestCreatePurchase_BatchValidatedBeforeApply(t *testing.T) {
	_, mutator, purchases, h := purchaseFixture()

	_, err := h.Handle(context.Background(), CreatePurchaseCommand{
		Lines: []PurchaseLineInput{
			{ProductID: 1, Quantity: 5, UnitCost: 100},
			{ProductID: 99, Quantity: 2, UnitCost: 10},
			{ProductID: 1, Quantity: 0, UnitCost: 10},
		},
	})

	require.Error(t, err)
	lines := apperror.LinesOf(err)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].Index)
	assert.Equal(t, "Product 99 not found", lines[0].Message)
	assert.Equal(t, 2, lines[1].Index)
	assert.Equal(t, "Quantity must be greater than 0", lines[1].Message)

	assert.Empty(t, mutator.applied, "an invalid batch must not touch stock")
	assert.Empty(t, purchases.created)
}

func TestCreatePurchase_VariantProductRequiresSKU(t *testing.T) {
	_, _, _, h := purchaseFixture()

	_, err := h.Handle(context.Background(), CreatePurchaseCommand{
		Lines: []PurchaseLineInput{{ProductID: 2, Quantity: 1, UnitCost: 10}},
	})

	require.Error(t, err)
	lines := apperror.LinesOf(err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Product 2 has variants; specify a variant SKU", lines[0].Message)
}

func TestCreatePurchase_NegativeUnitCostRejected(t *testing.T) {
	_, _, _, h := purchaseFixture()

	_, err := h.Handle(context.Background(), CreatePurchaseCommand{
		Lines: []PurchaseLineInput{{ProductID: 1, Quantity: 1, UnitCost: -5}},
	})

	require.Error(t, err)
	lines := apperror.LinesOf(err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Unit cost must not be negative", lines[0].Message)
}

func TestCreatePurchase_SequentialNumbers(t *testing.T) {
	products := newFakeProductRepo(&catalog.Product{ID: 1, Name: "Plain Tee", SKU: "TEE-1"})
	h := NewCreatePurchaseHandler(products, newFakeMutator(), &fakePurchaseRepo{}, &fakeSequence{})

	first, err := h.Handle(context.Background(), CreatePurchaseCommand{
		Lines: []PurchaseLineInput{{ProductID: 1, Quantity: 1, UnitCost: 1}},
	})
	require.NoError(t, err)

	second, err := h.Handle(context.Background(), CreatePurchaseCommand{
		Lines: []PurchaseLineInput{{ProductID: 1, Quantity: 1, UnitCost: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, "PUR-000001", first.Number)
	assert.Equal(t, "PUR-000002", second.Number)
}
