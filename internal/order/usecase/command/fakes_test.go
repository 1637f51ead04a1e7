package command

import (
	"context"
	"fmt"
	"sync"

	catalog "github.com/tair/commerce-core/internal/catalog/domain"
	inventory "github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/internal/order/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

// fakeOrderRepo keeps orders in memory; UpdateStatus and UpdatePaymentStatus
// are compare-and-swap like the real repository.
type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID uint
	orders map[uint]*domain.Order
	events []domain.StatusEvent

	createErr error
	eventErr  error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{nextID: 1, orders: make(map[uint]*domain.Order)}
}

func (r *fakeOrderRepo) put(order *domain.Order) *domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == 0 {
		order.ID = r.nextID
		r.nextID++
	}
	copied := *order
	r.orders[order.ID] = &copied
	return order
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(order)
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, apperror.NotFound("Order %d not found", id)
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) FindAll(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) FindByUser(ctx context.Context, userID uint, limit, offset int) ([]domain.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id uint, from, to domain.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	return true, nil
}

func (r *fakeOrderRepo) UpdatePaymentStatus(ctx context.Context, id uint, from, to domain.PaymentStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.PaymentStatus != from {
		return false, nil
	}
	order.PaymentStatus = to
	return true, nil
}

func (r *fakeOrderRepo) AppendStatusEvent(ctx context.Context, event *domain.StatusEvent) error {
	if r.eventErr != nil {
		return r.eventErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeOrderRepo) statusOf(id uint) domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id].Status
}

// fakeProductRepo serves product lookups and records sold-count increments
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uint]*catalog.Product
	sold     map[uint]int

	soldErr error
}

func newFakeProductRepo(products ...*catalog.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uint]*catalog.Product), sold: make(map[uint]int)}
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
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
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
	if r.soldErr != nil {
		return r.soldErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sold[productID] += quantity
	return nil
}

// fakeMutator tracks stock per product/variant key and rejects removals that
// would go negative, mirroring the conditional update in the real mutator.
type fakeMutator struct {
	mu      sync.Mutex
	stock   map[string]int
	applied []inventory.Delta
}

func newFakeMutator() *fakeMutator {
	return &fakeMutator{stock: make(map[string]int)}
}

func stockKey(productID uint, sku string) string {
	return fmt.Sprintf("%d/%s", productID, sku)
}

func (m *fakeMutator) set(productID uint, sku string, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[stockKey(productID, sku)] = quantity
}

func (m *fakeMutator) get(productID uint, sku string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[stockKey(productID, sku)]
}

func (m *fakeMutator) Apply(ctx context.Context, delta inventory.Delta) (*inventory.Applied, error) {
	applied, err := m.ApplyAll(ctx, []inventory.Delta{delta})
	if err != nil {
		return nil, err
	}
	return &applied[0], nil
}

func (m *fakeMutator) ApplyAll(ctx context.Context, deltas []inventory.Delta) ([]inventory.Applied, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// all-or-nothing: check every delta before committing any
	for _, d := range deltas {
		current := m.stock[stockKey(d.ProductID, d.VariantSKU)]
		if current+d.Quantity < 0 {
			return nil, apperror.InsufficientStock(-d.Quantity, current)
		}
	}

	results := make([]inventory.Applied, len(deltas))
	for i, d := range deltas {
		key := stockKey(d.ProductID, d.VariantSKU)
		previous := m.stock[key]
		m.stock[key] = previous + d.Quantity
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

type loyaltyCall struct {
	UserID      uint
	OrderNumber string
	Trigger     domain.LoyaltyTrigger
}

type fakeLoyalty struct {
	mu    sync.Mutex
	calls []loyaltyCall
	err   error
}

func (l *fakeLoyalty) EarnFromOrder(ctx context.Context, userID uint, orderNumber string, items []domain.OrderItem, trigger domain.LoyaltyTrigger) error {
	if l.err != nil {
		return l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, loyaltyCall{UserID: userID, OrderNumber: orderNumber, Trigger: trigger})
	return nil
}

type fakeCoupons struct {
	codes []string
	err   error
}

func (c *fakeCoupons) IncrementUsage(ctx context.Context, code string) error {
	if c.err != nil {
		return c.err
	}
	c.codes = append(c.codes, code)
	return nil
}

type publishedChange struct {
	OrderID  uint
	Previous domain.Status
	Current  domain.Status
}

type fakePublisher struct {
	mu      sync.Mutex
	changes []publishedChange
	err     error
}

func (p *fakePublisher) OrderStatusChanged(ctx context.Context, order *domain.Order, previous domain.Status) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, publishedChange{OrderID: order.ID, Previous: previous, Current: order.Status})
	return nil
}
