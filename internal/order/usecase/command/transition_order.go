package command

import (
	"context"

	catalog "github.com/tair/commerce-core/internal/catalog/domain"
	inventory "github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/internal/order/domain"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/logger"
)

// Policy captures configurable lifecycle behavior
type Policy struct {
	// DecrementSoldOnReturn controls whether delivered→returned takes the
	// returned quantity back out of the lifetime-sold counter. Off by
	// default: sold_count is treated as a historical sales metric.
	DecrementSoldOnReturn bool
}

// TransitionOrderCommand represents the command to move an order to a new status
type TransitionOrderCommand struct {
	OrderID   uint
	NewStatus domain.Status
	Actor     string
}

// TransitionOrderHandler drives the order lifecycle state machine and the
// stock, ledger and metric side effects keyed to each edge.
type TransitionOrderHandler struct {
	orders    domain.OrderRepository
	products  catalog.ProductRepository
	mutator   inventory.StockMutator
	loyalty   domain.LoyaltyService
	publisher domain.EventPublisher
	policy    Policy
}

// NewTransitionOrderHandler creates a new transition handler. loyalty and
// publisher may be nil.
func NewTransitionOrderHandler(
	orders domain.OrderRepository,
	products catalog.ProductRepository,
	mutator inventory.StockMutator,
	loyalty domain.LoyaltyService,
	publisher domain.EventPublisher,
	policy Policy,
) *TransitionOrderHandler {
	return &TransitionOrderHandler{
		orders:    orders,
		products:  products,
		mutator:   mutator,
		loyalty:   loyalty,
		publisher: publisher,
		policy:    policy,
	}
}

// Handle executes the transition command
func (h *TransitionOrderHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (*domain.Order, error) {
	if !domain.ValidStatus(cmd.NewStatus) {
		return nil, apperror.Validation("Unknown order status '%s'", cmd.NewStatus)
	}

	order, err := h.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if from == cmd.NewStatus || !domain.CanTransition(from, cmd.NewStatus) {
		return nil, apperror.InvalidTransition(string(from), string(cmd.NewStatus))
	}

	// Claim the edge first: the compare-and-swap serializes concurrent
	// transitions of the same order before any side effect runs.
	claimed, err := h.orders.UpdateStatus(ctx, order.ID, from, cmd.NewStatus)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperror.InvalidTransition(string(from), string(cmd.NewStatus))
	}

	if err := h.applyEdgeEffects(ctx, order, from, cmd); err != nil {
		// Release the claimed edge so the order is observably unchanged
		if _, revertErr := h.orders.UpdateStatus(ctx, order.ID, cmd.NewStatus, from); revertErr != nil {
			logger.Error(ctx).Err(revertErr).
				Uint("order_id", order.ID).
				Msg("Failed to revert order status after side-effect failure")
		}
		return nil, err
	}

	event := &domain.StatusEvent{OrderID: order.ID, Status: cmd.NewStatus, Actor: cmd.Actor}
	if err := h.orders.AppendStatusEvent(ctx, event); err != nil {
		logger.Error(ctx).Err(err).Uint("order_id", order.ID).Msg("Failed to record status event")
	}

	order.Status = cmd.NewStatus
	order.StatusEvents = append(order.StatusEvents, *event)

	if h.publisher != nil {
		if err := h.publisher.OrderStatusChanged(ctx, order, from); err != nil {
			logger.Warn(ctx).Err(err).Uint("order_id", order.ID).Msg("Failed to publish status change")
		}
	}

	logger.Info(ctx).
		Uint("order_id", order.ID).
		Str("order_number", order.Number).
		Str("from", string(from)).
		Str("to", string(cmd.NewStatus)).
		Str("actor", cmd.Actor).
		Msg("Order transitioned")

	return order, nil
}

// applyEdgeEffects runs the side effects keyed to the edge, not the
// destination alone.
func (h *TransitionOrderHandler) applyEdgeEffects(ctx context.Context, order *domain.Order, from domain.Status, cmd TransitionOrderCommand) error {
	switch cmd.NewStatus {
	case domain.StatusConfirmed:
		return h.reserveStock(ctx, order, cmd.Actor)
	case domain.StatusReturned:
		return h.restoreStock(ctx, order, cmd.Actor)
	case domain.StatusDelivered:
		return h.recordDelivery(ctx, order)
	}
	return nil
}

// reserveStock decrements stock for every item in one all-or-nothing
// transaction and writes a ledger entry per item.
func (h *TransitionOrderHandler) reserveStock(ctx context.Context, order *domain.Order, actor string) error {
	deltas := make([]inventory.Delta, len(order.Items))
	for i, item := range order.Items {
		deltas[i] = inventory.Delta{
			ProductID:  item.ProductID,
			VariantSKU: item.VariantSKU,
			Quantity:   -item.Quantity,
			Type:       inventory.LedgerTypeRemove,
			Reason:     "order_confirmed",
			Reference:  order.Number,
			Actor:      actor,
		}
	}
	_, err := h.mutator.ApplyAll(ctx, deltas)
	return err
}

// restoreStock reverses the confirmation decrement when a shipped or
// delivered order comes back.
func (h *TransitionOrderHandler) restoreStock(ctx context.Context, order *domain.Order, actor string) error {
	deltas := make([]inventory.Delta, len(order.Items))
	for i, item := range order.Items {
		deltas[i] = inventory.Delta{
			ProductID:  item.ProductID,
			VariantSKU: item.VariantSKU,
			Quantity:   item.Quantity,
			Type:       inventory.LedgerTypeAdd,
			Reason:     "order_returned",
			Reference:  order.Number,
			Actor:      actor,
		}
	}
	if _, err := h.mutator.ApplyAll(ctx, deltas); err != nil {
		return err
	}

	if h.policy.DecrementSoldOnReturn {
		for _, item := range order.Items {
			if err := h.products.IncrementSoldCount(ctx, item.ProductID, -item.Quantity); err != nil {
				logger.Error(ctx).Err(err).
					Uint("product_id", item.ProductID).
					Msg("Failed to decrement sold counter on return")
			}
		}
	}
	return nil
}

func (h *TransitionOrderHandler) recordDelivery(ctx context.Context, order *domain.Order) error {
	for _, item := range order.Items {
		if err := h.products.IncrementSoldCount(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	// COD orders earn loyalty on delivery, unless points already paid for
	// the order.
	if h.loyalty != nil && order.PaymentMethod == domain.PaymentMethodCOD && order.LoyaltyPointsUsed == 0 {
		if err := h.loyalty.EarnFromOrder(ctx, order.UserID, order.Number, order.Items, domain.TriggerDeliveryCOD); err != nil {
			logger.Warn(ctx).Err(err).Str("order_number", order.Number).Msg("Loyalty earn failed")
		}
	}
	return nil
}
