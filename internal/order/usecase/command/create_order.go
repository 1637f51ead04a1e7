package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	catalog "github.com/tair/commerce-core/internal/catalog/domain"
	"github.com/tair/commerce-core/internal/order/domain"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/logger"
)

// OrderItemInput is one requested order line
type OrderItemInput struct {
	ProductID  uint
	VariantSKU string
	Quantity   int
}

// CreateOrderCommand represents the checkout request
type CreateOrderCommand struct {
	UserID            uint
	Items             []OrderItemInput
	ShippingAddress   string
	PaymentMethod     string
	CouponCode        string
	LoyaltyPointsUsed int
	Actor             string
}

// CreateOrderHandler handles checkout. Items are snapshotted from the
// catalog at creation; an order fully covered by loyalty points is
// confirmed immediately through the regular transition path.
type CreateOrderHandler struct {
	orders     domain.OrderRepository
	products   catalog.ProductRepository
	coupons    domain.CouponService
	transition *TransitionOrderHandler
}

// NewCreateOrderHandler creates a new create order handler. coupons may be nil.
func NewCreateOrderHandler(
	orders domain.OrderRepository,
	products catalog.ProductRepository,
	coupons domain.CouponService,
	transition *TransitionOrderHandler,
) *CreateOrderHandler {
	return &CreateOrderHandler{
		orders:     orders,
		products:   products,
		coupons:    coupons,
		transition: transition,
	}
}

// Handle executes the create order command
func (h *CreateOrderHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if cmd.UserID == 0 {
		return nil, apperror.Validation("user_id is required")
	}
	if len(cmd.Items) == 0 {
		return nil, apperror.Validation("At least one item is required")
	}
	if !domain.ValidPaymentMethod(cmd.PaymentMethod) {
		return nil, apperror.Validation("Unknown payment method '%s'", cmd.PaymentMethod)
	}
	if cmd.LoyaltyPointsUsed < 0 {
		return nil, apperror.Validation("Loyalty points must not be negative")
	}

	items, subtotal, err := h.snapshotItems(ctx, cmd.Items)
	if err != nil {
		return nil, err
	}

	if float64(cmd.LoyaltyPointsUsed) > subtotal {
		return nil, apperror.Validation("Loyalty points exceed the order subtotal")
	}

	order := &domain.Order{
		Number:            fmt.Sprintf("ORD-%s", uuid.New().String()[:8]),
		UserID:            cmd.UserID,
		Status:            domain.StatusPending,
		PaymentStatus:     domain.PaymentPending,
		PaymentMethod:     cmd.PaymentMethod,
		ShippingAddress:   cmd.ShippingAddress,
		CouponCode:        cmd.CouponCode,
		Subtotal:          subtotal,
		LoyaltyPointsUsed: cmd.LoyaltyPointsUsed,
		TotalAmount:       subtotal - float64(cmd.LoyaltyPointsUsed),
		Items:             items,
	}

	fullyPointsPaid := cmd.LoyaltyPointsUsed > 0 && order.TotalAmount == 0
	if fullyPointsPaid {
		order.PaymentStatus = domain.PaymentPaid
	}

	if err := h.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	event := &domain.StatusEvent{OrderID: order.ID, Status: domain.StatusPending, Actor: cmd.Actor}
	if err := h.orders.AppendStatusEvent(ctx, event); err != nil {
		logger.Error(ctx).Err(err).Uint("order_id", order.ID).Msg("Failed to record status event")
	}

	if cmd.CouponCode != "" && h.coupons != nil {
		if err := h.coupons.IncrementUsage(ctx, cmd.CouponCode); err != nil {
			logger.Warn(ctx).Err(err).Str("coupon", cmd.CouponCode).Msg("Coupon usage increment failed")
		}
	}

	logger.Info(ctx).
		Uint("order_id", order.ID).
		Str("order_number", order.Number).
		Uint("user_id", order.UserID).
		Float64("total", order.TotalAmount).
		Int("items", len(order.Items)).
		Msg("Order created")

	// A fully points-paid order skips straight to confirmed, decrementing
	// stock through the regular transition path.
	if fullyPointsPaid {
		confirmed, err := h.transition.Handle(ctx, TransitionOrderCommand{
			OrderID:   order.ID,
			NewStatus: domain.StatusConfirmed,
			Actor:     cmd.Actor,
		})
		if err != nil {
			logger.Error(ctx).Err(err).
				Str("order_number", order.Number).
				Msg("Auto-confirm of points-paid order failed, order left pending")
			return order, nil
		}
		return confirmed, nil
	}

	return order, nil
}

// snapshotItems prices every requested line from the catalog and freezes
// the result into immutable order items.
func (h *CreateOrderHandler) snapshotItems(ctx context.Context, inputs []OrderItemInput) ([]domain.OrderItem, float64, error) {
	items := make([]domain.OrderItem, 0, len(inputs))
	var subtotal float64
	for i, input := range inputs {
		if input.ProductID == 0 {
			return nil, 0, apperror.Validation("Item %d: product_id is required", i)
		}
		if input.Quantity <= 0 {
			return nil, 0, apperror.Validation("Item %d: quantity must be greater than 0", i)
		}

		product, err := h.products.FindByID(ctx, input.ProductID)
		if err != nil {
			return nil, 0, err
		}

		price := product.Price
		if input.VariantSKU != "" {
			variant, err := h.products.FindVariant(ctx, input.ProductID, input.VariantSKU)
			if err != nil {
				return nil, 0, err
			}
			price = variant.CurrentPrice
		} else if product.HasVariants() {
			return nil, 0, apperror.Validation("Item %d: product %d has variants; specify a variant SKU", i, input.ProductID)
		}

		items = append(items, domain.OrderItem{
			ProductID:   input.ProductID,
			VariantSKU:  input.VariantSKU,
			ProductName: product.Name,
			UnitPrice:   price,
			Quantity:    input.Quantity,
		})
		subtotal += price * float64(input.Quantity)
	}
	return items, subtotal, nil
}
