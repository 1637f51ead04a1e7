package command

import (
	"context"

	"github.com/tair/commerce-core/internal/order/domain"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/logger"
)

// UpdatePaymentCommand represents the command to update the payment axis
type UpdatePaymentCommand struct {
	OrderID   uint
	NewStatus domain.PaymentStatus
	Actor     string
}

// UpdatePaymentHandler handles payment status changes. The payment axis is
// independent of the lifecycle status and is checked separately.
type UpdatePaymentHandler struct {
	orders  domain.OrderRepository
	loyalty domain.LoyaltyService
}

// NewUpdatePaymentHandler creates a new update payment handler. loyalty may
// be nil.
func NewUpdatePaymentHandler(orders domain.OrderRepository, loyalty domain.LoyaltyService) *UpdatePaymentHandler {
	return &UpdatePaymentHandler{orders: orders, loyalty: loyalty}
}

// Handle executes the update payment command
func (h *UpdatePaymentHandler) Handle(ctx context.Context, cmd UpdatePaymentCommand) (*domain.Order, error) {
	if !domain.ValidPaymentStatus(cmd.NewStatus) {
		return nil, apperror.Validation("Unknown payment status '%s'", cmd.NewStatus)
	}

	order, err := h.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	from := order.PaymentStatus
	if from == cmd.NewStatus {
		return nil, apperror.Validation("Payment status is already '%s'", from)
	}

	claimed, err := h.orders.UpdatePaymentStatus(ctx, order.ID, from, cmd.NewStatus)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperror.Validation("Payment status changed concurrently, please retry")
	}

	order.PaymentStatus = cmd.NewStatus

	// Payment success earns loyalty unless points already paid for the order
	if cmd.NewStatus == domain.PaymentPaid && h.loyalty != nil && order.LoyaltyPointsUsed == 0 {
		if err := h.loyalty.EarnFromOrder(ctx, order.UserID, order.Number, order.Items, domain.TriggerPaymentSuccess); err != nil {
			logger.Warn(ctx).Err(err).Str("order_number", order.Number).Msg("Loyalty earn failed")
		}
	}

	logger.Info(ctx).
		Uint("order_id", order.ID).
		Str("from", string(from)).
		Str("to", string(cmd.NewStatus)).
		Msg("Payment status updated")

	return order, nil
}
