package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/commerce-core/internal/order/domain"
	"github.com/tair/commerce-core/internal/order/usecase/command"
	"github.com/tair/commerce-core/internal/order/usecase/query"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/auth"
	"github.com/tair/commerce-core/pkg/logger"
)

// OrderHandler handles HTTP requests for orders using CQRS pattern
type OrderHandler struct {
	createHandler     *command.CreateOrderHandler
	transitionHandler *command.TransitionOrderHandler
	paymentHandler    *command.UpdatePaymentHandler

	getHandler  *query.GetOrderHandler
	listHandler *query.ListOrdersHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	transitions    *prometheus.CounterVec
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(
	createHandler *command.CreateOrderHandler,
	transitionHandler *command.TransitionOrderHandler,
	paymentHandler *command.UpdatePaymentHandler,
	getHandler *query.GetOrderHandler,
	listHandler *query.ListOrdersHandler,
) *OrderHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_service_requests_total",
			Help: "Total number of requests to order service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_service_request_duration_seconds",
			Help:    "Duration of order service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_service_status_transitions_total",
			Help: "Total number of order status transitions by target status",
		},
		[]string{"to"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(transitions)

	return &OrderHandler{
		createHandler:     createHandler,
		transitionHandler: transitionHandler,
		paymentHandler:    paymentHandler,
		getHandler:        getHandler,
		listHandler:       listHandler,
		requestCounter:    requestCounter,
		requestLatency:    requestLatency,
		transitions:       transitions,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (h *OrderHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()

		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

func (h *OrderHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/orders", h.metricsMiddleware("/api/orders", auth.Middleware(h.CreateOrder))).Methods("POST")
	router.HandleFunc("/api/orders", h.metricsMiddleware("/api/orders", auth.Middleware(h.ListOrders))).Methods("GET")
	router.HandleFunc("/api/orders/{id}", h.metricsMiddleware("/api/orders/{id}", auth.Middleware(h.GetOrder))).Methods("GET")

	// Status changes are staff operations
	router.HandleFunc("/api/orders/{id}/status", h.metricsMiddleware("/api/orders/{id}/status", auth.AdminMiddleware(h.UpdateStatus))).Methods("PATCH")
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []struct {
			ProductID  uint   `json:"product_id"`
			VariantSKU string `json:"variant_sku"`
			Quantity   int    `json:"quantity"`
		} `json:"items"`
		ShippingAddress   string `json:"shipping_address"`
		PaymentMethod     string `json:"payment_method"`
		CouponCode        string `json:"coupon_code"`
		LoyaltyPointsUsed int    `json:"loyalty_points_used"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	userID, _ := r.Context().Value(auth.UserIDKey).(uint)

	cmd := command.CreateOrderCommand{
		UserID:            userID,
		ShippingAddress:   req.ShippingAddress,
		PaymentMethod:     req.PaymentMethod,
		CouponCode:        req.CouponCode,
		LoyaltyPointsUsed: req.LoyaltyPointsUsed,
		Actor:             auth.ActorFromContext(r.Context()),
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, command.OrderItemInput{
			ProductID:  item.ProductID,
			VariantSKU: item.VariantSKU,
			Quantity:   item.Quantity,
		})
	}

	order, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create order")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Order created successfully",
		Data:    order,
	})
}

// UpdateStatus handles PATCH /api/orders/{id}/status. The request may move
// the lifecycle status, the payment status, or both; the two axes are
// applied independently, lifecycle first.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathOrderID(w, r)
	if !ok {
		return
	}

	var req struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if req.Status == "" && req.PaymentStatus == "" {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Either status or payment_status is required",
		})
		return
	}

	actor := auth.ActorFromContext(r.Context())
	var order *domain.Order

	if req.Status != "" {
		updated, err := h.transitionHandler.Handle(r.Context(), command.TransitionOrderCommand{
			OrderID:   id,
			NewStatus: domain.Status(req.Status),
			Actor:     actor,
		})
		if err != nil {
			logger.Error(r.Context()).Err(err).Uint("order_id", id).Msg("Failed to transition order")
			respondAppError(w, err)
			return
		}
		h.transitions.WithLabelValues(req.Status).Inc()
		order = updated
	}

	if req.PaymentStatus != "" {
		updated, err := h.paymentHandler.Handle(r.Context(), command.UpdatePaymentCommand{
			OrderID:   id,
			NewStatus: domain.PaymentStatus(req.PaymentStatus),
			Actor:     actor,
		})
		if err != nil {
			logger.Error(r.Context()).Err(err).Uint("order_id", id).Msg("Failed to update payment status")
			respondAppError(w, err)
			return
		}
		order = updated
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Order updated successfully",
		Data:    order,
	})
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.getHandler.Handle(r.Context(), query.GetOrderQuery{OrderID: id})
	if err != nil {
		respondAppError(w, err)
		return
	}

	// Non-admin callers only ever see their own orders
	if role, _ := r.Context().Value(auth.RoleKey).(string); role != "admin" {
		if userID, _ := r.Context().Value(auth.UserIDKey).(uint); order.UserID != userID {
			respondJSON(w, http.StatusForbidden, Response{
				Success: false,
				Error:   "Access denied",
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    order,
	})
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	q := query.ListOrdersQuery{Limit: limit, Offset: offset}

	// Admins may list any user's orders; everyone else is scoped to their own
	if role, _ := r.Context().Value(auth.RoleKey).(string); role == "admin" {
		if userParam := r.URL.Query().Get("user_id"); userParam != "" {
			userID, _ := strconv.ParseUint(userParam, 10, 32)
			q.UserID = uint(userID)
		}
	} else {
		userID, _ := r.Context().Value(auth.UserIDKey).(uint)
		q.UserID = userID
	}

	orders, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list orders")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"orders": orders,
			"count":  len(orders),
		},
	})
}

func (h *OrderHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Order service is healthy",
		})
	}).Methods("GET")
}

func pathOrderID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid order ID",
		})
		return 0, false
	}
	return uint(id), true
}

func respondAppError(w http.ResponseWriter, err error) {
	resp := Response{
		Success: false,
		Error:   apperror.MessageOf(err),
	}
	if lines := apperror.LinesOf(err); len(lines) != 0 {
		resp.Data = map[string]interface{}{"errors": lines}
	}
	respondJSON(w, apperror.HTTPStatus(err), resp)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
