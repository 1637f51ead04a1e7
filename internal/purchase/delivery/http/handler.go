package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/commerce-core/internal/purchase/usecase/command"
	"github.com/tair/commerce-core/internal/purchase/usecase/query"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/auth"
	"github.com/tair/commerce-core/pkg/logger"
)

// PurchaseHandler handles HTTP requests for purchase batches
type PurchaseHandler struct {
	createHandler *command.CreatePurchaseHandler
	getHandler    *query.GetPurchaseHandler
	listHandler   *query.ListPurchasesHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(
	createHandler *command.CreatePurchaseHandler,
	getHandler *query.GetPurchaseHandler,
	listHandler *query.ListPurchasesHandler,
) *PurchaseHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_service_purchase_requests_total",
			Help: "Total number of purchase requests to inventory service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_service_purchase_request_duration_seconds",
			Help:    "Duration of purchase requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &PurchaseHandler{
		createHandler:  createHandler,
		getHandler:     getHandler,
		listHandler:    listHandler,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
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

func (h *PurchaseHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()

		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

func (h *PurchaseHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/purchases", h.metricsMiddleware("/api/purchases", auth.Middleware(h.ListPurchases))).Methods("GET")
	router.HandleFunc("/api/purchases/{id}", h.metricsMiddleware("/api/purchases/{id}", auth.Middleware(h.GetPurchase))).Methods("GET")
	router.HandleFunc("/api/purchases", h.metricsMiddleware("/api/purchases", auth.AdminMiddleware(h.CreatePurchase))).Methods("POST")
}

// CreatePurchase handles POST /api/purchases
func (h *PurchaseHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Supplier string `json:"supplier"`
		Notes    string `json:"notes"`
		Lines    []struct {
			ProductID  uint    `json:"product_id"`
			VariantSKU string  `json:"variant_sku"`
			Quantity   int     `json:"quantity"`
			UnitCost   float64 `json:"unit_cost"`
		} `json:"lines"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.CreatePurchaseCommand{
		Supplier: req.Supplier,
		Notes:    req.Notes,
		Actor:    auth.ActorFromContext(r.Context()),
	}
	for _, line := range req.Lines {
		cmd.Lines = append(cmd.Lines, command.PurchaseLineInput{
			ProductID:  line.ProductID,
			VariantSKU: line.VariantSKU,
			Quantity:   line.Quantity,
			UnitCost:   line.UnitCost,
		})
	}

	purchase, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create purchase")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Purchase created successfully",
		Data:    purchase,
	})
}

// GetPurchase handles GET /api/purchases/{id}
func (h *PurchaseHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid purchase ID",
		})
		return
	}

	purchase, err := h.getHandler.Handle(r.Context(), query.GetPurchaseQuery{PurchaseID: uint(id)})
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    purchase,
	})
}

// ListPurchases handles GET /api/purchases
func (h *PurchaseHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	purchases, err := h.listHandler.Handle(r.Context(), query.ListPurchasesQuery{Limit: limit, Offset: offset})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list purchases")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"purchases": purchases,
			"count":     len(purchases),
		},
	})
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
