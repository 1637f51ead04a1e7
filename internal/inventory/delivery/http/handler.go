package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/internal/inventory/usecase/command"
	"github.com/tair/commerce-core/internal/inventory/usecase/query"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/auth"
	"github.com/tair/commerce-core/pkg/logger"
)

// InventoryHandler handles HTTP requests for stock mutations and the ledger
type InventoryHandler struct {
	updateHandler  *command.UpdateStockHandler
	bulkHandler    *command.BulkUpdateHandler
	historyHandler *query.HistoryHandler
	summaryHandler *query.SummaryHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	stockMutations *prometheus.CounterVec
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(
	updateHandler *command.UpdateStockHandler,
	bulkHandler *command.BulkUpdateHandler,
	historyHandler *query.HistoryHandler,
	summaryHandler *query.SummaryHandler,
) *InventoryHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_service_stock_requests_total",
			Help: "Total number of stock requests to inventory service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_service_stock_request_duration_seconds",
			Help:    "Duration of stock requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	stockMutations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_service_stock_mutations_total",
			Help: "Total number of applied stock mutations by type",
		},
		[]string{"type"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(stockMutations)

	return &InventoryHandler{
		updateHandler:  updateHandler,
		bulkHandler:    bulkHandler,
		historyHandler: historyHandler,
		summaryHandler: summaryHandler,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		stockMutations: stockMutations,
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

func (h *InventoryHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()

		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/inventory/summary", h.metricsMiddleware("/api/inventory/summary", h.GetSummary)).Methods("GET")
	router.HandleFunc("/api/inventory/{productId}/history", h.metricsMiddleware("/api/inventory/{productId}/history", h.GetHistory)).Methods("GET")

	router.HandleFunc("/api/inventory/{productId}/stock", h.metricsMiddleware("/api/inventory/{productId}/stock", auth.AdminMiddleware(h.UpdateStock))).Methods("PATCH")
	router.HandleFunc("/api/inventory/stock/bulk", h.metricsMiddleware("/api/inventory/stock/bulk", auth.AdminMiddleware(h.BulkUpdateStock))).Methods("POST")
}

type stockRequest struct {
	VariantSKU string   `json:"variant_sku"`
	Type       string   `json:"type"`
	Quantity   int      `json:"quantity"`
	Reason     string   `json:"reason"`
	Reference  string   `json:"reference"`
	UnitCost   *float64 `json:"unit_cost"`
	Notes      string   `json:"notes"`
}

// UpdateStock handles PATCH /api/inventory/{productId}/stock
func (h *InventoryHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathProductID(w, r)
	if !ok {
		return
	}

	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.UpdateStockCommand{
		ProductID:  productID,
		VariantSKU: req.VariantSKU,
		Type:       domain.LedgerType(req.Type),
		Quantity:   req.Quantity,
		Reason:     req.Reason,
		Reference:  req.Reference,
		UnitCost:   req.UnitCost,
		Notes:      req.Notes,
		Actor:      auth.ActorFromContext(r.Context()),
	}

	applied, err := h.updateHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to update stock")
		respondAppError(w, err)
		return
	}

	h.stockMutations.WithLabelValues(req.Type).Inc()

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock updated successfully",
		Data:    applied,
	})
}

// BulkUpdateStock handles POST /api/inventory/stock/bulk
func (h *InventoryHandler) BulkUpdateStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []struct {
			ProductID uint `json:"product_id"`
			stockRequest
		} `json:"items"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.BulkUpdateCommand{Actor: auth.ActorFromContext(r.Context())}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, command.UpdateStockCommand{
			ProductID:  item.ProductID,
			VariantSKU: item.VariantSKU,
			Type:       domain.LedgerType(item.Type),
			Quantity:   item.Quantity,
			Reason:     item.Reason,
			Reference:  item.Reference,
			UnitCost:   item.UnitCost,
			Notes:      item.Notes,
		})
	}

	results, err := h.bulkHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to process bulk stock update")
		respondAppError(w, err)
		return
	}

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
			h.stockMutations.WithLabelValues(string(cmd.Items[res.Index].Type)).Inc()
		}
	}

	// 207 when some lines failed: the response body carries per-line outcomes
	status := http.StatusOK
	if succeeded < len(results) {
		status = http.StatusMultiStatus
	}

	respondJSON(w, status, Response{
		Success: succeeded == len(results),
		Data: map[string]interface{}{
			"results":   results,
			"total":     len(results),
			"succeeded": succeeded,
		},
	})
}

// GetHistory handles GET /api/inventory/{productId}/history
func (h *InventoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathProductID(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	q := query.HistoryQuery{
		ProductID:  productID,
		VariantSKU: r.URL.Query().Get("variant_sku"),
		Limit:      limit,
		Offset:     offset,
	}

	page, err := h.historyHandler.Handle(r.Context(), q)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to get stock history")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    page,
	})
}

// GetSummary handles GET /api/inventory/summary
func (h *InventoryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaryHandler.Handle(r.Context())
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to get inventory summary")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    summary,
	})
}

func pathProductID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["productId"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid product ID",
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
