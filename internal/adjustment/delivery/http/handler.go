package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/commerce-core/internal/adjustment/domain"
	"github.com/tair/commerce-core/internal/adjustment/usecase/command"
	"github.com/tair/commerce-core/internal/adjustment/usecase/query"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/auth"
	"github.com/tair/commerce-core/pkg/logger"
)

// AdjustmentHandler handles HTTP requests for stock adjustments
type AdjustmentHandler struct {
	createHandler *command.CreateAdjustmentHandler
	getHandler    *query.GetAdjustmentHandler
	listHandler   *query.ListAdjustmentsHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	writtenOff     *prometheus.CounterVec
}

// NewAdjustmentHandler creates a new adjustment handler
func NewAdjustmentHandler(
	createHandler *command.CreateAdjustmentHandler,
	getHandler *query.GetAdjustmentHandler,
	listHandler *query.ListAdjustmentsHandler,
) *AdjustmentHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_service_adjustment_requests_total",
			Help: "Total number of adjustment requests to inventory service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_service_adjustment_request_duration_seconds",
			Help:    "Duration of adjustment requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	writtenOff := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_service_adjustment_units_total",
			Help: "Total stock units written off by adjustment reason",
		},
		[]string{"reason"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(writtenOff)

	return &AdjustmentHandler{
		createHandler:  createHandler,
		getHandler:     getHandler,
		listHandler:    listHandler,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		writtenOff:     writtenOff,
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

func (h *AdjustmentHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()

		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

func (h *AdjustmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/adjustments", h.metricsMiddleware("/api/adjustments", auth.Middleware(h.ListAdjustments))).Methods("GET")
	router.HandleFunc("/api/adjustments/{id}", h.metricsMiddleware("/api/adjustments/{id}", auth.Middleware(h.GetAdjustment))).Methods("GET")
	router.HandleFunc("/api/adjustments", h.metricsMiddleware("/api/adjustments", auth.AdminMiddleware(h.CreateAdjustment))).Methods("POST")
}

// CreateAdjustment handles POST /api/adjustments
func (h *AdjustmentHandler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
		Lines []struct {
			ProductID  uint   `json:"product_id"`
			VariantSKU string `json:"variant_sku"`
			Quantity   int    `json:"quantity"`
			Reason     string `json:"reason"`
		} `json:"lines"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.CreateAdjustmentCommand{
		Notes: req.Notes,
		Actor: auth.ActorFromContext(r.Context()),
	}
	for _, line := range req.Lines {
		cmd.Lines = append(cmd.Lines, command.AdjustmentLineInput{
			ProductID:  line.ProductID,
			VariantSKU: line.VariantSKU,
			Quantity:   line.Quantity,
			Reason:     domain.Reason(line.Reason),
		})
	}

	adjustment, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create adjustment")
		respondAppError(w, err)
		return
	}

	for _, line := range adjustment.Lines {
		h.writtenOff.WithLabelValues(string(line.Reason)).Add(float64(line.Quantity))
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Adjustment created successfully",
		Data:    adjustment,
	})
}

// GetAdjustment handles GET /api/adjustments/{id}
func (h *AdjustmentHandler) GetAdjustment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid adjustment ID",
		})
		return
	}

	adjustment, err := h.getHandler.Handle(r.Context(), query.GetAdjustmentQuery{AdjustmentID: uint(id)})
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    adjustment,
	})
}

// ListAdjustments handles GET /api/adjustments
func (h *AdjustmentHandler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	adjustments, err := h.listHandler.Handle(r.Context(), query.ListAdjustmentsQuery{Limit: limit, Offset: offset})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list adjustments")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"adjustments": adjustments,
			"count":       len(adjustments),
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
