package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/commerce-core/internal/catalog/domain"
	"github.com/tair/commerce-core/internal/catalog/usecase/command"
	"github.com/tair/commerce-core/internal/catalog/usecase/query"
	"github.com/tair/commerce-core/pkg/apperror"
	"github.com/tair/commerce-core/pkg/auth"
	"github.com/tair/commerce-core/pkg/logger"
)

// ProductHandler handles HTTP requests for products using CQRS pattern
type ProductHandler struct {
	createHandler *command.CreateProductHandler
	updateHandler *command.UpdateProductHandler

	getProductHandler *query.GetProductHandler
	listHandler       *query.ListProductsHandler
	statsHandler      *query.GetStatsHandler

	repo           domain.ProductRepository
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	totalProducts  prometheus.Gauge
}

// NewProductHandler creates a new product handler
func NewProductHandler(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	getProductHandler *query.GetProductHandler,
	listHandler *query.ListProductsHandler,
	statsHandler *query.GetStatsHandler,
	repo domain.ProductRepository,
) *ProductHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_service_product_requests_total",
			Help: "Total number of product requests to inventory service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_service_product_request_duration_seconds",
			Help:    "Duration of product requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	totalProducts := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inventory_service_total_products",
			Help: "Total number of products in the system",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(totalProducts)

	return &ProductHandler{
		createHandler:     createHandler,
		updateHandler:     updateHandler,
		getProductHandler: getProductHandler,
		listHandler:       listHandler,
		statsHandler:      statsHandler,
		repo:              repo,
		requestCounter:    requestCounter,
		requestLatency:    requestLatency,
		totalProducts:     totalProducts,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *ProductHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()

		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

func (h *ProductHandler) RegisterRoutes(router *mux.Router) {
	// Public routes (no auth required)
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", h.ListProducts)).Methods("GET")
	router.HandleFunc("/api/products/stats", h.metricsMiddleware("/api/products/stats", h.GetStats)).Methods("GET")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", h.GetProduct)).Methods("GET")

	// Admin routes (admin role required)
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", auth.AdminMiddleware(h.CreateProduct))).Methods("POST")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", auth.AdminMiddleware(h.UpdateProduct))).Methods("PUT")
}

// variantView is a variant with its derived stock status
type variantView struct {
	domain.Variant
	StockStatus domain.StockStatus `json:"stock_status"`
}

// productView is a product with derived stock statuses attached
type productView struct {
	domain.Product
	StockStatus domain.StockStatus `json:"stock_status"`
	Variants    []variantView      `json:"variants,omitempty"`
}

func viewOf(p *domain.Product) productView {
	view := productView{Product: *p, StockStatus: p.StockStatus()}
	view.Product.Variants = nil
	for i := range p.Variants {
		v := p.Variants[i]
		view.Variants = append(view.Variants, variantView{Variant: v, StockStatus: v.StockStatus()})
	}
	return view
}

func viewsOf(products []domain.Product) []productView {
	views := make([]productView, 0, len(products))
	for i := range products {
		views = append(views, viewOf(&products[i]))
	}
	return views
}

type variantRequest struct {
	SKU               string   `json:"sku"`
	Name              string   `json:"name"`
	StockQuantity     *int     `json:"stock_quantity"`
	CostPrice         *float64 `json:"cost_price"`
	CurrentPrice      *float64 `json:"current_price"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name              string           `json:"name"`
		Description       string           `json:"description"`
		Category          string           `json:"category"`
		SKU               string           `json:"sku"`
		Price             float64          `json:"price"`
		Stock             int              `json:"stock"`
		LowStockThreshold int              `json:"low_stock_threshold"`
		IsActive          *bool            `json:"is_active"`
		Variants          []variantRequest `json:"variants"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.CreateProductCommand{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		SKU:               req.SKU,
		Price:             req.Price,
		InitialStock:      req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          req.IsActive == nil || *req.IsActive,
		Actor:             auth.ActorFromContext(r.Context()),
	}
	for _, v := range req.Variants {
		input := command.VariantInput{SKU: v.SKU, Name: v.Name}
		if v.StockQuantity != nil {
			input.StockQuantity = *v.StockQuantity
		}
		if v.CostPrice != nil {
			input.CostPrice = *v.CostPrice
		}
		if v.CurrentPrice != nil {
			input.CurrentPrice = *v.CurrentPrice
		}
		if v.LowStockThreshold != nil {
			input.LowStockThreshold = *v.LowStockThreshold
		}
		cmd.Variants = append(cmd.Variants, input)
	}

	product, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create product")
		respondAppError(w, err)
		return
	}

	h.updateProductsMetric(r)

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product created successfully",
		Data:    viewOf(product),
	})
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	q := query.ListProductsQuery{
		Category: r.URL.Query().Get("category"),
		Page:     page,
		Limit:    limit,
	}

	result, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list products")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"products": viewsOf(result.Products),
			"total":    result.Total,
			"page":     result.Page,
			"limit":    result.Limit,
		},
	})
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := h.getProductHandler.Handle(r.Context(), query.GetProductQuery{ProductID: id})
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    viewOf(product),
	})
}

// UpdateProduct handles PUT /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name              *string  `json:"name"`
		Description       *string  `json:"description"`
		Category          *string  `json:"category"`
		Price             *float64 `json:"price"`
		Stock             *int     `json:"stock"`
		LowStockThreshold *int     `json:"low_stock_threshold"`
		IsActive          *bool    `json:"is_active"`
		Variants          []struct {
			SKU               string   `json:"sku"`
			Name              *string  `json:"name"`
			StockQuantity     *int     `json:"stock_quantity"`
			CostPrice         *float64 `json:"cost_price"`
			CurrentPrice      *float64 `json:"current_price"`
			LowStockThreshold *int     `json:"low_stock_threshold"`
		} `json:"variants"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.UpdateProductCommand{
		ProductID:         id,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Price:             req.Price,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          req.IsActive,
		TotalStock:        req.Stock,
		Actor:             auth.ActorFromContext(r.Context()),
	}
	for _, v := range req.Variants {
		cmd.Variants = append(cmd.Variants, command.VariantPatch{
			SKU:               v.SKU,
			Name:              v.Name,
			StockQuantity:     v.StockQuantity,
			CostPrice:         v.CostPrice,
			CurrentPrice:      v.CurrentPrice,
			LowStockThreshold: v.LowStockThreshold,
		})
	}

	product, err := h.updateHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to update product")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    viewOf(product),
	})
}

// GetStats handles GET /api/products/stats
func (h *ProductHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context(), query.GetStatsQuery{})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to get stats")
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    stats,
	})
}

func (h *ProductHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
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
			Message: "Inventory service is healthy",
		})
	}).Methods("GET")
}

// updateProductsMetric updates the total products gauge
func (h *ProductHandler) updateProductsMetric(r *http.Request) {
	count, err := h.repo.Count(r.Context())
	if err == nil {
		h.totalProducts.Set(float64(count))
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid product ID",
		})
		return 0, false
	}
	return uint(id), true
}

// respondAppError maps an application error to its HTTP status. Batch
// validation failures carry their per-line errors in the data payload.
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

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
