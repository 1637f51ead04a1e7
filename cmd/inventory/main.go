package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/commerce-core/internal/adjustment"
	adjustmentdomain "github.com/tair/commerce-core/internal/adjustment/domain"
	"github.com/tair/commerce-core/internal/catalog"
	catalogdomain "github.com/tair/commerce-core/internal/catalog/domain"
	"github.com/tair/commerce-core/internal/inventory"
	inventorydomain "github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/internal/inventory/notifier"
	"github.com/tair/commerce-core/internal/purchase"
	purchasedomain "github.com/tair/commerce-core/internal/purchase/domain"
	"github.com/tair/commerce-core/internal/sequence"
	"github.com/tair/commerce-core/kafka"
	"github.com/tair/commerce-core/pkg/database"
	"github.com/tair/commerce-core/pkg/logger"
	"github.com/tair/commerce-core/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "inventory-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting inventory service")

	// Initialize tracer
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "inventorydb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&catalogdomain.Product{},
		&catalogdomain.Variant{},
		&inventorydomain.LedgerEntry{},
		&purchasedomain.Purchase{},
		&purchasedomain.PurchaseLine{},
		&adjustmentdomain.Adjustment{},
		&adjustmentdomain.AdjustmentLine{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Document number sequences live outside gorm
	numbers := sequence.NewPostgresGenerator(sqlDB)
	if err := numbers.EnsureSchema(context.Background()); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create counters table")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Kafka publisher for low stock alerts (optional)
	var lowStock inventorydomain.LowStockNotifier
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		publisher, err := kafka.NewPublisher(strings.Split(brokers, ","))
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to connect to Kafka, low stock alerts disabled")
		} else {
			defer publisher.Close()
			lowStock = notifier.NewKafkaLowStockNotifier(publisher)
			logger.Logger.Info().Str("brokers", brokers).Msg("Kafka publisher initialized")
		}
	}

	// Redis cache for the inventory summary (optional)
	var cache *redis.Client
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(ctx).Err(); err != nil {
			logger.Logger.Warn().Err(err).Str("redis_addr", addr).Msg("Redis unavailable, summary cache disabled")
			cache = nil
		} else {
			logger.Logger.Info().Str("redis_addr", addr).Msg("Redis cache initialized")
		}
		cancel()
	}

	// Initialize handlers with Wire DI
	productHandler, err := catalog.InitializeProductHandler(db)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize product handler")
	}
	inventoryHandler, err := inventory.InitializeInventoryHandler(db, lowStock, cache)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize inventory handler")
	}
	purchaseHandler, err := purchase.InitializePurchaseHandler(db, numbers)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize purchase handler")
	}
	adjustmentHandler, err := adjustment.InitializeAdjustmentHandler(db, numbers)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize adjustment handler")
	}

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8082")
	go startHTTPServer(httpPort, sqlDB, productHandler, inventoryHandler, purchaseHandler, adjustmentHandler)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
}

type routeRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

func startHTTPServer(port string, sqlDB *sql.DB, handlers ...routeRegistrar) {
	// Setup router
	router := mux.NewRouter()

	// Register routes
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := sqlDB.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"success":false,"error":"Database unavailable"}`))
			return
		}
		w.Write([]byte(`{"success":true,"message":"Inventory service is healthy"}`))
	}).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := otelhttp.NewHandler(c.Handler(router), "inventory-service")

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Msg("HTTP server started")

	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
