package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/commerce-core/api-gateway/config"
	"github.com/tair/commerce-core/api-gateway/health"
	"github.com/tair/commerce-core/api-gateway/middleware"
	"github.com/tair/commerce-core/api-gateway/proxy"
)

// RouteDefinition defines a route mapping
type RouteDefinition struct {
	Prefix      string
	ServiceName string
	Description string
	RequireUser bool // every method needs a valid token
	StaffWrites bool // mutating methods need the admin role at the edge
}

// Routes holds all route definitions
var Routes = []RouteDefinition{
	// The catalog and ledger read surface is browsable without a token;
	// only staff may edit products or move stock.
	{
		Prefix:      "/api/products",
		ServiceName: "inventory",
		Description: "Product catalog with live stock status",
		StaffWrites: true,
	},
	{
		Prefix:      "/api/inventory",
		ServiceName: "inventory",
		Description: "Stock mutations, ledger history and summary",
		StaffWrites: true,
	},

	// Warehouse documents are staff records end to end
	{
		Prefix:      "/api/purchases",
		ServiceName: "inventory",
		Description: "Purchase batches",
		RequireUser: true,
		StaffWrites: true,
	},
	{
		Prefix:      "/api/adjustments",
		ServiceName: "inventory",
		Description: "Stock adjustments and write-offs",
		RequireUser: true,
		StaffWrites: true,
	},

	// Orders are identity-scoped; status changes are checked downstream
	{
		Prefix:      "/api/orders",
		ServiceName: "orders",
		Description: "Order lifecycle",
		RequireUser: true,
	},
}

// SetupRoutes configures all routes in the gateway
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig) {
	// Create reverse proxy
	reverseProxy := proxy.NewReverseProxy(cfg)

	// Create health checker
	healthChecker := health.NewHealthChecker(cfg)

	// Gateway quick health check (no downstream checks)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	// Liveness probe (for Kubernetes)
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "alive",
		})
	})

	// Readiness probe (checks downstream services)
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckAllServices(ctx)

		statusCode := fiber.StatusOK
		if healthStatus.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(healthStatus)
	})

	// Detailed service health checks
	app.Get("/health/services", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckAllServices(ctx)
		return c.JSON(healthStatus)
	})

	// API routes overview
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Commerce Core API Gateway",
			"version": "1.0.0",
			"routes":  Routes,
		})
	})

	// Register all service routes
	for _, route := range Routes {
		registerServiceRoutes(app, route, reverseProxy)
	}
}

// registerServiceRoutes registers all HTTP methods for a service prefix
func registerServiceRoutes(app *fiber.App, route RouteDefinition, proxyHandler *proxy.ReverseProxy) {
	// Create handler function
	handler := func(c *fiber.Ctx) error {
		return proxyHandler.ProxyRequest(c, route.ServiceName)
	}

	// Apply middleware based on route requirements
	var middlewares []fiber.Handler

	if route.RequireUser {
		middlewares = append(middlewares, middleware.RequireUser())
	}
	if route.StaffWrites {
		middlewares = append(middlewares, middleware.AdminWrites())
	}

	// Create a route group for this service
	group := app.Group(route.Prefix, middlewares...)

	// Handle all HTTP methods with wildcard path
	group.All("/*", handler)

	// Also handle the exact prefix path (without /*)
	if len(middlewares) > 0 {
		app.All(route.Prefix, append(middlewares, handler)...)
	} else {
		app.All(route.Prefix, handler)
	}
}
