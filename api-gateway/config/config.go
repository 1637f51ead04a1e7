package config

import (
	"os"
	"strings"
	"time"
)

// ServiceConfig holds configuration for a backend service. Instances feeds
// the round-robin balancer and defaults to the single BaseURL.
type ServiceConfig struct {
	Name        string
	BaseURL     string
	Instances   []string
	Timeout     time.Duration
	HealthCheck string
}

// GatewayConfig holds the main gateway configuration
type GatewayConfig struct {
	Port     string
	Services map[string]ServiceConfig
}

// LoadConfig loads the gateway configuration
func LoadConfig() *GatewayConfig {
	inventoryURL := getEnv("INVENTORY_SERVICE_URL", "http://localhost:8082")
	orderURL := getEnv("ORDER_SERVICE_URL", "http://localhost:8083")

	return &GatewayConfig{
		Port: getEnv("GATEWAY_PORT", "8000"),
		Services: map[string]ServiceConfig{
			"inventory": {
				Name:        "inventory-service",
				BaseURL:     inventoryURL,
				Instances:   instances("INVENTORY_SERVICE_URLS", inventoryURL),
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
			"orders": {
				Name:        "order-service",
				BaseURL:     orderURL,
				Instances:   instances("ORDER_SERVICE_URLS", orderURL),
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
		},
	}
}

// instances reads a comma-separated instance list, falling back to the
// single base URL.
func instances(key, fallback string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		urls := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				urls = append(urls, trimmed)
			}
		}
		if len(urls) > 0 {
			return urls
		}
	}
	return []string{fallback}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
