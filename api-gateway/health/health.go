package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/tair/commerce-core/api-gateway/config"
	"github.com/tair/commerce-core/pkg/logger"
)

// InstanceHealth is the probe result for one backend instance.
type InstanceHealth struct {
	URL     string        `json:"url"`
	Status  string        `json:"status"` // healthy, unhealthy
	Latency time.Duration `json:"latency_ms"`
	Error   string        `json:"error,omitempty"`
}

// ServiceHealth aggregates the instance probes of one service. A service
// is healthy while at least one instance answers; the balancer routes
// around dead ones.
type ServiceHealth struct {
	Name      string           `json:"name"`
	Status    string           `json:"status"` // healthy, degraded, unhealthy
	Instances []InstanceHealth `json:"instances"`
	Timestamp time.Time        `json:"timestamp"`
}

// GatewayHealth represents the overall gateway health
type GatewayHealth struct {
	Gateway  string                   `json:"gateway"`
	Status   string                   `json:"status"` // healthy, degraded, unhealthy
	Services map[string]ServiceHealth `json:"services"`
	Uptime   time.Duration            `json:"uptime_seconds"`
}

// HealthChecker probes the inventory and order services.
type HealthChecker struct {
	config    *config.GatewayConfig
	client    *http.Client
	startTime time.Time
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(cfg *config.GatewayConfig) *HealthChecker {
	return &HealthChecker{
		config: cfg,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		startTime: time.Now(),
	}
}

func (h *HealthChecker) probeInstance(ctx context.Context, baseURL, healthPath string) InstanceHealth {
	start := time.Now()
	result := InstanceHealth{URL: baseURL}

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+healthPath, nil)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
		result.Latency = time.Since(start)
		return result
	}

	resp, err := h.client.Do(req)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Failed to reach instance: %v", err)
		result.Latency = time.Since(start)
		return result
	}
	defer resp.Body.Close()

	result.Latency = time.Since(start)
	if resp.StatusCode == http.StatusOK {
		result.Status = "healthy"
	} else {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Unexpected status code: %d", resp.StatusCode)
	}
	return result
}

// CheckService probes every configured instance of one service.
func (h *HealthChecker) CheckService(ctx context.Context, name string, svc config.ServiceConfig) ServiceHealth {
	result := ServiceHealth{
		Name:      svc.Name,
		Timestamp: time.Now(),
	}

	healthyCount := 0
	for _, instance := range svc.Instances {
		probe := h.probeInstance(ctx, instance, svc.HealthCheck)
		result.Instances = append(result.Instances, probe)
		if probe.Status == "healthy" {
			healthyCount++
		}
	}

	switch {
	case healthyCount == len(result.Instances) && healthyCount > 0:
		result.Status = "healthy"
	case healthyCount > 0:
		result.Status = "degraded"
	default:
		result.Status = "unhealthy"
	}
	return result
}

// CheckAllServices probes all backend services concurrently.
func (h *HealthChecker) CheckAllServices(ctx context.Context) GatewayHealth {
	services := make(map[string]ServiceHealth)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, svc := range h.config.Services {
		wg.Add(1)
		go func(n string, s config.ServiceConfig) {
			defer wg.Done()
			health := h.CheckService(ctx, n, s)

			mu.Lock()
			services[n] = health
			mu.Unlock()

			if health.Status != "healthy" {
				logger.Logger.Warn().
					Str("service", n).
					Str("status", health.Status).
					Msg("Service health check degraded")
			}
		}(name, svc)
	}
	wg.Wait()

	return GatewayHealth{
		Gateway:  "api-gateway",
		Status:   overallStatus(services),
		Services: services,
		Uptime:   time.Since(h.startTime),
	}
}

func overallStatus(services map[string]ServiceHealth) string {
	healthyCount := 0
	for _, svc := range services {
		if svc.Status == "healthy" || svc.Status == "degraded" {
			healthyCount++
		}
	}
	if healthyCount == len(services) {
		return "healthy"
	}
	if healthyCount > 0 {
		return "degraded"
	}
	return "unhealthy"
}

// QuickCheck reports the gateway's own liveness without probing backends.
func (h *HealthChecker) QuickCheck() map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"gateway":   "api-gateway",
		"uptime":    time.Since(h.startTime).Seconds(),
		"timestamp": time.Now(),
	}
}
