package proxy

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/commerce-core/api-gateway/config"
	"github.com/tair/commerce-core/api-gateway/loadbalancer"
	"github.com/tair/commerce-core/pkg/logger"
)

// ReverseProxy forwards gateway requests to the inventory and order
// services, balancing over the configured instances.
type ReverseProxy struct {
	config        *config.GatewayConfig
	client        *http.Client
	loadBalancers map[string]*loadbalancer.RoundRobin
}

// NewReverseProxy creates a new reverse proxy
func NewReverseProxy(cfg *config.GatewayConfig) *ReverseProxy {
	loadBalancers := make(map[string]*loadbalancer.RoundRobin)
	for name, svc := range cfg.Services {
		loadBalancers[name] = loadbalancer.NewRoundRobin(svc.Instances)
	}

	return &ReverseProxy{
		config:        cfg,
		loadBalancers: loadBalancers,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ProxyRequest forwards the request to the named service. Reads retry on
// the next instance when one is unreachable; mutating requests are sent
// exactly once, since a stock mutation or order transition must not be
// replayed by the gateway.
func (p *ReverseProxy) ProxyRequest(c *fiber.Ctx, serviceName string) error {
	lb, ok := p.loadBalancers[serviceName]
	if !ok {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Unknown service '%s'", serviceName),
		})
	}

	attempts := 1
	if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
		attempts = len(lb.Servers())
		if attempts < 1 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		serverURL := lb.Next()
		if serverURL == "" {
			break
		}

		resp, err := p.forward(c, serverURL)
		if err != nil {
			lastErr = err
			logger.Logger.Warn().
				Err(err).
				Str("service", serviceName).
				Str("instance", serverURL).
				Int("attempt", attempt+1).
				Msg("Backend instance unreachable")
			continue
		}
		return p.respond(c, resp)
	}

	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"success": false,
		"error":   "Failed to reach backend service",
		"service": serviceName,
		"details": errString(lastErr),
	})
}

func (p *ReverseProxy) forward(c *fiber.Ctx, serverURL string) (*http.Response, error) {
	targetURL := serverURL + string(c.Request().URI().Path())
	if query := string(c.Request().URI().QueryString()); query != "" {
		targetURL += "?" + query
	}

	req, err := http.NewRequestWithContext(c.UserContext(), c.Method(), targetURL, bytes.NewReader(c.Body()))
	if err != nil {
		return nil, err
	}
	p.copyHeaders(c, req)

	return p.client.Do(req)
}

func (p *ReverseProxy) respond(c *fiber.Ctx, resp *http.Response) error {
	defer resp.Body.Close()

	for key, values := range resp.Header {
		if strings.ToLower(key) == "content-length" {
			continue
		}
		for _, value := range values {
			c.Set(key, value)
		}
	}
	c.Status(resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to read backend response",
		})
	}
	return c.Send(body)
}

// copyHeaders relays the request headers, including the identity headers
// set by the auth middleware and the injected trace context.
func (p *ReverseProxy) copyHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		if strings.ToLower(string(key)) == "host" {
			return
		}
		req.Header.Set(string(key), string(value))
	})

	req.Header.Set("X-Forwarded-For", c.IP())
	req.Header.Set("X-Forwarded-Proto", c.Protocol())
	req.Header.Set("X-Forwarded-Host", c.Hostname())
}

func errString(err error) string {
	if err == nil {
		return "no instances available"
	}
	return err.Error()
}
