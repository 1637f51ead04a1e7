package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tair/commerce-core/pkg/logger"
)

// CircuitState represents the state of a circuit breaker
type CircuitState string

const (
	StateClosed   CircuitState = "closed"
	StateOpen     CircuitState = "open"
	StateHalfOpen CircuitState = "half-open"
)

// breakerPolicy tunes a breaker per backend service.
type breakerPolicy struct {
	maxFailures int
	timeout     time.Duration
}

// An order status change can hold stock while it runs, so the order
// service fails fast and callers get an immediate retryable error. The
// inventory service is read-heavy and tolerates more before opening.
var breakerPolicies = map[string]breakerPolicy{
	"orders":    {maxFailures: 3, timeout: 15 * time.Second},
	"inventory": {maxFailures: 5, timeout: 30 * time.Second},
}

var defaultPolicy = breakerPolicy{maxFailures: 5, timeout: 30 * time.Second}

// CircuitBreaker tracks consecutive backend failures for one service.
type CircuitBreaker struct {
	name            string
	policy          breakerPolicy
	state           CircuitState
	failures        int
	successCount    int
	lastStateChange time.Time
	mu              sync.RWMutex
}

func NewCircuitBreaker(name string, policy breakerPolicy) *CircuitBreaker {
	return &CircuitBreaker{
		name:            name,
		policy:          policy,
		state:           StateClosed,
		lastStateChange: time.Now(),
	}
}

// Call executes fn with circuit breaker protection.
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == StateOpen && time.Since(cb.lastStateChange) > cb.policy.timeout {
		cb.state = StateHalfOpen
		cb.successCount = 0
		logger.Logger.Info().
			Str("circuit", cb.name).
			Msg("Circuit breaker transitioning to half-open")
	}
	currentState := cb.state
	cb.mu.Unlock()

	if currentState == StateOpen {
		return fmt.Errorf("circuit breaker is open for %s", cb.name)
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
	return err
}

func (cb *CircuitBreaker) onFailure() {
	cb.failures++

	if cb.state == StateHalfOpen {
		// any failure in half-open reopens
		cb.state = StateOpen
		cb.lastStateChange = time.Now()
		logger.Logger.Warn().
			Str("circuit", cb.name).
			Msg("Circuit breaker reopened after half-open failure")
	} else if cb.failures >= cb.policy.maxFailures {
		cb.state = StateOpen
		cb.lastStateChange = time.Now()
		logger.Logger.Error().
			Str("circuit", cb.name).
			Int("failures", cb.failures).
			Int("threshold", cb.policy.maxFailures).
			Msg("Circuit breaker opened")
	}
}

func (cb *CircuitBreaker) onSuccess() {
	if cb.state == StateHalfOpen {
		cb.successCount++
		if cb.successCount >= 3 {
			cb.state = StateClosed
			cb.failures = 0
			cb.successCount = 0
			cb.lastStateChange = time.Now()
			logger.Logger.Info().
				Str("circuit", cb.name).
				Msg("Circuit breaker closed after successful recovery")
		}
	} else if cb.state == StateClosed {
		cb.failures = 0
	}
}

// GetState returns the current state
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// CircuitBreakerManager holds one breaker per backend service.
type CircuitBreakerManager struct {
	breakers map[string]*CircuitBreaker
	mu       sync.RWMutex
}

func NewCircuitBreakerManager() *CircuitBreakerManager {
	return &CircuitBreakerManager{breakers: make(map[string]*CircuitBreaker)}
}

// GetOrCreate returns the breaker for a service, creating it with the
// service's policy on first use.
func (m *CircuitBreakerManager) GetOrCreate(serviceName string) *CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cb, exists := m.breakers[serviceName]; exists {
		return cb
	}

	policy, ok := breakerPolicies[serviceName]
	if !ok {
		policy = defaultPolicy
	}
	cb := NewCircuitBreaker(serviceName, policy)
	m.breakers[serviceName] = cb

	logger.Logger.Info().
		Str("service", serviceName).
		Int("max_failures", policy.maxFailures).
		Dur("timeout", policy.timeout).
		Msg("Circuit breaker created")

	return cb
}

// CircuitBreakerMiddleware blocks requests to a backend whose breaker is
// open and records backend 5xx responses as failures.
func CircuitBreakerMiddleware(manager *CircuitBreakerManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		serviceName, _ := ClassifyPath(c.Path())
		if serviceName == "" {
			return c.Next()
		}

		cb := manager.GetOrCreate(serviceName)

		if cb.GetState() == StateOpen {
			logger.Logger.Warn().
				Str("service", serviceName).
				Str("path", c.Path()).
				Msg("Circuit breaker is open - request blocked")

			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success":     false,
				"error":       "Service temporarily unavailable",
				"service":     serviceName,
				"retry_after": int(cb.policy.timeout.Seconds()),
			})
		}

		var responseErr error
		err := cb.Call(func() error {
			responseErr = c.Next()
			if c.Response().StatusCode() >= 500 {
				return fmt.Errorf("downstream service error: %d", c.Response().StatusCode())
			}
			return nil
		})

		if err != nil && responseErr == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}

		return responseErr
	}
}
