package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPath(t *testing.T) {
	tests := []struct {
		path    string
		service string
		surface Surface
	}{
		{"/api/products", "inventory", SurfaceCatalog},
		{"/api/products/42", "inventory", SurfaceCatalog},
		{"/api/products/stats", "inventory", SurfaceCatalog},
		{"/api/inventory/summary", "inventory", SurfaceLedger},
		{"/api/inventory/7/history", "inventory", SurfaceLedger},
		{"/api/inventory/stock/bulk", "inventory", SurfaceLedger},
		{"/api/purchases", "inventory", SurfaceDocuments},
		{"/api/adjustments/3", "inventory", SurfaceDocuments},
		{"/api/orders", "orders", SurfaceOrders},
		{"/api/orders/9/status", "orders", SurfaceOrders},
		{"/health", "", Surface("")},
		{"/metrics", "", Surface("")},
		{"/", "", Surface("")},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			service, surface := ClassifyPath(tt.path)
			assert.Equal(t, tt.service, service)
			assert.Equal(t, tt.surface, surface)
		})
	}
}

func TestMutating(t *testing.T) {
	assert.False(t, mutating("GET"))
	assert.False(t, mutating("HEAD"))
	assert.False(t, mutating("OPTIONS"))
	assert.True(t, mutating("POST"))
	assert.True(t, mutating("PUT"))
	assert.True(t, mutating("PATCH"))
	assert.True(t, mutating("DELETE"))
}

func TestCacheRules_OnlyReadSurface(t *testing.T) {
	rule, ok := ruleFor("/api/products")
	require.True(t, ok)
	assert.Equal(t, time.Minute, rule.ttl)

	rule, ok = ruleFor("/api/inventory/summary")
	require.True(t, ok)
	assert.Equal(t, 5*time.Minute, rule.ttl)

	// identity-scoped surfaces never match a cache rule
	for _, path := range []string{
		"/api/orders",
		"/api/orders/4",
		"/api/purchases",
		"/api/adjustments",
		"/api/inventory/7/history",
	} {
		_, ok := ruleFor(path)
		assert.False(t, ok, path)
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker("orders", breakerPolicy{maxFailures: 3, timeout: 50 * time.Millisecond})
	boom := errors.New("backend down")

	for i := 0; i < 3; i++ {
		assert.Equal(t, StateClosed, cb.GetState())
		_ = cb.Call(func() error { return boom })
	}
	assert.Equal(t, StateOpen, cb.GetState())

	// open circuit rejects without invoking the function
	called := false
	err := cb.Call(func() error { called = true; return nil })
	require.Error(t, err)
	assert.False(t, called)
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("inventory", breakerPolicy{maxFailures: 1, timeout: 10 * time.Millisecond})
	_ = cb.Call(func() error { return errors.New("backend down") })
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(20 * time.Millisecond)

	// three successes in half-open close the circuit
	for i := 0; i < 3; i++ {
		require.NoError(t, cb.Call(func() error { return nil }))
	}
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("inventory", breakerPolicy{maxFailures: 1, timeout: 10 * time.Millisecond})
	_ = cb.Call(func() error { return errors.New("backend down") })
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(20 * time.Millisecond)

	_ = cb.Call(func() error { return errors.New("still down") })
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestBreakerPolicies_OrdersFailFaster(t *testing.T) {
	m := NewCircuitBreakerManager()
	orders := m.GetOrCreate("orders")
	inventory := m.GetOrCreate("inventory")

	assert.Less(t, orders.policy.maxFailures, inventory.policy.maxFailures)
	assert.Less(t, orders.policy.timeout, inventory.policy.timeout)

	// same breaker instance on repeat lookups
	assert.Same(t, orders, m.GetOrCreate("orders"))
}
