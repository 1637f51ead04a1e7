package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidLedgerType(t *testing.T) {
	assert.True(t, ValidLedgerType(LedgerTypeAdd))
	assert.True(t, ValidLedgerType(LedgerTypeRemove))
	assert.True(t, ValidLedgerType(LedgerTypeAdjustment))
	assert.False(t, ValidLedgerType("transfer"))
	assert.False(t, ValidLedgerType(""))
}

func TestLedgerEntry_Consistent(t *testing.T) {
	tests := []struct {
		name     string
		entry    LedgerEntry
		expected bool
	}{
		{"add", LedgerEntry{Type: LedgerTypeAdd, Quantity: 5, PreviousStock: 2, NewStock: 7}, true},
		{"remove", LedgerEntry{Type: LedgerTypeRemove, Quantity: 3, PreviousStock: 10, NewStock: 7}, true},
		{"adjustment", LedgerEntry{Type: LedgerTypeAdjustment, Quantity: 4, PreviousStock: 4, NewStock: 0}, true},
		{"add off by one", LedgerEntry{Type: LedgerTypeAdd, Quantity: 5, PreviousStock: 2, NewStock: 8}, false},
		{"remove wrong direction", LedgerEntry{Type: LedgerTypeRemove, Quantity: 3, PreviousStock: 7, NewStock: 10}, false},
		{"unknown type", LedgerEntry{Type: "transfer", Quantity: 1, PreviousStock: 1, NewStock: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.Consistent())
		})
	}
}

func TestApplied_LowStock(t *testing.T) {
	tests := []struct {
		name      string
		newStock  int
		threshold int
		expected  bool
	}{
		{"above threshold", 10, 5, false},
		{"at threshold", 5, 5, true},
		{"below threshold", 2, 5, true},
		{"zero", 0, 5, true},
		{"zero threshold falls back to default", 5, 0, true},
		{"zero threshold above default", 6, 0, false},
		{"custom threshold", 8, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Applied{NewStock: tt.newStock, LowStockThreshold: tt.threshold}
			assert.Equal(t, tt.expected, a.LowStock())
		})
	}
}
