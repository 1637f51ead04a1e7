package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		threshold int
		expected  StockStatus
	}{
		{"negative", -1, 5, StockStatusOut},
		{"zero", 0, 5, StockStatusOut},
		{"one below threshold", 4, 5, StockStatusLow},
		{"at threshold", 5, 5, StockStatusLow},
		{"one above threshold", 6, 5, StockStatusIn},
		{"well stocked", 100, 5, StockStatusIn},
		{"zero threshold uses default", 5, 0, StockStatusLow},
		{"negative threshold uses default", 6, -3, StockStatusIn},
		{"custom threshold", 15, 20, StockStatusLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyStock(tt.quantity, tt.threshold))
		})
	}
}

func TestProduct_StockStatus(t *testing.T) {
	p := Product{TotalStock: 3, LowStockThreshold: 5}
	assert.Equal(t, StockStatusLow, p.StockStatus())

	p.TotalStock = 0
	assert.Equal(t, StockStatusOut, p.StockStatus())
}

func TestVariant_StockStatus(t *testing.T) {
	v := Variant{StockQuantity: 25, LowStockThreshold: 5}
	assert.Equal(t, StockStatusIn, v.StockStatus())
}

func TestProduct_HasVariants(t *testing.T) {
	plain := Product{}
	assert.False(t, plain.HasVariants())

	withVariants := Product{Variants: []Variant{{SKU: "A-1"}}}
	assert.True(t, withVariants.HasVariants())
}
