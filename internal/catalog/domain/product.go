package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// StockStatus classifies a stock level at read time. It is derived from the
// numeric count and threshold and never persisted.
type StockStatus string

const (
	StockStatusOut StockStatus = "out_of_stock"
	StockStatusLow StockStatus = "low_stock"
	StockStatusIn  StockStatus = "in_stock"
)

// DefaultLowStockThreshold applies when a product or variant does not carry
// its own threshold.
const DefaultLowStockThreshold = 5

// Product represents the product entity. TotalStock is the aggregate stock
// projection: for products with variants it always equals the sum of the
// variant stock quantities; for variant-less products it is authoritative.
type Product struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Name              string         `json:"name" gorm:"not null"`
	Description       string         `json:"description"`
	Category          string         `json:"category"`
	SKU               string         `json:"sku" gorm:"uniqueIndex"`
	Price             float64        `json:"price" gorm:"not null"`
	CostPrice         float64        `json:"cost_price"`
	TotalStock        int            `json:"total_stock" gorm:"not null;default:0"`
	SoldCount         int            `json:"sold_count" gorm:"not null;default:0"`
	LowStockThreshold int            `json:"low_stock_threshold" gorm:"not null;default:5"`
	IsActive          bool           `json:"is_active" gorm:"default:true"`
	Variants          []Variant      `json:"variants,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// HasVariants reports whether the product is variant-managed. Requires
// Variants to be preloaded.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// StockStatus derives the stock classification for the aggregate count
func (p *Product) StockStatus() StockStatus {
	return ClassifyStock(p.TotalStock, p.LowStockThreshold)
}

// Variant represents a purchasable SKU of a product with its own stock,
// cost and price.
type Variant struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	ProductID         uint           `json:"product_id" gorm:"not null;index"`
	SKU               string         `json:"sku" gorm:"uniqueIndex;not null"`
	Name              string         `json:"name"`
	StockQuantity     int            `json:"stock_quantity" gorm:"not null;default:0"`
	CostPrice         float64        `json:"cost_price"`
	CurrentPrice      float64        `json:"current_price"`
	LowStockThreshold int            `json:"low_stock_threshold" gorm:"not null;default:5"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Variant) TableName() string {
	return "variants"
}

// StockStatus derives the stock classification for this variant
func (v *Variant) StockStatus() StockStatus {
	return ClassifyStock(v.StockQuantity, v.LowStockThreshold)
}

// ClassifyStock maps a stock count to its status. A zero or negative
// threshold falls back to the default.
func ClassifyStock(quantity, threshold int) StockStatus {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	switch {
	case quantity <= 0:
		return StockStatusOut
	case quantity <= threshold:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// ProductRepository defines the contract for product data access.
// Update and UpdateVariant write scalar columns only; stock columns are
// owned by the stock mutator and are never written through this interface.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uint) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindVariant(ctx context.Context, productID uint, sku string) (*Variant, error)
	FindAll(ctx context.Context, limit, offset int) ([]Product, int64, error)
	FindByCategory(ctx context.Context, category string, limit, offset int) ([]Product, int64, error)
	Update(ctx context.Context, product *Product) error
	UpdateVariant(ctx context.Context, variant *Variant) error
	Count(ctx context.Context) (int64, error)
	IncrementSoldCount(ctx context.Context, productID uint, quantity int) error
}
