package domain

import (
	"context"
	"time"
)

// Purchase is one restock batch with per-line unit cost. Created once per
// stock-in event; never mutated afterwards.
type Purchase struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Number        string         `json:"number" gorm:"uniqueIndex;not null;size:20"`
	Supplier      string         `json:"supplier,omitempty" gorm:"size:200"`
	Actor         string         `json:"actor" gorm:"size:100"`
	Notes         string         `json:"notes,omitempty" gorm:"size:500"`
	TotalQuantity int            `json:"total_quantity" gorm:"not null"`
	TotalCost     float64        `json:"total_cost" gorm:"not null"`
	Lines         []PurchaseLine `json:"lines" gorm:"foreignKey:PurchaseID"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TableName specifies the table name
func (Purchase) TableName() string {
	return "purchases"
}

// PurchaseLine is one product or variant restocked within a purchase
type PurchaseLine struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	PurchaseID    uint    `json:"purchase_id" gorm:"not null;index"`
	ProductID     uint    `json:"product_id" gorm:"not null;index"`
	VariantSKU    string  `json:"variant_sku,omitempty" gorm:"size:100"`
	Quantity      int     `json:"quantity" gorm:"not null"`
	UnitCost      float64 `json:"unit_cost" gorm:"not null"`
	PreviousStock int     `json:"previous_stock" gorm:"not null"`
	NewStock      int     `json:"new_stock" gorm:"not null"`
	LineTotal     float64 `json:"line_total" gorm:"not null"`
}

// TableName specifies the table name
func (PurchaseLine) TableName() string {
	return "purchase_lines"
}

// PurchaseRepository defines the contract for purchase data access
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *Purchase) error
	FindByID(ctx context.Context, id uint) (*Purchase, error)
	FindAll(ctx context.Context, limit, offset int) ([]Purchase, error)
}
