package domain

import (
	"context"
	"time"
)

// Reason is the fixed loss taxonomy for stock adjustments
type Reason string

const (
	ReasonDamaged   Reason = "damaged"
	ReasonExpired   Reason = "expired"
	ReasonLost      Reason = "lost"
	ReasonTheft     Reason = "theft"
	ReasonReturned  Reason = "returned"
	ReasonDefective Reason = "defective"
	ReasonWaste     Reason = "waste"
	ReasonOther     Reason = "other"
)

// ValidReason reports whether r is a known adjustment reason
func ValidReason(r Reason) bool {
	switch r {
	case ReasonDamaged, ReasonExpired, ReasonLost, ReasonTheft,
		ReasonReturned, ReasonDefective, ReasonWaste, ReasonOther:
		return true
	}
	return false
}

// Adjustment is one stock-out batch explained by the loss taxonomy,
// distinct from sales. Created once per loss event; never mutated.
type Adjustment struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	Number        string           `json:"number" gorm:"uniqueIndex;not null;size:20"`
	Actor         string           `json:"actor" gorm:"size:100"`
	Notes         string           `json:"notes,omitempty" gorm:"size:500"`
	TotalQuantity int              `json:"total_quantity" gorm:"not null"`
	Lines         []AdjustmentLine `json:"lines" gorm:"foreignKey:AdjustmentID"`
	CreatedAt     time.Time        `json:"created_at"`
}

// TableName specifies the table name
func (Adjustment) TableName() string {
	return "adjustments"
}

// AdjustmentLine is one product or variant written off within an adjustment
type AdjustmentLine struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	AdjustmentID  uint   `json:"adjustment_id" gorm:"not null;index"`
	ProductID     uint   `json:"product_id" gorm:"not null;index"`
	VariantSKU    string `json:"variant_sku,omitempty" gorm:"size:100"`
	Quantity      int    `json:"quantity" gorm:"not null"`
	Reason        Reason `json:"reason" gorm:"size:20;not null"`
	PreviousStock int    `json:"previous_stock" gorm:"not null"`
	NewStock      int    `json:"new_stock" gorm:"not null"`
}

// TableName specifies the table name
func (AdjustmentLine) TableName() string {
	return "adjustment_lines"
}

// AdjustmentRepository defines the contract for adjustment data access
type AdjustmentRepository interface {
	Create(ctx context.Context, adjustment *Adjustment) error
	FindByID(ctx context.Context, id uint) (*Adjustment, error)
	FindAll(ctx context.Context, limit, offset int) ([]Adjustment, error)
}
