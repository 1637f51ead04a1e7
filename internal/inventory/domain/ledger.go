package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LedgerType is the kind of stock mutation a ledger entry records
type LedgerType string

const (
	LedgerTypeAdd        LedgerType = "add"
	LedgerTypeRemove     LedgerType = "remove"
	LedgerTypeAdjustment LedgerType = "adjustment"
)

// ValidLedgerType reports whether t is a known ledger type
func ValidLedgerType(t LedgerType) bool {
	switch t {
	case LedgerTypeAdd, LedgerTypeRemove, LedgerTypeAdjustment:
		return true
	}
	return false
}

// LedgerEntry is an immutable record of one stock change: its cause, actor
// and the before/after counts. Entries are append-only; nothing updates or
// deletes them. Invariant: NewStock == PreviousStock + Quantity for add,
// PreviousStock - Quantity for remove/adjustment.
type LedgerEntry struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID     uint       `json:"product_id" gorm:"not null;index:idx_ledger_product_created,priority:1"`
	VariantID     *uint      `json:"variant_id,omitempty" gorm:"index"`
	VariantSKU    string     `json:"variant_sku,omitempty" gorm:"index"`
	Type          LedgerType `json:"type" gorm:"size:20;not null;index"`
	Quantity      int        `json:"quantity" gorm:"not null"`
	PreviousStock int        `json:"previous_stock" gorm:"not null"`
	NewStock      int        `json:"new_stock" gorm:"not null"`
	Reason        string     `json:"reason" gorm:"size:100"`
	Reference     string     `json:"reference" gorm:"size:100;index"`
	Actor         string     `json:"actor" gorm:"size:100"`
	UnitCost      *float64   `json:"unit_cost,omitempty"`
	Notes         string     `json:"notes,omitempty" gorm:"size:500"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime;index:idx_ledger_product_created,priority:2"`
}

// TableName specifies the table name
func (LedgerEntry) TableName() string {
	return "stock_ledger"
}

// Consistent checks the before/after arithmetic of the entry
func (e *LedgerEntry) Consistent() bool {
	switch e.Type {
	case LedgerTypeAdd:
		return e.NewStock == e.PreviousStock+e.Quantity
	case LedgerTypeRemove, LedgerTypeAdjustment:
		return e.NewStock == e.PreviousStock-e.Quantity
	}
	return false
}

// TypeSummary aggregates ledger entries of one type over a window. Reporting
// only; never a source of truth for stock counts.
type TypeSummary struct {
	Type          LedgerType `json:"type"`
	Entries       int64      `json:"entries"`
	TotalQuantity int64      `json:"total_quantity"`
}

// LedgerRepository defines the contract for ledger data access. There is no
// update or delete: the ledger is append-only.
type LedgerRepository interface {
	Append(ctx context.Context, entry *LedgerEntry) error
	FindByProduct(ctx context.Context, productID uint, variantSKU string, limit, offset int) ([]LedgerEntry, int64, error)
	SummarizeByType(ctx context.Context, since time.Time) ([]TypeSummary, error)
}

// Delta describes one requested stock mutation together with the ledger
// metadata that explains it. Quantity is signed: positive adds stock,
// negative removes it.
type Delta struct {
	ProductID  uint
	VariantSKU string // empty targets the product-level aggregate
	Quantity   int
	Type       LedgerType
	Reason     string
	Reference  string
	Actor      string
	UnitCost   *float64 // when set, overwrites the stored cost price
	Notes      string
}

// Applied reports the outcome of one applied delta
type Applied struct {
	ProductID         uint
	VariantSKU        string
	PreviousStock     int
	NewStock          int
	LowStockThreshold int
	Entry             *LedgerEntry
}

// LowStock reports whether the resulting level is at or below the threshold
func (a *Applied) LowStock() bool {
	threshold := a.LowStockThreshold
	if threshold <= 0 {
		threshold = 5
	}
	return a.NewStock <= threshold
}

// StockMutator is the single primitive every stock-affecting code path goes
// through. Each delta is applied as one atomic conditional storage operation
// (never a read-then-write pair), the product aggregate is recomputed in the
// same transaction, and a ledger entry is written. ApplyAll applies a batch
// in one transaction: any failing delta rolls back the whole batch.
type StockMutator interface {
	Apply(ctx context.Context, delta Delta) (*Applied, error)
	ApplyAll(ctx context.Context, deltas []Delta) ([]Applied, error)
}
