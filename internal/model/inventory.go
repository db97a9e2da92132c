package model

import "time"

type TransactionType string

const (
	TransactionIn         TransactionType = "in"
	TransactionOut        TransactionType = "out"
	TransactionAdjustment TransactionType = "adjustment"
)

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Item carries a running current_stock that only moves through recorded
// transactions; the client renders it and never recomputes it.
type Item struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	CategoryID   int64     `json:"category_id"`
	Category     *Category `json:"category,omitempty"`
	Unit         string    `json:"unit"`
	UnitPrice    float64   `json:"unit_price"`
	CurrentStock int       `json:"current_stock"`
	MinStock     int       `json:"min_stock"`
	Manufacturer string    `json:"manufacturer"`
	Supplier     string    `json:"supplier"`
	Location     string    `json:"location"`
	IsActive     bool      `json:"is_active"`
	Description  string    `json:"description"`
}

// LowStock reports whether the item is at or below its minimum stock level.
func (i *Item) LowStock() bool {
	return i.CurrentStock <= i.MinStock
}

// TotalValue is the stock valuation of the item at its unit price.
func (i *Item) TotalValue() float64 {
	return float64(i.CurrentStock) * i.UnitPrice
}

// StockTransaction is one ledger entry with before/after stock snapshots.
type StockTransaction struct {
	ID              int64           `json:"id"`
	ItemID          int64           `json:"item_id"`
	Item            *Item           `json:"item,omitempty"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        int             `json:"quantity"`
	PreviousStock   int             `json:"previous_stock"`
	NewStock        int             `json:"new_stock"`
	StaffID         int64           `json:"staff_id"`
	Notes           string          `json:"notes"`
	TransactionDate time.Time       `json:"transaction_date"`
}

type InventoryStats struct {
	TotalItems      int     `json:"total_items"`
	LowStockCount   int     `json:"low_stock_count"`
	TotalValue      float64 `json:"total_value"`
	CategoriesCount int     `json:"categories_count"`
}

type ItemFilters struct {
	Search     string
	CategoryID int64
	LowStock   bool
	Skip       int
	Limit      int
}

type TransactionFilters struct {
	ItemID int64
	Type   TransactionType
	Skip   int
	Limit  int
}

type UpsertCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

type UpsertItemRequest struct {
	Code         string  `json:"code" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	CategoryID   int64   `json:"category_id" validate:"required"`
	Unit         string  `json:"unit" validate:"required"`
	UnitPrice    float64 `json:"unit_price" validate:"gte=0"`
	CurrentStock int     `json:"current_stock" validate:"gte=0"`
	MinStock     int     `json:"min_stock" validate:"gte=0"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	Supplier     string  `json:"supplier,omitempty"`
	Location     string  `json:"location,omitempty"`
	IsActive     bool    `json:"is_active"`
	Description  string  `json:"description,omitempty"`
}

type CreateTransactionRequest struct {
	ItemID          int64           `json:"item_id" validate:"required"`
	TransactionType TransactionType `json:"transaction_type" validate:"required,oneof=in out adjustment"`
	Quantity        int             `json:"quantity" validate:"required,gt=0"`
	Notes           string          `json:"notes,omitempty"`
}
