// Package inventory holds the product and stock movement shapes exchanged with the backend.
package inventory

import "time"

type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

type Product struct {
	ID        int64   `json:"id,omitempty"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku,omitempty"`
	Category  string  `json:"category,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
	StoreID   int64   `json:"store_id,omitempty"`
	Threshold int64   `json:"low_stock_threshold,omitempty"`
}

// LowStock reports whether the quantity is at or below the product's threshold
func (p Product) LowStock() bool {
	return p.Threshold > 0 && p.Quantity <= p.Threshold
}

// StockMovement is one stock-in or stock-out entry
type StockMovement struct {
	ID          int64        `json:"id,omitempty"`
	ProductID   int64        `json:"product_id"`
	ProductName string       `json:"product_name,omitempty"`
	Category    string       `json:"category,omitempty"`
	StoreID     int64        `json:"store_id,omitempty"`
	StoreName   string       `json:"store_name,omitempty"`
	Type        MovementType `json:"type"`
	Quantity    int64        `json:"quantity"`
	UnitPrice   float64      `json:"unit_price,omitempty"`
	Note        string       `json:"note,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Signed returns the quantity with stock-out entries negative
func (m StockMovement) Signed() int64 {
	if m.Type == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}
