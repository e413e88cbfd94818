// Package model defines domain types shared by the branch and central services.
package model

import "time"

// Product represents a stocked item. The same shape backs both the
// branch-local ledger and the central aggregate.
type Product struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Stock     int64   `json:"stock"`
}

// SaleEvent is the wire message a branch emits after a local sale commits.
// It is immutable once published; delivery may repeat, so consumers key
// idempotency off MessageID.
type SaleEvent struct {
	MessageID    string  `json:"message_id"`
	BranchID     string  `json:"branch_id"`
	ProductID    int64   `json:"product_id"`
	QuantitySold int64   `json:"quantity_sold"`
	Timestamp    string  `json:"timestamp"`
	SalePrice    float64 `json:"sale_price"`
}

// SaleRecord is a branch-local sales history entry returned to the caller
// at commit time.
type SaleRecord struct {
	SaleID       string    `json:"sale_id"`
	ProductID    int64     `json:"product_id"`
	ProductName  string    `json:"product_name"`
	QuantitySold int64     `json:"quantity_sold"`
	TotalAmount  float64   `json:"total_amount"`
	Timestamp    time.Time `json:"timestamp"`
	Status       string    `json:"status"`
}

// SaleStats summarizes a branch's sales history.
type SaleStats struct {
	TotalSales   int     `json:"total_sales"`
	TotalRevenue float64 `json:"total_revenue"`
	AverageSale  float64 `json:"average_sale"`
}
