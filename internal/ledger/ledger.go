// Package ledger implements the branch-local authoritative stock ledger.
//
// The ledger is the branch's own truth: it accepts or rejects a sale
// instantly without consulting the central service, and it is reconciled
// with the center only through the asynchronous sale event stream.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/ecomarket-sync/internal/model"
)

var (
	// ErrUnknownProduct is returned for product ids not present in the ledger.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrInsufficientStock is returned when a sale asks for more units than remain.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned for non-positive sale quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Ledger holds a branch's products and sales history behind one mutex, so
// check-then-decrement is atomic with respect to concurrent sales.
type Ledger struct {
	mu       sync.Mutex
	branchID string
	products map[int64]model.Product
	sales    []model.SaleRecord
}

// New builds a ledger seeded with the given products.
func New(branchID string, seed []model.Product) *Ledger {
	products := make(map[int64]model.Product, len(seed))
	for _, p := range seed {
		products[p.ID] = p
	}
	return &Ledger{branchID: branchID, products: products}
}

// BranchID returns the owning branch's identifier.
func (l *Ledger) BranchID() string { return l.branchID }

// ReserveAndCommit checks stock and decrements it in one step, appends the
// sale to the branch history, and returns the committed record. The commit
// is visible to subsequent reads before this returns.
func (l *Ledger) ReserveAndCommit(productID, quantity int64) (model.SaleRecord, error) {
	if quantity <= 0 {
		return model.SaleRecord{}, ErrInvalidQuantity
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.products[productID]
	if !ok {
		return model.SaleRecord{}, ErrUnknownProduct
	}
	if p.Stock < quantity {
		return model.SaleRecord{}, fmt.Errorf("%w: %d available", ErrInsufficientStock, p.Stock)
	}
	p.Stock -= quantity
	l.products[productID] = p
	rec := model.SaleRecord{
		SaleID:       l.branchID + "_" + uuid.NewString(),
		ProductID:    productID,
		ProductName:  p.Name,
		QuantitySold: quantity,
		TotalAmount:  p.UnitPrice * float64(quantity),
		Timestamp:    time.Now().UTC(),
		Status:       "completed",
	}
	l.sales = append(l.sales, rec)
	return rec, nil
}

// Get returns a product by id.
func (l *Ledger) Get(productID int64) (model.Product, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.products[productID]
	return p, ok
}

// SetStock overrides a product's stock, e.g. after a restock or a central
// correction. Negative values are rejected.
func (l *Ledger) SetStock(productID, stock int64) error {
	if stock < 0 {
		return ErrInvalidQuantity
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.products[productID]
	if !ok {
		return ErrUnknownProduct
	}
	p.Stock = stock
	l.products[productID] = p
	return nil
}

// Snapshot returns the current products ordered by id.
func (l *Ledger) Snapshot() []model.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Product, 0, len(l.products))
	for _, p := range l.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Sales returns a copy of the branch sales history, oldest first.
func (l *Ledger) Sales() []model.SaleRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.SaleRecord, len(l.sales))
	copy(out, l.sales)
	return out
}

// Stats summarizes the sales history.
func (l *Ledger) Stats() model.SaleStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := model.SaleStats{TotalSales: len(l.sales)}
	if st.TotalSales == 0 {
		return st
	}
	for _, s := range l.sales {
		st.TotalRevenue += s.TotalAmount
	}
	st.AverageSale = st.TotalRevenue / float64(st.TotalSales)
	return st
}
