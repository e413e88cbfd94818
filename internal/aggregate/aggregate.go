// Package aggregate holds the central, chain-wide view of stock.
//
// The aggregate has a single writer: the central sale consumer. Reads may
// happen concurrently with writes; a mutation is atomic per product.
package aggregate

import (
	"errors"
	"sort"
	"sync"

	"github.com/fairyhunter13/ecomarket-sync/internal/model"
)

// ErrUnknownProduct is returned when a sale event references a product the
// center has never heard of. Retrying cannot change the outcome.
var ErrUnknownProduct = errors.New("unknown product")

// Aggregate is the central stock view mutated by consumed sale events.
type Aggregate struct {
	mu       sync.RWMutex
	products map[int64]model.Product
}

// New builds an aggregate seeded with the given products.
func New(seed []model.Product) *Aggregate {
	products := make(map[int64]model.Product, len(seed))
	for _, p := range seed {
		products[p.ID] = p
	}
	return &Aggregate{products: products}
}

// Apply decrements a product's stock by quantity, clamped at zero, and
// returns the new stock.
func (a *Aggregate) Apply(productID, quantity int64) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.products[productID]
	if !ok {
		return 0, ErrUnknownProduct
	}
	p.Stock -= quantity
	if p.Stock < 0 {
		p.Stock = 0
	}
	a.products[productID] = p
	return p.Stock, nil
}

// Stock returns the current stock for a product.
func (a *Aggregate) Stock(productID int64) (int64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.products[productID]
	return p.Stock, ok
}

// Snapshot returns the current products ordered by id.
func (a *Aggregate) Snapshot() []model.Product {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]model.Product, 0, len(a.products))
	for _, p := range a.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
