package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/xenking/sales-ledger/internal/domain/customer"
	"github.com/xenking/sales-ledger/internal/domain/product"
)

var (
	_ product.Catalog   = (*Catalog)(nil)
	_ customer.Registry = (*Registry)(nil)
)

// Catalog is an in-memory product.Catalog keyed by id, so per-item resolution
// during pricing and reporting is O(1) instead of a linear scan.
type Catalog struct {
	mu       sync.RWMutex
	products map[int64]product.Product
}

// NewCatalog returns a Catalog seeded with the given products.
func NewCatalog(products ...product.Product) *Catalog {
	byID := make(map[int64]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Catalog{products: byID}
}

// SetPrice updates a product's price. Present so tests and dev setups can
// exercise the current-price reporting semantics.
func (c *Catalog) SetPrice(id int64, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.products[id]; ok {
		p.Price = price
		c.products[id] = p
	}
}

// List returns all products ordered by id.
func (c *Catalog) List(_ context.Context) ([]product.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]product.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByID resolves one product, or product.ErrNotFound.
func (c *Catalog) GetByID(_ context.Context, id int64) (*product.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

// GetByIDs returns the products that exist among ids.
func (c *Catalog) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Registry is an in-memory customer.Registry keyed by id.
type Registry struct {
	mu        sync.RWMutex
	customers map[int64]customer.Customer
}

// NewRegistry returns a Registry seeded with the given customers.
func NewRegistry(customers ...customer.Customer) *Registry {
	byID := make(map[int64]customer.Customer, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
	}
	return &Registry{customers: byID}
}

// List returns all customers ordered by id.
func (r *Registry) List(_ context.Context) ([]customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]customer.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByID resolves one customer, or customer.ErrNotFound.
func (r *Registry) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return &c, nil
}

// GetByIDs returns the customers that exist among ids.
func (r *Registry) GetByIDs(_ context.Context, ids []int64) ([]customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]customer.Customer, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.customers[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
