// Package product defines the external product catalog collaborator. The
// ledger references products by id only and resolves name, price, and stock
// at read or create time; it never owns or mutates catalog state.
package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog entry as seen by the ledger.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Stock int
}

// Catalog defines read operations against the product catalog.
//
// GetByIDs returns the products that exist among ids; callers detect missing
// products by comparing against the request. Lookups are treated as fast and
// synchronous; their latency and retry policy belong to the implementation.
type Catalog interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
}
