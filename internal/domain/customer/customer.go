// Package customer defines the external customer registry collaborator,
// referenced by the ledger by id only.
package customer

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// Customer is a registry entry as seen by the ledger.
type Customer struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

// Registry defines read operations against the customer registry.
type Registry interface {
	List(ctx context.Context) ([]Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Customer, error)
}
