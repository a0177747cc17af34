// Package sale defines the ledger's core record types and the storage
// contract for them. A Sale is immutable once created: the store assigns its
// identity and timestamp, and the only mutation it ever sees afterwards is
// deletion.
package sale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a single recorded transaction: one or more line items and the
// total derived from them at creation time.
type Sale struct {
	ID int64

	// CustomerID is nil for walk-in sales.
	CustomerID *int64

	// Items hold the line items in insertion order. Never empty.
	Items []Item

	// Total equals the sum of Quantity × UnitPrice over Items, computed
	// with decimal arithmetic when the sale was created.
	Total decimal.Decimal

	CreatedAt time.Time
}

// Item is one (product, quantity) line belonging to exactly one sale.
// UnitPrice is the catalog price captured when the sale was created.
type Item struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns Quantity × UnitPrice.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Draft is a fully validated, fully priced sale awaiting identity
// assignment. The ledger service builds drafts; only stores consume them.
type Draft struct {
	CustomerID *int64
	Items      []Item
	Total      decimal.Decimal
}

// Store is the authoritative collection of sales.
//
// Implementations must serialize writes: Create assigns a fresh id (monotonic,
// never reused even after deletion) and a server-side UTC timestamp, and the
// new sale becomes visible atomically. List and Get read a consistent
// snapshot; List returns sales ordered by id ascending. Create and Delete run
// to a terminal outcome once started, regardless of ctx cancellation.
type Store interface {
	Create(ctx context.Context, draft Draft) (*Sale, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Sale, error)
	List(ctx context.Context) ([]Sale, error)
}
