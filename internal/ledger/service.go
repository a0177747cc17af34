// Package ledger implements the sales ledger and reporting engine: atomic
// sale creation priced against the product catalog, multi-predicate filter
// queries, aggregate reports, best-effort bulk deletes, and CSV export.
package ledger

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/sales-ledger/internal/domain/customer"
	"github.com/xenking/sales-ledger/internal/domain/product"
	"github.com/xenking/sales-ledger/internal/domain/sale"
)

// CreateSaleRequest holds the input for recording a sale.
type CreateSaleRequest struct {
	// CustomerID is nil for walk-in sales.
	CustomerID *int64
	Items      []CreateItem
}

// CreateItem is one requested line: a product reference and a quantity.
type CreateItem struct {
	ProductID int64
	Quantity  int
}

// Service is the single entry point to the ledger. All mutation goes through
// the underlying sale.Store; the catalog and registry are read-only
// collaborators resolved by id.
type Service struct {
	store     sale.Store
	catalog   product.Catalog
	customers customer.Registry
	lg        *zap.Logger
}

// NewService creates a ledger Service.
func NewService(store sale.Store, catalog product.Catalog, customers customer.Registry, lg *zap.Logger) *Service {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{
		store:     store,
		catalog:   catalog,
		customers: customers,
		lg:        lg,
	}
}

// CreateSale validates the request, prices every line against the catalog,
// and commits the sale as one atomic unit. All validation happens before any
// mutation: on failure nothing is ever visible via Get, List, or Query.
//
// Each subtotal uses the catalog price read during this call; the total is
// the exact decimal sum of subtotals. The store assigns the id and the
// creation timestamp.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (*sale.Sale, error) {
	if len(req.Items) == 0 {
		return nil, sale.ErrEmptyItems
	}

	ids := make([]int64, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, &sale.InvalidQuantityError{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		ids[i] = item.ProductID
	}

	if req.CustomerID != nil {
		if _, err := s.customers.GetByID(ctx, *req.CustomerID); err != nil {
			if errors.Is(err, customer.ErrNotFound) {
				return nil, &sale.CustomerNotFoundError{CustomerID: *req.CustomerID}
			}
			return nil, errors.Wrap(err, "resolve customer")
		}
	}

	// One batch catalog read; the prices captured here are the prices the
	// sale is committed with.
	fetched, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "resolve products")
	}
	byID := make(map[int64]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	items := make([]sale.Item, len(req.Items))
	total := decimal.Zero
	for i, item := range req.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, &sale.ProductNotFoundError{ProductID: item.ProductID}
		}
		if p.Stock < item.Quantity {
			return nil, &sale.InsufficientStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: p.Stock,
			}
		}
		items[i] = sale.Item{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
		}
		total = total.Add(items[i].Subtotal())
	}

	created, err := s.store.Create(ctx, sale.Draft{
		CustomerID: req.CustomerID,
		Items:      items,
		Total:      total,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create sale")
	}

	s.lg.Info("sale recorded",
		zap.Int64("sale_id", created.ID),
		zap.Int("items", len(created.Items)),
		zap.String("total", created.Total.StringFixed(2)),
	)
	return created, nil
}

// DeleteSale removes the sale with the given id. It returns sale.ErrNotFound
// when the id is absent. Deletion is unconditional and irreversible.
func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.lg.Info("sale deleted", zap.Int64("sale_id", id))
	return nil
}

// Get returns the sale with the given id, or sale.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*sale.Sale, error) {
	return s.store.Get(ctx, id)
}

// List returns a snapshot of all sales ordered by id ascending.
func (s *Service) List(ctx context.Context) ([]sale.Sale, error) {
	return s.store.List(ctx)
}
