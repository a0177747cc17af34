package ledger

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/sales-ledger/internal/domain/customer"
	"github.com/xenking/sales-ledger/internal/domain/sale"
	"github.com/xenking/sales-ledger/internal/memstore"
)

// fixtureStore is a read-only sale.Store over a fixed slice, so tests control
// ids and timestamps directly.
type fixtureStore struct {
	sales []sale.Sale
}

func (f *fixtureStore) Create(context.Context, sale.Draft) (*sale.Sale, error) {
	panic("fixtureStore is read-only")
}

func (f *fixtureStore) Delete(_ context.Context, id int64) error {
	for i, s := range f.sales {
		if s.ID == id {
			f.sales = append(f.sales[:i], f.sales[i+1:]...)
			return nil
		}
	}
	return sale.ErrNotFound
}

func (f *fixtureStore) Get(_ context.Context, id int64) (*sale.Sale, error) {
	for _, s := range f.sales {
		if s.ID == id {
			out := s
			return &out, nil
		}
	}
	return nil, sale.ErrNotFound
}

func (f *fixtureStore) List(context.Context) ([]sale.Sale, error) {
	out := make([]sale.Sale, len(f.sales))
	copy(out, f.sales)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}

func fixtureSale(id int64, customerID *int64, at time.Time, items ...sale.Item) sale.Sale {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return sale.Sale{ID: id, CustomerID: customerID, Items: items, Total: total, CreatedAt: at}
}

func item(productID int64, qty int, unitPrice string) sale.Item {
	return sale.Item{ProductID: productID, Quantity: qty, UnitPrice: price(unitPrice)}
}

func fixtureService(t *testing.T, sales ...sale.Sale) *Service {
	t.Helper()
	store := &fixtureStore{sales: sales}
	catalog := memstore.NewCatalog(testProducts()...)
	registry := memstore.NewRegistry(
		customer.Customer{ID: 1, Name: "Acme Retail Ltd"},
		customer.Customer{ID: 2, Name: "Joana Ribeiro"},
	)
	return NewService(store, catalog, registry, nil)
}

func TestQuery_ZeroCriteriaReturnsAll(t *testing.T) {
	svc := fixtureService(t,
		fixtureSale(1, nil, ts(t, "2026-03-01T10:00:00Z"), item(1, 1, "0.10")),
		fixtureSale(2, ptrInt64(1), ts(t, "2026-03-02T10:00:00Z"), item(2, 1, "19.99")),
	)

	sales, err := svc.Query(context.Background(), sale.FilterCriteria{})
	require.NoError(t, err)
	assert.Len(t, sales, 2)
}

func TestQuery_InclusiveDateRange(t *testing.T) {
	start := ts(t, "2026-03-02T00:00:00Z")
	end := ts(t, "2026-03-03T00:00:00Z")
	svc := fixtureService(t,
		fixtureSale(1, nil, start.Add(-time.Second), item(1, 1, "0.10")),
		fixtureSale(2, nil, start, item(1, 1, "0.10")),
		fixtureSale(3, nil, start.Add(12*time.Hour), item(1, 1, "0.10")),
		fixtureSale(4, nil, end, item(1, 1, "0.10")),
		fixtureSale(5, nil, end.Add(time.Second), item(1, 1, "0.10")),
	)

	sales, err := svc.Query(context.Background(), sale.FilterCriteria{Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, sales, 3)
	assert.Equal(t, int64(2), sales[0].ID)
	assert.Equal(t, int64(3), sales[1].ID)
	assert.Equal(t, int64(4), sales[2].ID)
}

func TestQuery_CustomerFilterExcludesWalkIns(t *testing.T) {
	at := ts(t, "2026-03-01T10:00:00Z")
	svc := fixtureService(t,
		fixtureSale(1, ptrInt64(1), at, item(1, 1, "0.10")),
		fixtureSale(2, nil, at, item(1, 1, "0.10")),
		fixtureSale(3, ptrInt64(2), at, item(1, 1, "0.10")),
	)

	sales, err := svc.Query(context.Background(), sale.FilterCriteria{CustomerID: ptrInt64(1)})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, int64(1), sales[0].ID)
}

func TestQuery_ProductFilter(t *testing.T) {
	at := ts(t, "2026-03-01T10:00:00Z")
	svc := fixtureService(t,
		fixtureSale(1, nil, at, item(1, 1, "0.10"), item(2, 1, "19.99")),
		fixtureSale(2, nil, at, item(2, 2, "19.99")),
		fixtureSale(3, nil, at, item(3, 1, "5.00")),
	)

	sales, err := svc.Query(context.Background(), sale.FilterCriteria{ProductID: ptrInt64(2)})
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, int64(1), sales[0].ID)
	assert.Equal(t, int64(2), sales[1].ID)
}

func TestQuery_CombinedPredicates(t *testing.T) {
	svc := fixtureService(t,
		fixtureSale(1, ptrInt64(1), ts(t, "2026-03-01T10:00:00Z"), item(1, 1, "0.10")),
		fixtureSale(2, ptrInt64(1), ts(t, "2026-03-05T10:00:00Z"), item(2, 1, "19.99")),
		fixtureSale(3, ptrInt64(2), ts(t, "2026-03-05T11:00:00Z"), item(2, 1, "19.99")),
		fixtureSale(4, ptrInt64(1), ts(t, "2026-03-09T10:00:00Z"), item(2, 1, "19.99")),
	)

	start := ts(t, "2026-03-04T00:00:00Z")
	end := ts(t, "2026-03-06T00:00:00Z")
	sales, err := svc.Query(context.Background(), sale.FilterCriteria{
		Start:      &start,
		End:        &end,
		CustomerID: ptrInt64(1),
		ProductID:  ptrInt64(2),
	})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, int64(2), sales[0].ID)
}

func TestQuery_NoMatchesReturnsEmpty(t *testing.T) {
	svc := fixtureService(t,
		fixtureSale(1, nil, ts(t, "2026-03-01T10:00:00Z"), item(1, 1, "0.10")),
	)

	sales, err := svc.Query(context.Background(), sale.FilterCriteria{CustomerID: ptrInt64(99)})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestQuery_Cancelled(t *testing.T) {
	svc := fixtureService(t,
		fixtureSale(1, nil, ts(t, "2026-03-01T10:00:00Z"), item(1, 1, "0.10")),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Query(ctx, sale.FilterCriteria{CustomerID: ptrInt64(1)})
	assert.ErrorIs(t, err, context.Canceled)
}
