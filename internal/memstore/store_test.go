package memstore

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/sales-ledger/internal/domain/product"
	"github.com/xenking/sales-ledger/internal/domain/sale"
)

func draft(quantity int) sale.Draft {
	unit := decimal.RequireFromString("2.50")
	return sale.Draft{
		Items: []sale.Item{{ProductID: 1, Quantity: quantity, UnitPrice: unit}},
		Total: unit.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

func TestSaleStore_CreateAssignsSequentialIDs(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	first, err := store.Create(ctx, draft(1))
	require.NoError(t, err)
	second, err := store.Create(ctx, draft(1))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, "UTC", first.CreatedAt.Location().String())
}

func TestSaleStore_IDsNeverReused(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	first, err := store.Create(ctx, draft(1))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, first.ID))

	second, err := store.Create(ctx, draft(1))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestSaleStore_ConcurrentCreatesDistinctIDs(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	const n = 100
	var mu sync.Mutex
	ids := make(map[int64]struct{}, n)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			created, err := store.Create(gctx, draft(1))
			if err != nil {
				return err
			}
			mu.Lock()
			ids[created.ID] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, ids, n, "every concurrent create gets its own id")

	sales, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sales, n)
}

func TestSaleStore_DeleteNotFound(t *testing.T) {
	store := NewSaleStore()
	assert.ErrorIs(t, store.Delete(context.Background(), 42), sale.ErrNotFound)
}

func TestSaleStore_GetNotFound(t *testing.T) {
	store := NewSaleStore()
	_, err := store.Get(context.Background(), 42)
	assert.ErrorIs(t, err, sale.ErrNotFound)
}

func TestSaleStore_ListSnapshotIsolation(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	created, err := store.Create(ctx, draft(2))
	require.NoError(t, err)

	snapshot, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)

	// Deleting after the snapshot was taken must not affect it.
	require.NoError(t, store.Delete(ctx, created.ID))
	assert.Len(t, snapshot, 1)
	assert.Equal(t, 2, snapshot[0].Items[0].Quantity)

	// Mutating the snapshot must not leak back into the store.
	_, err = store.Create(ctx, draft(3))
	require.NoError(t, err)
	snapshot2, err := store.List(ctx)
	require.NoError(t, err)
	snapshot2[0].Items[0].Quantity = 999

	fresh, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, fresh[0].Items[0].Quantity)
}

func TestSaleStore_DraftItemsCopied(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	d := draft(1)
	created, err := store.Create(ctx, d)
	require.NoError(t, err)

	// The store must not alias the caller's slice.
	d.Items[0].Quantity = 777
	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)
}

func TestCatalog_SetPrice(t *testing.T) {
	catalog := NewCatalog(product.Product{ID: 1, Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	ctx := context.Background()

	catalog.SetPrice(1, decimal.RequireFromString("12.50"))
	p, err := catalog.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "12.50", p.Price.StringFixed(2))

	// Unknown id is a no-op.
	catalog.SetPrice(99, decimal.NewFromInt(1))
	_, err = catalog.GetByID(ctx, 99)
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestCatalog_GetByIDsSkipsMissing(t *testing.T) {
	catalog := NewCatalog(
		product.Product{ID: 1, Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5},
		product.Product{ID: 2, Name: "Gadget", Price: decimal.NewFromInt(20), Stock: 5},
	)

	got, err := catalog.GetByIDs(context.Background(), []int64{1, 404, 2})
	require.NoError(t, err)
	assert.Len(t, got, 2, "missing ids are absent, not errors")
}
