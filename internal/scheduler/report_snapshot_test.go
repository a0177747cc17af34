package scheduler

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/sales-ledger/internal/domain/product"
	"github.com/xenking/sales-ledger/internal/ledger"
	"github.com/xenking/sales-ledger/internal/memstore"
)

func newSnapshotFixture(t *testing.T) (*SnapshotService, *ledger.Service) {
	t.Helper()
	store := memstore.NewSaleStore()
	catalog := memstore.NewCatalog(
		product.Product{ID: 1, Name: "Widget", Price: decimal.RequireFromString("2.50"), Stock: 100},
	)
	svc := ledger.NewService(store, catalog, memstore.NewRegistry(), nil)
	snap := NewSnapshotService(svc, "0 6 * * 1", t.TempDir(), nil)
	return snap, svc
}

func TestRun_WritesBothKinds(t *testing.T) {
	snap, svc := newSnapshotFixture(t)
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, ledger.CreateSaleRequest{
		Items: []ledger.CreateItem{{ProductID: 1, Quantity: 4}},
	})
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(snap.dir, 0o755))
	snap.Run(ctx)

	for _, kind := range []string{KindWeekly, KindMonthly} {
		path, err := snap.Latest(kind)
		require.NoError(t, err)
		require.NotEmpty(t, path, "expected a %s snapshot", kind)

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var doc snapshot
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, kind, doc.ReportType)
		assert.Equal(t, 1, doc.Summary.NumTransactions)
		assert.Equal(t, "10.00", doc.Summary.TotalSales)
		require.Len(t, doc.TopProducts, 1)
		assert.Equal(t, "Widget", doc.TopProducts[0].Name)
		assert.Equal(t, int64(4), doc.TopProducts[0].Quantity)
		require.Len(t, doc.DailySales, 1)
		assert.Equal(t, time.Now().UTC().Format(time.DateOnly), doc.DailySales[0].Date)
	}
}

func TestLatest_EmptyDir(t *testing.T) {
	snap, _ := newSnapshotFixture(t)

	path, err := snap.Latest(KindWeekly)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestLatest_MissingDir(t *testing.T) {
	svc := ledger.NewService(memstore.NewSaleStore(), memstore.NewCatalog(), memstore.NewRegistry(), nil)
	snap := NewSnapshotService(svc, "0 6 * * 1", "does/not/exist", nil)

	path, err := snap.Latest(KindWeekly)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestLatest_PicksNewest(t *testing.T) {
	snap, _ := newSnapshotFixture(t)
	require.NoError(t, os.MkdirAll(snap.dir, 0o755))

	older := snap.dir + "/weekly_report_20260101_060000.json"
	newer := snap.dir + "/weekly_report_20260301_060000.json"
	require.NoError(t, os.WriteFile(older, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("{}"), 0o644))
	// A monthly file must not shadow the weekly lookup.
	monthly := snap.dir + "/monthly_report_20260401_060000.json"
	require.NoError(t, os.WriteFile(monthly, []byte("{}"), 0o644))

	path, err := snap.Latest(KindWeekly)
	require.NoError(t, err)
	assert.Equal(t, newer, path)
}
