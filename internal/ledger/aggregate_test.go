package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/sales-ledger/internal/domain/product"
	"github.com/xenking/sales-ledger/internal/domain/sale"
	"github.com/xenking/sales-ledger/internal/memstore"
)

func newCatalogWithPrice(id int64, name, unitPrice string) *memstore.Catalog {
	return memstore.NewCatalog(product.Product{ID: id, Name: name, Price: price(unitPrice), Stock: 100})
}

func newEmptyRegistry() *memstore.Registry {
	return memstore.NewRegistry()
}

func TestSumTotal_Empty(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(SumTotal(nil)))
	assert.True(t, decimal.Zero.Equal(SumTotal([]sale.Sale{})))
}

func TestSumTotal_NoDrift(t *testing.T) {
	// 1000 × 0.10 in float64 drifts; in decimal it is exactly 100.00.
	sales := make([]sale.Sale, 1000)
	for i := range sales {
		sales[i] = sale.Sale{Total: price("0.10")}
	}
	assert.Equal(t, "100.00", SumTotal(sales).StringFixed(2))
}

func TestProductSummary_DescendingQuantity(t *testing.T) {
	at := ts(t, "2026-03-01T10:00:00Z")
	svc := fixtureService(t,
		fixtureSale(1, nil, at, item(1, 2, "0.10"), item(2, 3, "19.99")),
		fixtureSale(2, nil, at, item(1, 1, "0.10"), item(3, 7, "5.00")),
	)

	summary, err := svc.ProductSummary(context.Background(), mustQueryAll(t, svc))
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, int64(3), summary[0].ProductID)
	assert.Equal(t, int64(7), summary[0].Quantity)
	assert.Equal(t, int64(1), summary[1].ProductID)
	assert.Equal(t, int64(3), summary[1].Quantity)
	assert.Equal(t, int64(2), summary[2].ProductID)
	assert.Equal(t, int64(3), summary[2].Quantity)
}

func TestProductSummary_StableTies(t *testing.T) {
	// Quantities {A:5, B:8, C:8}: B and C tie, B first encountered first.
	at := ts(t, "2026-03-01T10:00:00Z")
	svc := fixtureService(t,
		fixtureSale(1, nil, at, item(1, 5, "0.10")),
		fixtureSale(2, nil, at, item(2, 8, "19.99")),
		fixtureSale(3, nil, at, item(3, 8, "5.00")),
	)

	summary, err := svc.ProductSummary(context.Background(), mustQueryAll(t, svc))
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, int64(2), summary[0].ProductID, "B sorts first among the tie")
	assert.Equal(t, int64(3), summary[1].ProductID, "C keeps encounter order behind B")
	assert.Equal(t, int64(1), summary[2].ProductID)
}

func TestProductSummary_CurrentCatalogPrice(t *testing.T) {
	at := ts(t, "2026-03-01T10:00:00Z")
	// The sale captured 0.10 per unit, but the catalog now says 0.25: the
	// summary amount uses the current price.
	store := &fixtureStore{sales: []sale.Sale{
		fixtureSale(1, nil, at, item(1, 4, "0.10")),
	}}
	catalog := newCatalogWithPrice(1, "Widget", "0.25")
	svc := NewService(store, catalog, newEmptyRegistry(), nil)

	summary, err := svc.ProductSummary(context.Background(), mustQueryAll(t, svc))
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, "Widget", summary[0].Name)
	assert.Equal(t, int64(4), summary[0].Quantity)
	assert.True(t, price("1.00").Equal(summary[0].Amount), "4 × current 0.25, not 4 × captured 0.10")
}

func TestProductSummary_MissingProductDegrades(t *testing.T) {
	at := ts(t, "2026-03-01T10:00:00Z")
	store := &fixtureStore{sales: []sale.Sale{
		fixtureSale(1, nil, at, item(404, 2, "9.99")),
	}}
	svc := NewService(store, newCatalogWithPrice(1, "Widget", "0.25"), newEmptyRegistry(), nil)

	summary, err := svc.ProductSummary(context.Background(), mustQueryAll(t, svc))
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, UnknownProductName, summary[0].Name)
	assert.Equal(t, int64(2), summary[0].Quantity)
	assert.True(t, decimal.Zero.Equal(summary[0].Amount))
}

func TestProductSummary_Empty(t *testing.T) {
	svc := fixtureService(t)

	summary, err := svc.ProductSummary(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestBuildReport(t *testing.T) {
	svc := fixtureService(t,
		fixtureSale(1, nil, ts(t, "2026-03-01T10:00:00Z"), item(1, 1, "10.00")),
		fixtureSale(2, nil, ts(t, "2026-03-01T18:00:00Z"), item(2, 1, "20.00")),
		fixtureSale(3, nil, ts(t, "2026-03-03T09:00:00Z"), item(3, 1, "5.00")),
	)

	report, err := svc.BuildReport(context.Background(),
		ts(t, "2026-03-01T00:00:00Z"), ts(t, "2026-03-07T00:00:00Z"))
	require.NoError(t, err)

	assert.Equal(t, "35.00", report.Summary.TotalSales.StringFixed(2))
	assert.Equal(t, 3, report.Summary.NumTransactions)
	assert.Equal(t, "11.67", report.Summary.AverageTransaction.StringFixed(2))

	// Only days with sales appear, ascending.
	require.Len(t, report.DailySales, 2)
	assert.Equal(t, "2026-03-01", report.DailySales[0].Date)
	assert.Equal(t, "30.00", report.DailySales[0].Total.StringFixed(2))
	assert.Equal(t, "2026-03-03", report.DailySales[1].Date)
	assert.Equal(t, "5.00", report.DailySales[1].Total.StringFixed(2))
}

func TestBuildReport_EmptyPeriod(t *testing.T) {
	svc := fixtureService(t)

	report, err := svc.BuildReport(context.Background(),
		ts(t, "2026-03-01T00:00:00Z"), ts(t, "2026-03-07T00:00:00Z"))
	require.NoError(t, err)

	assert.Equal(t, 0, report.Summary.NumTransactions)
	assert.True(t, decimal.Zero.Equal(report.Summary.TotalSales))
	assert.True(t, decimal.Zero.Equal(report.Summary.AverageTransaction))
	assert.Empty(t, report.TopProducts)
	assert.Empty(t, report.DailySales)
}

func TestBuildReport_TopProductsCapped(t *testing.T) {
	at := ts(t, "2026-03-01T10:00:00Z")
	items := make([]sale.Item, 0, 15)
	for pid := int64(1); pid <= 15; pid++ {
		items = append(items, item(pid, int(pid), "1.00"))
	}
	svc := fixtureService(t, fixtureSale(1, nil, at, items...))

	report, err := svc.BuildReport(context.Background(),
		ts(t, "2026-03-01T00:00:00Z"), ts(t, "2026-03-02T00:00:00Z"))
	require.NoError(t, err)
	assert.Len(t, report.TopProducts, 10)
	assert.Equal(t, int64(15), report.TopProducts[0].Quantity)
}

func mustQueryAll(t *testing.T, svc *Service) []sale.Sale {
	t.Helper()
	sales, err := svc.Query(context.Background(), sale.FilterCriteria{})
	require.NoError(t, err)
	return sales
}
