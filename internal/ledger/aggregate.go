package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/sales-ledger/internal/domain/product"
	"github.com/xenking/sales-ledger/internal/domain/sale"
)

// UnknownProductName is the placeholder used when a product referenced by a
// sale no longer resolves in the catalog.
const UnknownProductName = "unknown product"

// topProductsLimit caps the product list in period reports.
const topProductsLimit = 10

// ProductTotal accumulates one product's quantity and amount across a result
// set. Amount is priced at the current catalog price, not the price captured
// when the sales were recorded, so summaries reflect today's pricing.
type ProductTotal struct {
	ProductID int64
	Name      string
	Quantity  int64
	Amount    decimal.Decimal
}

// SumTotal returns the exact decimal sum of each sale's total. It is a pure
// function over its input and is recomputed on every call; for N sales the
// result equals Σ Total with no intermediate precision loss.
func SumTotal(sales []sale.Sale) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range sales {
		sum = sum.Add(s.Total)
	}
	return sum
}

// ProductSummary accumulates per-product quantities and amounts over sales,
// one entry per distinct product in first-encountered order, then sorts by
// descending quantity with a stable sort so ties keep encounter order.
//
// Products missing from the catalog degrade to UnknownProductName and a zero
// unit price rather than failing the summary.
func (s *Service) ProductSummary(ctx context.Context, sales []sale.Sale) ([]ProductTotal, error) {
	totals := make(map[int64]*ProductTotal)
	order := make([]int64, 0)
	for _, sl := range sales {
		for _, item := range sl.Items {
			t, ok := totals[item.ProductID]
			if !ok {
				t = &ProductTotal{ProductID: item.ProductID, Amount: decimal.Zero}
				totals[item.ProductID] = t
				order = append(order, item.ProductID)
			}
			t.Quantity += int64(item.Quantity)
		}
	}
	if len(order) == 0 {
		return []ProductTotal{}, nil
	}

	fetched, err := s.catalog.GetByIDs(ctx, order)
	if err != nil {
		return nil, errors.Wrap(err, "resolve products")
	}
	byID := make(map[int64]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	entries := make([]ProductTotal, 0, len(order))
	for _, id := range order {
		t := totals[id]
		if p, ok := byID[id]; ok {
			t.Name = p.Name
			t.Amount = p.Price.Mul(decimal.NewFromInt(t.Quantity))
		} else {
			t.Name = UnknownProductName
		}
		entries = append(entries, *t)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Quantity > entries[j].Quantity
	})
	return entries, nil
}

// SalesReport is a period summary over the ledger: scalar totals, the top
// products by quantity, and per-day revenue buckets.
type SalesReport struct {
	Period      ReportPeriod
	Summary     ReportSummary
	TopProducts []ProductTotal
	DailySales  []DailyTotal
}

// ReportPeriod is the inclusive time range a report covers.
type ReportPeriod struct {
	Start time.Time
	End   time.Time
}

// ReportSummary holds the scalar aggregates of a period.
type ReportSummary struct {
	TotalSales         decimal.Decimal
	NumTransactions    int
	AverageTransaction decimal.Decimal
}

// DailyTotal is the summed revenue of one UTC calendar day.
type DailyTotal struct {
	Date  string
	Total decimal.Decimal
}

// BuildReport queries the period and derives the full report. The average is
// rounded to two decimal places; days appear in ascending date order and only
// when they had sales.
func (s *Service) BuildReport(ctx context.Context, start, end time.Time) (*SalesReport, error) {
	sales, err := s.Query(ctx, sale.FilterCriteria{Start: &start, End: &end})
	if err != nil {
		return nil, err
	}

	total := SumTotal(sales)
	avg := decimal.Zero
	if len(sales) > 0 {
		avg = total.Div(decimal.NewFromInt(int64(len(sales)))).Round(2)
	}

	top, err := s.ProductSummary(ctx, sales)
	if err != nil {
		return nil, err
	}
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}

	byDay := make(map[string]decimal.Decimal)
	days := make([]string, 0)
	for _, sl := range sales {
		day := sl.CreatedAt.UTC().Format(time.DateOnly)
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] = byDay[day].Add(sl.Total)
	}
	sort.Strings(days)
	daily := make([]DailyTotal, 0, len(days))
	for _, day := range days {
		daily = append(daily, DailyTotal{Date: day, Total: byDay[day]})
	}

	return &SalesReport{
		Period: ReportPeriod{Start: start, End: end},
		Summary: ReportSummary{
			TotalSales:         total,
			NumTransactions:    len(sales),
			AverageTransaction: avg,
		},
		TopProducts: top,
		DailySales:  daily,
	}, nil
}
