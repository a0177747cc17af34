package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/sales-ledger/internal/domain/sale"
)

// NamePlaceholder replaces customer and product names that no longer resolve,
// so a stale reference degrades a cell instead of failing the export.
const NamePlaceholder = "N/A"

var csvHeader = []string{"Sale ID", "Customer", "Total Amount", "Date", "Items"}

// WriteCSV serializes sales to w as CSV, one row per sale in input order.
//
// Columns: sale id; customer name (NamePlaceholder for walk-ins and
// unresolvable customers); total as "$" plus two fixed decimals; creation
// timestamp in RFC 3339; line items as newline-joined "<name> x<qty>" pairs.
// Output is byte-stable for identical input. The export path is expected to
// be fed by Query with the same criteria the caller displayed, so rows match
// the listing exactly.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, sales []sale.Sale) error {
	productNames, customerNames, err := s.resolveNames(ctx, sales)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, sl := range sales {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		customerName := NamePlaceholder
		if sl.CustomerID != nil {
			if name, ok := customerNames[*sl.CustomerID]; ok {
				customerName = name
			}
		}

		lines := make([]string, len(sl.Items))
		for i, item := range sl.Items {
			name, ok := productNames[item.ProductID]
			if !ok {
				name = NamePlaceholder
			}
			lines[i] = fmt.Sprintf("%s x%d", name, item.Quantity)
		}

		row := []string{
			fmt.Sprintf("%d", sl.ID),
			customerName,
			"$" + sl.Total.StringFixed(2),
			sl.CreatedAt.UTC().Format(time.RFC3339),
			strings.Join(lines, "\n"),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write csv row for sale %d", sl.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// resolveNames batch-resolves every distinct product and customer id in
// sales. Missing entries are simply absent from the maps.
func (s *Service) resolveNames(ctx context.Context, sales []sale.Sale) (map[int64]string, map[int64]string, error) {
	productIDs := make([]int64, 0)
	customerIDs := make([]int64, 0)
	seenProducts := make(map[int64]struct{})
	seenCustomers := make(map[int64]struct{})
	for _, sl := range sales {
		if sl.CustomerID != nil {
			if _, ok := seenCustomers[*sl.CustomerID]; !ok {
				seenCustomers[*sl.CustomerID] = struct{}{}
				customerIDs = append(customerIDs, *sl.CustomerID)
			}
		}
		for _, item := range sl.Items {
			if _, ok := seenProducts[item.ProductID]; !ok {
				seenProducts[item.ProductID] = struct{}{}
				productIDs = append(productIDs, item.ProductID)
			}
		}
	}

	productNames := make(map[int64]string, len(productIDs))
	if len(productIDs) > 0 {
		fetched, err := s.catalog.GetByIDs(ctx, productIDs)
		if err != nil {
			return nil, nil, errors.Wrap(err, "resolve products")
		}
		for _, p := range fetched {
			productNames[p.ID] = p.Name
		}
	}

	customerNames := make(map[int64]string, len(customerIDs))
	if len(customerIDs) > 0 {
		fetched, err := s.customers.GetByIDs(ctx, customerIDs)
		if err != nil {
			return nil, nil, errors.Wrap(err, "resolve customers")
		}
		for _, c := range fetched {
			customerNames[c.ID] = c.Name
		}
	}

	return productNames, customerNames, nil
}
