package ledger

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/sales-ledger/internal/domain/sale"
)

// Query evaluates criteria over the store's current contents: a full scan of
// the List snapshot, keeping a sale iff every supplied predicate matches.
// Absent predicates impose no constraint, so a zero criteria returns all
// sales. Result order is the store's iteration order (id ascending), never
// re-sorted.
//
// This is the single query surface: listing, reports, and CSV export all call
// it with the same criteria object, so what is displayed and what is exported
// always agree. Complexity is O(sales × items); catalog resolution downstream
// is O(1) per item via batched map lookups.
//
// The scan is read-only: a caller abandoning it via ctx leaves no side
// effects behind.
func (s *Service) Query(ctx context.Context, criteria sale.FilterCriteria) ([]sale.Sale, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list sales")
	}
	if criteria.IsZero() {
		return all, nil
	}

	matched := make([]sale.Sale, 0, len(all))
	for _, sl := range all {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if criteria.Matches(sl) {
			matched = append(matched, sl)
		}
	}
	return matched, nil
}
