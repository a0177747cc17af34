package ledger

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/sales-ledger/internal/domain/sale"
)

// bulkDeleteConcurrency bounds the number of in-flight deletes in DeleteMany.
const bulkDeleteConcurrency = 4

// BulkResult reports the per-id outcome of a bulk delete. It is a successful
// call result even when some targets failed: callers must inspect Failed
// rather than assume all-or-nothing behavior.
type BulkResult struct {
	Deleted []int64
	Failed  []BulkFailure
}

// BulkFailure names one target that could not be deleted and why.
type BulkFailure struct {
	ID     int64
	Reason string
}

// AllSucceeded reports whether every requested id was deleted.
func (r *BulkResult) AllSucceeded() bool {
	return len(r.Failed) == 0
}

// DeleteMany attempts to delete every id independently: one id's failure
// never prevents attempts on the others, and deletions that succeeded are
// kept regardless of later failures — there is no rollback. Deletes are
// independent and commutative, so they run concurrently; the result lists
// outcomes in input order either way.
//
// Only sale.ErrNotFound is recorded as a per-id failure. Any other store
// error aborts the call, since it signals the outcome report could no longer
// reflect the true final state.
func (s *Service) DeleteMany(ctx context.Context, ids []int64) (*BulkResult, error) {
	outcomes := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkDeleteConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			err := s.store.Delete(gctx, id)
			if err != nil && !errors.Is(err, sale.ErrNotFound) {
				return errors.Wrapf(err, "delete sale %d", id)
			}
			outcomes[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &BulkResult{
		Deleted: make([]int64, 0, len(ids)),
		Failed:  make([]BulkFailure, 0),
	}
	for i, id := range ids {
		if outcomes[i] != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Reason: outcomes[i].Error()})
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	return result, nil
}
