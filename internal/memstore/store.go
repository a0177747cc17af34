// Package memstore provides in-memory implementations of the ledger's
// storage contracts, used in memory mode and throughout the tests. The
// SaleStore honors the same concurrency contract as the PostgreSQL store:
// serialized writes, atomic visibility, snapshot reads.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xenking/sales-ledger/internal/domain/sale"
)

var _ sale.Store = (*SaleStore)(nil)

// SaleStore is an in-memory sale.Store. A single RWMutex serializes writes
// while allowing reads to proceed concurrently with each other; ids are
// assigned from a monotonic counter and never reused, even after deletion.
type SaleStore struct {
	mu     sync.RWMutex
	nextID int64
	sales  map[int64]*sale.Sale
}

// NewSaleStore returns an empty SaleStore.
func NewSaleStore() *SaleStore {
	return &SaleStore{
		nextID: 1,
		sales:  make(map[int64]*sale.Sale),
	}
}

// Create assigns the next id and a UTC timestamp and stores the sale. The
// sale becomes visible to readers atomically: the write lock is held for the
// whole commit, so no snapshot ever observes a half-written record. The
// context is intentionally not consulted — an accepted creation runs to its
// terminal outcome.
func (s *SaleStore) Create(_ context.Context, draft sale.Draft) (*sale.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]sale.Item, len(draft.Items))
	copy(items, draft.Items)

	created := &sale.Sale{
		ID:         s.nextID,
		CustomerID: draft.CustomerID,
		Items:      items,
		Total:      draft.Total,
		CreatedAt:  time.Now().UTC(),
	}
	s.nextID++
	s.sales[created.ID] = created

	out := cloneSale(created)
	return &out, nil
}

// Delete removes the sale with the given id, or returns sale.ErrNotFound.
func (s *SaleStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sales[id]; !ok {
		return sale.ErrNotFound
	}
	delete(s.sales, id)
	return nil
}

// Get returns a copy of the sale with the given id, or sale.ErrNotFound.
func (s *SaleStore) Get(_ context.Context, id int64) (*sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sales[id]
	if !ok {
		return nil, sale.ErrNotFound
	}
	out := cloneSale(stored)
	return &out, nil
}

// List returns a snapshot of all sales ordered by id ascending. The snapshot
// is an independent copy: later mutations never leak into it, and iterating
// it requires no lock.
func (s *SaleStore) List(_ context.Context) ([]sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]sale.Sale, 0, len(s.sales))
	for _, stored := range s.sales {
		out = append(out, cloneSale(stored))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneSale(s *sale.Sale) sale.Sale {
	out := *s
	out.Items = make([]sale.Item, len(s.Items))
	copy(out.Items, s.Items)
	if s.CustomerID != nil {
		id := *s.CustomerID
		out.CustomerID = &id
	}
	return out
}
