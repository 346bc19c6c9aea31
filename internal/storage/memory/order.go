// Package memory provides the in-process order store.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/rafaelmp/pedidos/internal/domain/order"
)

var _ order.Repository = (*OrderStore)(nil)

// OrderStore holds all orders in process memory. Ids come from an atomic
// sequence starting at 1: assigned once, never reused, strictly increasing
// across all stored orders. All methods are safe for concurrent use, and
// reads hand out copies so callers never alias a stored record.
type OrderStore struct {
	seq atomic.Int64

	mu     sync.RWMutex
	orders map[int64]order.Order
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[int64]order.Order)}
}

// Save persists o and returns the stored copy. When o has no id, the next
// sequence value is taken atomically before the record becomes visible, so
// concurrent saves can neither collide on an id nor lose a write. When o
// already has an id the record at that id is overwritten.
func (s *OrderStore) Save(_ context.Context, o *order.Order) (*order.Order, error) {
	stored := *o
	if stored.ID == 0 {
		stored.ID = s.seq.Add(1)
	}

	s.mu.Lock()
	s.orders[stored.ID] = stored
	s.mu.Unlock()

	return &stored, nil
}

// FindByID returns a copy of the order, or (nil, nil) when absent.
func (s *OrderStore) FindByID(_ context.Context, id int64) (*order.Order, error) {
	s.mu.RLock()
	o, ok := s.orders[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return &o, nil
}

// FindAll returns a snapshot of all orders sorted by id. The slice is
// detached from the store: later saves do not show up in it.
func (s *OrderStore) FindAll(_ context.Context) ([]order.Order, error) {
	s.mu.RLock()
	all := lo.Values(s.orders)
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b order.Order) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return all, nil
}

// ExistsByID reports whether an order is stored under id.
func (s *OrderStore) ExistsByID(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	_, ok := s.orders[id]
	s.mu.RUnlock()
	return ok, nil
}

// Clear empties the store and resets the sequence, so the next saved order
// gets id 1. Meant for test isolation and explicit administrative resets.
func (s *OrderStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.orders = make(map[int64]order.Order)
	s.mu.Unlock()

	s.seq.Store(0)
	return nil
}
