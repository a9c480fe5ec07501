package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wellywell/monopay/internal/types"
)

type MemoryStore struct {
	mu        sync.RWMutex
	byOrderID map[string]*types.OrderRecord
	byInvoice map[string]string
	now       func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byOrderID: make(map[string]*types.OrderRecord),
		byInvoice: make(map[string]string),
		now:       time.Now,
	}
}

func (s *MemoryStore) CreateOrder(_ context.Context, record types.OrderRecord) (*types.OrderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byOrderID[record.OrderID]; ok {
		return nil, &OrderExistsError{OrderID: record.OrderID}
	}
	if owner, ok := s.byInvoice[record.InvoiceID]; ok && owner != record.OrderID {
		return nil, &InvoiceConflictError{InvoiceID: record.InvoiceID, OrderID: owner}
	}

	stored := record.Clone()
	stored.Status = types.CreatedStatus
	stored.CreatedAt = s.now().UTC()
	s.byOrderID[stored.OrderID] = &stored
	s.byInvoice[stored.InvoiceID] = stored.OrderID

	res := stored.Clone()
	return &res, nil
}

func (s *MemoryStore) GetOrder(_ context.Context, orderID string) (*types.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byOrderID[orderID]
	if !ok {
		return nil, &OrderNotFoundError{OrderID: orderID}
	}
	res := r.Clone()
	return &res, nil
}

func (s *MemoryStore) ApplyStatus(_ context.Context, orderID string, update types.StatusUpdate) (*types.OrderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byOrderID[orderID]
	if !ok {
		return nil, &OrderNotFoundError{OrderID: orderID}
	}
	r.Apply(update, s.now().UTC())

	res := r.Clone()
	return &res, nil
}

func (s *MemoryStore) ListOrders(_ context.Context, after string, limit int) ([]types.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.byOrderID))
	for id := range s.byOrderID {
		if id > after {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	records := make([]types.OrderRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, s.byOrderID[id].Clone())
	}
	return records, nil
}

func (s *MemoryStore) RegisterInvoice(_ context.Context, invoiceID string, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.byInvoice[invoiceID]; ok {
		if owner == orderID {
			return nil
		}
		return &InvoiceConflictError{InvoiceID: invoiceID, OrderID: owner}
	}
	s.byInvoice[invoiceID] = orderID
	return nil
}

func (s *MemoryStore) ResolveInvoice(_ context.Context, invoiceID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orderID, ok := s.byInvoice[invoiceID]
	if !ok {
		return "", &InvoiceNotFoundError{InvoiceID: invoiceID}
	}
	return orderID, nil
}
