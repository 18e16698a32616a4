package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MemoryStore is an in-process Store used by tests and local demos.
// Fail injects an error for a named operation ("AppendTransaction", ...).
// RejectUpdate simulates a row policy that accepts an order update but
// changes nothing; the hook may edit the row to stand in for a concurrent
// writer.
type MemoryStore struct {
	mu           sync.Mutex
	shifts       map[uuid.UUID]model.CashShift
	movements    []model.CashMovement
	transactions []model.Transaction
	orders       map[string]model.ExternalOrder

	Fail         map[string]error
	RejectUpdate func(o *model.ExternalOrder) bool
	Calls        map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shifts: make(map[uuid.UUID]model.CashShift),
		orders: make(map[string]model.ExternalOrder),
		Fail:   make(map[string]error),
		Calls:  make(map[string]int),
	}
}

// PutOrder seeds an external order.
func (m *MemoryStore) PutOrder(o model.ExternalOrder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	m.orders[o.ID] = o
}

func (m *MemoryStore) enter(op string) error {
	m.Calls[op]++
	if err, ok := m.Fail[op]; ok && err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}

func (m *MemoryStore) ListShifts(_ context.Context) ([]model.CashShift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListShifts"); err != nil {
		return nil, err
	}
	out := make([]model.CashShift, 0, len(m.shifts))
	for _, s := range m.shifts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (m *MemoryStore) FindShift(_ context.Context, id uuid.UUID) (*model.CashShift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("FindShift"); err != nil {
		return nil, err
	}
	s, ok := m.shifts[id]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "find shift")
	}
	return &s, nil
}

func (m *MemoryStore) UpsertShift(_ context.Context, s *model.CashShift) (*model.CashShift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpsertShift"); err != nil {
		return nil, err
	}
	if s.Status == model.ShiftOpen {
		for id, other := range m.shifts {
			if other.Status == model.ShiftOpen && id != s.ID {
				return nil, errors.Wrap(ErrDuplicate, "upsert shift")
			}
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.shifts[s.ID] = *s
	return s, nil
}

func (m *MemoryStore) ListMovements(_ context.Context) ([]model.CashMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListMovements"); err != nil {
		return nil, err
	}
	return append([]model.CashMovement(nil), m.movements...), nil
}

func (m *MemoryStore) AppendMovement(_ context.Context, mv *model.CashMovement) (*model.CashMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("AppendMovement"); err != nil {
		return nil, err
	}
	if mv.ID == uuid.Nil {
		mv.ID = uuid.New()
	}
	m.movements = append(m.movements, *mv)
	return mv, nil
}

func (m *MemoryStore) ListTransactions(_ context.Context) ([]model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListTransactions"); err != nil {
		return nil, err
	}
	return append([]model.Transaction(nil), m.transactions...), nil
}

func (m *MemoryStore) AppendTransaction(_ context.Context, tx *model.Transaction) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("AppendTransaction"); err != nil {
		return nil, err
	}
	if tx.OnlineOrderID != nil {
		for _, other := range m.transactions {
			if other.OnlineOrderID != nil && *other.OnlineOrderID == *tx.OnlineOrderID {
				return nil, errors.Wrap(ErrDuplicate, "append transaction")
			}
		}
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	m.transactions = append(m.transactions, *tx)
	return tx, nil
}

func (m *MemoryStore) FindTransactionByOnlineOrderID(_ context.Context, orderID string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("FindTransactionByOnlineOrderID"); err != nil {
		return nil, err
	}
	for _, tx := range m.transactions {
		if tx.OnlineOrderID != nil && *tx.OnlineOrderID == orderID {
			found := tx
			return &found, nil
		}
	}
	return nil, errors.Wrap(ErrNotFound, "find transaction by online order")
}

func (m *MemoryStore) ListExternalOrders(_ context.Context) ([]model.ExternalOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListExternalOrders"); err != nil {
		return nil, err
	}
	out := make([]model.ExternalOrder, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) FindExternalOrder(_ context.Context, id string) (*model.ExternalOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("FindExternalOrder"); err != nil {
		return nil, err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "find online order")
	}
	return &o, nil
}

func (m *MemoryStore) UpdateExternalOrderStatus(_ context.Context, id string, status model.OrderStatus, sc StatusContext) (StatusUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateExternalOrderStatus"); err != nil {
		return StatusUpdate{}, err
	}
	o, ok := m.orders[id]
	if !ok || (sc.Expect != "" && o.Status != sc.Expect) {
		return StatusUpdate{}, nil
	}
	if m.RejectUpdate != nil && m.RejectUpdate(&o) {
		m.orders[id] = o
		return StatusUpdate{}, nil
	}
	o.Status = status
	if sc.ShiftID != nil {
		shiftID := *sc.ShiftID
		o.ShiftID = &shiftID
	}
	if sc.Tender != nil {
		label := sc.Tender.Label()
		o.PaymentMethod = &label
	}
	m.orders[id] = o
	return StatusUpdate{Applied: true, RowsAffected: 1}, nil
}

// Atomic snapshots the ledger collections and restores them if fn fails.
func (m *MemoryStore) Atomic(_ context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	shifts := make(map[uuid.UUID]model.CashShift, len(m.shifts))
	for k, v := range m.shifts {
		shifts[k] = v
	}
	movements := append([]model.CashMovement(nil), m.movements...)
	transactions := append([]model.Transaction(nil), m.transactions...)
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.shifts, m.movements, m.transactions = shifts, movements, transactions
		m.mu.Unlock()
		return err
	}
	return nil
}

// Movements returns a copy of the stored movements for assertions.
func (m *MemoryStore) Movements() []model.CashMovement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.CashMovement(nil), m.movements...)
}

// Transactions returns a copy of the stored transactions for assertions.
func (m *MemoryStore) Transactions() []model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Transaction(nil), m.transactions...)
}
