// Package repository implements the persistence contract required by the
// settlement engine on top of GORM/Postgres.
//
// The store returns full collections; filtering by shift is done by the
// caller and never assumed server-side.
package repository

import (
	"context"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup by id matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique key,
	// e.g. a second transaction for the same online order.
	ErrDuplicate = errors.New("duplicate record")
)

type ShiftRepository interface {
	ListShifts(ctx context.Context) ([]model.CashShift, error)
	FindShift(ctx context.Context, id uuid.UUID) (*model.CashShift, error)
	// UpsertShift inserts when the id is nil (the store assigns it) and
	// updates by id otherwise. The stored record is returned.
	UpsertShift(ctx context.Context, s *model.CashShift) (*model.CashShift, error)
	ListMovements(ctx context.Context) ([]model.CashMovement, error)
	AppendMovement(ctx context.Context, m *model.CashMovement) (*model.CashMovement, error)
}

type TransactionRepository interface {
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	AppendTransaction(ctx context.Context, tx *model.Transaction) (*model.Transaction, error)
	FindTransactionByOnlineOrderID(ctx context.Context, orderID string) (*model.Transaction, error)
}

// StatusContext carries the fields written together with an order status.
// Expect, when set, makes the update conditional on the current status.
type StatusContext struct {
	Expect  model.OrderStatus
	ShiftID *uuid.UUID
	Tender  *model.Tender
}

// StatusUpdate reports what an update-by-id actually did. A store-side
// access policy can accept the statement and change nothing, so callers must
// look at Applied rather than at the absence of an error.
type StatusUpdate struct {
	Applied      bool
	RowsAffected int64
}

type OnlineOrderRepository interface {
	ListExternalOrders(ctx context.Context) ([]model.ExternalOrder, error)
	FindExternalOrder(ctx context.Context, id string) (*model.ExternalOrder, error)
	UpdateExternalOrderStatus(ctx context.Context, id string, status model.OrderStatus, sc StatusContext) (StatusUpdate, error)
}

// Store is the full persistence contract.
type Store interface {
	ShiftRepository
	TransactionRepository
	OnlineOrderRepository
	// Atomic runs fn inside one database transaction: either every call made
	// through tx is committed or none is.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}

type store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) Store { return &store{db: db} }

func (s *store) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}

// translate maps driver errors onto the package sentinels.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(ErrNotFound, op)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(ErrDuplicate, op)
	default:
		return errors.Wrap(err, op)
	}
}
