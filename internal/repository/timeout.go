package repository

import (
	"context"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/google/uuid"
)

// WithTimeout bounds every call made through the returned Store by d, so a
// stalled database surfaces as a deadline error instead of hanging the caller.
// Calls made inside Atomic share the deadline of the enclosing transaction,
// whatever context the callback hands them.
func WithTimeout(s Store, d time.Duration) Store {
	return WithTimeouts(s, d, d)
}

// WithTimeouts is WithTimeout with a separate bound for the online order
// calls, which reach the storefront's tables.
func WithTimeouts(s Store, local, external time.Duration) Store {
	if local <= 0 && external <= 0 {
		return s
	}
	return &timeoutStore{inner: s, d: local, ext: external}
}

type timeoutStore struct {
	inner Store
	d     time.Duration
	ext   time.Duration

	// until is set on the store handed to an Atomic callback.
	until time.Time
}

func (t *timeoutStore) ctx(ctx context.Context) (context.Context, context.CancelFunc) {
	if !t.until.IsZero() {
		return context.WithDeadline(ctx, t.until)
	}
	return bound(ctx, t.d)
}

func (t *timeoutStore) extCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if !t.until.IsZero() {
		return context.WithDeadline(ctx, t.until)
	}
	return bound(ctx, t.ext)
}

func bound(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (t *timeoutStore) ListShifts(ctx context.Context) ([]model.CashShift, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return t.inner.ListShifts(ctx)
}

func (t *timeoutStore) FindShift(ctx context.Context, id uuid.UUID) (*model.CashShift, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return t.inner.FindShift(ctx, id)
}

func (t *timeoutStore) UpsertShift(ctx context.Context, s *model.CashShift) (*model.CashShift, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return t.inner.UpsertShift(ctx, s)
}

func (t *timeoutStore) ListMovements(ctx context.Context) ([]model.CashMovement, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return t.inner.ListMovements(ctx)
}

func (t *timeoutStore) AppendMovement(ctx context.Context, m *model.CashMovement) (*model.CashMovement, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return t.inner.AppendMovement(ctx, m)
}

func (t *timeoutStore) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return t.inner.ListTransactions(ctx)
}

func (t *timeoutStore) AppendTransaction(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return t.inner.AppendTransaction(ctx, tx)
}

func (t *timeoutStore) FindTransactionByOnlineOrderID(ctx context.Context, orderID string) (*model.Transaction, error) {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	return t.inner.FindTransactionByOnlineOrderID(ctx, orderID)
}

func (t *timeoutStore) ListExternalOrders(ctx context.Context) ([]model.ExternalOrder, error) {
	ctx, cancel := t.extCtx(ctx)
	defer cancel()
	return t.inner.ListExternalOrders(ctx)
}

func (t *timeoutStore) FindExternalOrder(ctx context.Context, id string) (*model.ExternalOrder, error) {
	ctx, cancel := t.extCtx(ctx)
	defer cancel()
	return t.inner.FindExternalOrder(ctx, id)
}

func (t *timeoutStore) UpdateExternalOrderStatus(ctx context.Context, id string, status model.OrderStatus, sc StatusContext) (StatusUpdate, error) {
	ctx, cancel := t.extCtx(ctx)
	defer cancel()
	return t.inner.UpdateExternalOrderStatus(ctx, id, status, sc)
}

func (t *timeoutStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	ctx, cancel := t.ctx(ctx)
	defer cancel()
	until, ok := ctx.Deadline()
	if !ok {
		return t.inner.Atomic(ctx, fn)
	}
	return t.inner.Atomic(ctx, func(tx Store) error {
		return fn(&timeoutStore{inner: tx, d: t.d, ext: t.ext, until: until})
	})
}
