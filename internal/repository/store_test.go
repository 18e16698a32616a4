package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestUpdateExternalOrderStatus_Applied(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewStore(gormDB)

	shiftID := uuid.New()
	tender := model.TenderYape

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "online_orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := store.UpdateExternalOrderStatus(context.Background(), "web-1", model.OrderSettled,
		repository.StatusContext{Expect: model.OrderPending, ShiftID: &shiftID, Tender: &tender})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateExternalOrderStatus_ZeroRowsIsNotApplied(t *testing.T) {
	// The statement is accepted but a row policy (or a concurrent settlement)
	// leaves the row untouched.
	gormDB, mock := setupMockDB(t)
	store := repository.NewStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "online_orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	res, err := store.UpdateExternalOrderStatus(context.Background(), "web-2", model.OrderSettled,
		repository.StatusContext{Expect: model.OrderPending})
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateExternalOrderStatus_Error(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "online_orders" SET`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := store.UpdateExternalOrderStatus(context.Background(), "web-3", model.OrderSettled, repository.StatusContext{})
	assert.ErrorContains(t, err, "update online order status")
}

func TestFindShift_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewStore(gormDB)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cash_shifts"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	s, err := store.FindShift(context.Background(), id)
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestListShifts(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewStore(gormDB)

	open, closed := uuid.New(), uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "start_time", "end_time", "start_amount", "end_amount", "status"}).
		AddRow(open, now, nil, "100.00", nil, "OPEN").
		AddRow(closed, now.Add(-time.Hour), now.Add(-time.Minute), "50.00", "80.00", "CLOSED")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cash_shifts" ORDER BY start_time DESC`)).
		WillReturnRows(rows)

	shifts, err := store.ListShifts(context.Background())
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.True(t, shifts[0].IsOpen())
	assert.Equal(t, "100", shifts[0].StartAmount.String())
	require.NotNil(t, shifts[1].EndAmount)
	assert.Equal(t, "80", shifts[1].EndAmount.String())
}

func TestWithTimeoutBoundsCalls(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.WithTimeout(repository.NewStore(gormDB), 20*time.Millisecond)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cash_movements"`)).
		WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	start := time.Now()
	_, err := store.ListMovements(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWithTimeout_BoundsCallsInsideAtomic(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.WithTimeout(repository.NewStore(gormDB), 100*time.Millisecond)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cash_shifts"`)).
		WillDelayFor(2 * time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	// Callers detach from the request before committing ledger writes.
	ctx := context.WithoutCancel(context.Background())

	start := time.Now()
	err := store.Atomic(ctx, func(tx repository.Store) error {
		_, err := tx.ListShifts(ctx)
		return err
	})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

// deadlineStore records the remaining time budget each call received.
type deadlineStore struct {
	*repository.MemoryStore
	budget map[string]time.Duration
}

func (d *deadlineStore) record(ctx context.Context, op string) {
	if dl, ok := ctx.Deadline(); ok {
		d.budget[op] = time.Until(dl)
	}
}

func (d *deadlineStore) ListShifts(ctx context.Context) ([]model.CashShift, error) {
	d.record(ctx, "ListShifts")
	return d.MemoryStore.ListShifts(ctx)
}

func (d *deadlineStore) FindExternalOrder(ctx context.Context, id string) (*model.ExternalOrder, error) {
	d.record(ctx, "FindExternalOrder")
	return d.MemoryStore.FindExternalOrder(ctx, id)
}

func TestWithTimeouts_ExternalBudget(t *testing.T) {
	inner := &deadlineStore{MemoryStore: repository.NewMemoryStore(), budget: map[string]time.Duration{}}
	store := repository.WithTimeouts(inner, time.Second, time.Minute)

	_, _ = store.ListShifts(context.Background())
	_, _ = store.FindExternalOrder(context.Background(), "x")

	assert.LessOrEqual(t, inner.budget["ListShifts"], time.Second)
	assert.Greater(t, inner.budget["FindExternalOrder"], time.Second)
}
