package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/apierror"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/dto"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/ledger"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	reasonOpen  = "Apertura de Caja"
	reasonClose = "Cierre de Caja"
)

type ShiftService interface {
	Open(ctx context.Context, startingCash decimal.Decimal) (*dto.ShiftReport, error)
	Close(ctx context.Context, declaredCash decimal.Decimal) (*dto.ShiftReport, error)
	RecordMovement(ctx context.Context, kind model.MovementKind, amount decimal.Decimal, reason string) (*model.CashMovement, error)
	// ActiveShift resolves the OPEN shift from the store on every call.
	ActiveShift(ctx context.Context) (*model.CashShift, error)
	// RequireOpen re-reads shiftID and fails unless it is still OPEN.
	RequireOpen(ctx context.Context, shiftID uuid.UUID) (*model.CashShift, error)
	Snapshot(ctx context.Context) (*dto.ShiftSnapshot, error)
	Report(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftReport, error)
	History(ctx context.Context) ([]model.CashShift, error)
}

type shiftService struct {
	store repository.Store
	// mu serialises open, close and manual movements within the process;
	// the partial unique index on open shifts guards across processes.
	mu sync.Mutex
}

func NewShiftService(store repository.Store) ShiftService {
	return &shiftService{store: store}
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *shiftService) Open(ctx context.Context, startingCash decimal.Decimal) (*dto.ShiftReport, error) {
	if startingCash.IsNegative() {
		return nil, apierror.Validation("El monto inicial no puede ser negativo")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	var report *dto.ShiftReport
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		active, err := findActive(ctx, tx)
		if err != nil {
			return err
		}
		if active != nil {
			return apierror.ShiftAlreadyOpen()
		}

		now := time.Now()
		shift, err := tx.UpsertShift(ctx, &model.CashShift{
			StartTime:   now,
			StartAmount: startingCash,
			Status:      model.ShiftOpen,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apierror.ShiftAlreadyOpen()
			}
			return apierror.Persistence("open shift", err)
		}

		mov, err := tx.AppendMovement(ctx, &model.CashMovement{
			ShiftID:   shift.ID,
			Kind:      model.MovementOpen,
			Amount:    startingCash,
			Reason:    reasonOpen,
			Timestamp: now,
		})
		if err != nil {
			return apierror.Persistence("append open movement", err)
		}

		report = &dto.ShiftReport{
			Shift:        *shift,
			Movements:    []model.CashMovement{*mov},
			Transactions: []model.Transaction{},
			Balances:     ledger.ComputeBalances(*shift, nil, nil),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("shift_id", report.Shift.ID.String()).
		Str("start_amount", startingCash.StringFixed(2)).
		Msg("shift opened")
	return report, nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// The declared amount is compared with the computed drawer but never
// reconciled; the discrepancy travels on the report.

func (s *shiftService) Close(ctx context.Context, declaredCash decimal.Decimal) (*dto.ShiftReport, error) {
	if declaredCash.IsNegative() {
		return nil, apierror.Validation("El monto declarado no puede ser negativo")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	var report *dto.ShiftReport
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		active, err := findActive(ctx, tx)
		if err != nil {
			return err
		}
		if active == nil {
			return apierror.NoActiveShift()
		}

		now := time.Now()
		declared := declaredCash
		active.EndTime = &now
		active.EndAmount = &declared
		active.Status = model.ShiftClosed

		closed, err := tx.UpsertShift(ctx, active)
		if err != nil {
			return apierror.Persistence("close shift", err)
		}
		if _, err := tx.AppendMovement(ctx, &model.CashMovement{
			ShiftID:   closed.ID,
			Kind:      model.MovementClose,
			Amount:    declaredCash,
			Reason:    reasonClose,
			Timestamp: now,
		}); err != nil {
			return apierror.Persistence("append close movement", err)
		}

		report, err = buildReport(ctx, tx, *closed)
		return err
	})
	if err != nil {
		return nil, err
	}

	ev := log.Info()
	if report.Discrepancy != nil && report.Discrepancy.Classification != ledger.DiscrepancyNormal {
		ev = log.Warn()
	}
	ev.Str("shift_id", report.Shift.ID.String()).
		Str("computed_cash", report.Balances.Cash.StringFixed(2)).
		Str("declared_cash", declaredCash.StringFixed(2)).
		Msg("shift closed")
	return report, nil
}

// ── RecordMovement ────────────────────────────────────────────────────────────
// Manual cash in/out. Movements are append-only and never touch the shift.

func (s *shiftService) RecordMovement(ctx context.Context, kind model.MovementKind, amount decimal.Decimal, reason string) (*model.CashMovement, error) {
	if !kind.Manual() {
		return nil, apierror.Validation("Tipo de movimiento inválido")
	}
	if !amount.IsPositive() {
		return nil, apierror.Validation("El monto debe ser mayor a cero")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	active, err := findActive(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, apierror.NoActiveShift()
	}

	mov, err := s.store.AppendMovement(ctx, &model.CashMovement{
		ShiftID:   active.ID,
		Kind:      kind,
		Amount:    amount,
		Reason:    reason,
		Timestamp: time.Now(),
	})
	if err != nil {
		return nil, apierror.Persistence("append movement", err)
	}
	return mov, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *shiftService) ActiveShift(ctx context.Context) (*model.CashShift, error) {
	active, err := findActive(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, apierror.NoActiveShift()
	}
	return active, nil
}

func (s *shiftService) RequireOpen(ctx context.Context, shiftID uuid.UUID) (*model.CashShift, error) {
	shift, err := s.store.FindShift(ctx, shiftID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NoActiveShift()
		}
		return nil, apierror.Persistence("find shift", err)
	}
	if !shift.IsOpen() {
		return nil, apierror.NoActiveShift()
	}
	return shift, nil
}

func (s *shiftService) Snapshot(ctx context.Context) (*dto.ShiftSnapshot, error) {
	active, err := s.ActiveShift(ctx)
	if err != nil {
		return nil, err
	}
	report, err := buildReport(ctx, s.store, *active)
	if err != nil {
		return nil, err
	}
	b := report.Balances
	return &dto.ShiftSnapshot{
		Shift:         *active,
		Start:         b.Start,
		Cash:          b.Cash,
		Digital:       b.Digital,
		ExpectedTotal: b.Total(),
		Movements:     len(report.Movements),
		Transactions:  len(report.Transactions),
	}, nil
}

func (s *shiftService) Report(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftReport, error) {
	shift, err := s.store.FindShift(ctx, shiftID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("Caja no encontrada")
		}
		return nil, apierror.Persistence("find shift", err)
	}
	return buildReport(ctx, s.store, *shift)
}

// History lists closed shifts, newest first.
func (s *shiftService) History(ctx context.Context) ([]model.CashShift, error) {
	shifts, err := s.store.ListShifts(ctx)
	if err != nil {
		return nil, apierror.Persistence("list shifts", err)
	}
	closed := make([]model.CashShift, 0, len(shifts))
	for _, sh := range shifts {
		if sh.Status == model.ShiftClosed {
			closed = append(closed, sh)
		}
	}
	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].StartTime.After(closed[j].StartTime)
	})
	return closed, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// findActive returns the OPEN shift or nil. The store's order is not trusted:
// if more than one row reads OPEN the most recent one wins.
func findActive(ctx context.Context, store repository.ShiftRepository) (*model.CashShift, error) {
	shifts, err := store.ListShifts(ctx)
	if err != nil {
		return nil, apierror.Persistence("list shifts", err)
	}
	var active *model.CashShift
	for i := range shifts {
		sh := &shifts[i]
		if !sh.IsOpen() {
			continue
		}
		if active == nil || sh.StartTime.After(active.StartTime) {
			active = sh
		}
	}
	return active, nil
}

// buildReport filters the full collections down to shift and folds them.
func buildReport(ctx context.Context, store repository.Store, shift model.CashShift) (*dto.ShiftReport, error) {
	movements, err := store.ListMovements(ctx)
	if err != nil {
		return nil, apierror.Persistence("list movements", err)
	}
	transactions, err := store.ListTransactions(ctx)
	if err != nil {
		return nil, apierror.Persistence("list transactions", err)
	}

	movs, txs := ledger.ForShift(shift.ID, movements, transactions)
	balances := ledger.ComputeBalances(shift, movs, txs)
	report := &dto.ShiftReport{
		Shift:        shift,
		Movements:    movs,
		Transactions: txs,
		Balances:     balances,
	}
	if shift.EndAmount != nil {
		d := ledger.CompareDeclared(*shift.EndAmount, balances.Cash)
		report.Discrepancy = &d
	}
	return report, nil
}
