package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/apierror"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/pricing"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/repository"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/tender"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// OrderTracker keeps the local-only state of web orders: which ones the
// operator archived and which settlements still need a human check.
type OrderTracker interface {
	ArchivedIDs(ctx context.Context) (map[string]bool, error)
	Archive(ctx context.Context, orderID string) error
	MarkUnverified(ctx context.Context, orderID string) error
}

// SettlementQueue takes transactions whose external write applied but whose
// local append failed, so a worker can append them later.
type SettlementQueue interface {
	EnqueueSettlement(ctx context.Context, tx *model.Transaction) error
}

type OrderService interface {
	// Worklist lists external orders minus the archived ones.
	Worklist(ctx context.Context) ([]model.ExternalOrder, error)
	// Settle charges a web order in full with one tender against the active shift.
	Settle(ctx context.Context, orderID string, t model.Tender) (*model.Transaction, error)
	// SettleCart settles a web order that was imported into the cart and paid
	// with the given, already allocated, transaction.
	SettleCart(ctx context.Context, orderID string, tx *model.Transaction) (*model.Transaction, error)
	Archive(ctx context.Context, orderID string) error
	// Verify reports whether orderID reads settled and has a local transaction.
	Verify(ctx context.Context, orderID string) (bool, error)
	// Invalidate drops the cached worklist.
	Invalidate()
}

type orderService struct {
	store    repository.Store
	shifts   ShiftService
	tracker  OrderTracker
	queue    SettlementQueue
	settings pricing.Settings

	group singleflight.Group

	mu       sync.Mutex
	worklist []model.ExternalOrder
	fresh    bool
	gen      uint64 // bumped by Invalidate
}

func NewOrderService(store repository.Store, shifts ShiftService, tracker OrderTracker, queue SettlementQueue, settings pricing.Settings) OrderService {
	return &orderService{
		store:    store,
		shifts:   shifts,
		tracker:  tracker,
		queue:    queue,
		settings: settings,
	}
}

// ── Worklist ──────────────────────────────────────────────────────────────────

func (s *orderService) Worklist(ctx context.Context) ([]model.ExternalOrder, error) {
	s.mu.Lock()
	if s.fresh {
		out := append([]model.ExternalOrder(nil), s.worklist...)
		s.mu.Unlock()
		return out, nil
	}
	gen := s.gen
	s.mu.Unlock()

	orders, err := s.store.ListExternalOrders(ctx)
	if err != nil {
		return nil, apierror.Persistence("list online orders", err)
	}

	archived, err := s.tracker.ArchivedIDs(ctx)
	if err != nil {
		// Visibility only: show everything rather than fail the list.
		log.Warn().Err(err).Msg("orders: could not read archived ids")
		archived = nil
	}

	list := make([]model.ExternalOrder, 0, len(orders))
	for _, o := range orders {
		if archived[o.ID] || o.Status == model.OrderArchived {
			continue
		}
		list = append(list, o)
	}

	if err == nil {
		s.mu.Lock()
		// An invalidation during the read means list may already be stale.
		if s.gen == gen {
			s.worklist, s.fresh = list, true
		}
		s.mu.Unlock()
	}
	return append([]model.ExternalOrder(nil), list...), nil
}

func (s *orderService) Invalidate() {
	s.mu.Lock()
	s.gen++
	s.fresh = false
	s.worklist = nil
	s.mu.Unlock()
}

// ── Settle ────────────────────────────────────────────────────────────────────

func (s *orderService) Settle(ctx context.Context, orderID string, t model.Tender) (*model.Transaction, error) {
	if !t.Valid() {
		return nil, apierror.Validation("Método de pago inválido")
	}
	shift, err := s.shifts.ActiveShift(ctx)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, orderID, shift.ID, func(o *model.ExternalOrder) (*model.Transaction, model.Tender, error) {
		items := o.LineItems()
		b, err := pricing.Price(items, s.settings)
		if err != nil {
			return nil, "", err
		}
		// Web orders arrive priced: the order total is final and tax is
		// not split again.
		modality := o.Modality
		return &model.Transaction{
			CreatedAt:     time.Now(),
			Subtotal:      o.Total,
			Tax:           decimal.Zero,
			Discount:      b.Discount,
			Total:         o.Total,
			ShiftID:       shift.ID,
			OnlineOrderID: &o.ID,
			Modality:      &modality,
			Items:         items,
			Payments:      tender.Single(t, o.Total).Payments,
		}, t, nil
	})
}

func (s *orderService) SettleCart(ctx context.Context, orderID string, tx *model.Transaction) (*model.Transaction, error) {
	if len(tx.Payments) == 0 {
		return nil, apierror.Validation("El pedido no tiene pagos")
	}
	return s.settle(ctx, orderID, tx.ShiftID, func(o *model.ExternalOrder) (*model.Transaction, model.Tender, error) {
		built := *tx
		built.OnlineOrderID = &o.ID
		modality := o.Modality
		built.Modality = &modality
		return &built, primaryTender(tx.Payments), nil
	})
}

type buildFunc func(o *model.ExternalOrder) (*model.Transaction, model.Tender, error)

// settle collapses concurrent calls for one order id. The external status is
// written before the local transaction is appended, and once writing starts
// the call runs to completion even if the caller goes away.
func (s *orderService) settle(ctx context.Context, orderID string, shiftID uuid.UUID, build buildFunc) (*model.Transaction, error) {
	v, err, shared := s.group.Do(orderID, func() (interface{}, error) {
		return s.settleOnce(context.WithoutCancel(ctx), orderID, shiftID, build)
	})
	if shared {
		log.Debug().Str("order_id", orderID).Msg("orders: settle shared with a concurrent call")
	}
	if err != nil {
		return nil, err
	}
	return v.(*model.Transaction), nil
}

func (s *orderService) settleOnce(ctx context.Context, orderID string, shiftID uuid.UUID, build buildFunc) (*model.Transaction, error) {
	if _, err := s.shifts.RequireOpen(ctx, shiftID); err != nil {
		return nil, err
	}

	order, err := s.store.FindExternalOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.Reconciliation("Pedido no encontrado", err)
		}
		return nil, apierror.Persistence("find online order", err)
	}

	switch order.Status {
	case model.OrderPending:
	case model.OrderSettled, model.OrderArchived:
		return s.existing(ctx, orderID)
	default:
		return nil, apierror.Reconciliation("El pedido está en un estado desconocido", nil)
	}

	tx, t, err := build(order)
	if err != nil {
		return nil, err
	}

	update, err := s.store.UpdateExternalOrderStatus(ctx, orderID, model.OrderSettled, repository.StatusContext{
		Expect:  model.OrderPending,
		ShiftID: &shiftID,
		Tender:  &t,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, s.ambiguous(ctx, orderID, "Tiempo de espera agotado al confirmar el pedido; requiere verificación", err)
		}
		return nil, apierror.Reconciliation("No se pudo actualizar el pedido", err)
	}

	if !update.Applied {
		current, err := s.store.FindExternalOrder(ctx, orderID)
		if err != nil {
			return nil, s.ambiguous(ctx, orderID, "No se pudo comprobar el estado del pedido; requiere verificación", err)
		}
		if current.Status == model.OrderPending {
			return nil, s.ambiguous(ctx, orderID, "El pedido no se marcó como cobrado; requiere verificación", nil)
		}
		// Someone else moved it first. Their transaction is the result; until
		// it lands here, the row carries their tender and shift, not ours.
		if prior, err := s.store.FindTransactionByOnlineOrderID(ctx, orderID); err == nil {
			return prior, nil
		}
		return nil, s.ambiguous(ctx, orderID, "El pedido fue cobrado desde otra caja; requiere verificación", nil)
	}

	stored, err := s.store.AppendTransaction(ctx, tx)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.existing(ctx, orderID)
		}
		if qerr := s.queue.EnqueueSettlement(ctx, tx); qerr != nil {
			log.Error().Err(qerr).Str("order_id", orderID).Msg("orders: could not enqueue settlement")
		}
		return nil, s.ambiguous(ctx, orderID, "Pedido cobrado pero la venta no se registró; requiere verificación", err)
	}

	s.Invalidate()
	log.Info().
		Str("order_id", orderID).
		Str("transaction_id", stored.ID.String()).
		Str("shift_id", shiftID.String()).
		Str("tender", string(t)).
		Msg("orders: settled")
	return stored, nil
}

// existing returns the transaction produced by an earlier settlement.
func (s *orderService) existing(ctx context.Context, orderID string) (*model.Transaction, error) {
	tx, err := s.store.FindTransactionByOnlineOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.Reconciliation("Pedido ya procesado", err)
		}
		return nil, apierror.Persistence("find settlement", err)
	}
	return tx, nil
}

// ambiguous records orderID for verification and builds the error.
func (s *orderService) ambiguous(ctx context.Context, orderID, msg string, cause error) error {
	log.Warn().Err(cause).Str("order_id", orderID).Msg("orders: settlement needs verification")
	if err := s.tracker.MarkUnverified(ctx, orderID); err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("orders: could not record unverified settlement")
	}
	s.Invalidate()
	return apierror.Ambiguous(msg, cause)
}

// ── Archive ───────────────────────────────────────────────────────────────────

func (s *orderService) Archive(ctx context.Context, orderID string) error {
	order, err := s.store.FindExternalOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.NotFound("Pedido no encontrado")
		}
		return apierror.Persistence("find online order", err)
	}
	if order.Status == model.OrderPending {
		return apierror.Validation("Solo se pueden archivar pedidos cobrados")
	}
	if err := s.tracker.Archive(ctx, orderID); err != nil {
		return apierror.Persistence("archive online order", err)
	}
	s.Invalidate()
	return nil
}

// ── Verify ────────────────────────────────────────────────────────────────────

func (s *orderService) Verify(ctx context.Context, orderID string) (bool, error) {
	order, err := s.store.FindExternalOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if order.Status == model.OrderPending {
		return false, nil
	}
	if _, err := s.store.FindTransactionByOnlineOrderID(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// primaryTender is the tender written on the order for a split payment:
// the one carrying the largest amount.
func primaryTender(payments []model.Payment) model.Tender {
	best := payments[0]
	for _, p := range payments[1:] {
		if p.Amount.GreaterThan(best.Amount) {
			best = p
		}
	}
	return best.Tender
}
