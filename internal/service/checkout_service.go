package service

import (
	"context"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/apierror"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/dto"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/pricing"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/repository"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/tender"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type CheckoutService interface {
	// Quote prices the cart and summarises the entered tenders without
	// committing anything. It does not need an open shift.
	Quote(ctx context.Context, req dto.CotizarRequest) (*dto.CotizarResponse, error)
	Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error)
}

type checkoutService struct {
	store    repository.Store
	shifts   ShiftService
	orders   OrderService
	settings pricing.Settings
}

func NewCheckoutService(store repository.Store, shifts ShiftService, orders OrderService, settings pricing.Settings) CheckoutService {
	return &checkoutService{store: store, shifts: shifts, orders: orders, settings: settings}
}

// ── Quote ─────────────────────────────────────────────────────────────────────

func (s *checkoutService) Quote(_ context.Context, req dto.CotizarRequest) (*dto.CotizarResponse, error) {
	breakdown, err := pricing.Price(dto.LineItems(req.Items), s.settings)
	if err != nil {
		return nil, err
	}
	entered := dto.EnteredAmounts(req.Pagos)

	fill := make(map[model.Tender]decimal.Decimal, len(model.Tenders))
	for _, t := range model.Tenders {
		fill[t] = tender.FillRemaining(breakdown.Total, entered, t)
	}
	return &dto.CotizarResponse{
		Precio:    breakdown,
		Resumen:   tender.Summarize(breakdown.Total, entered),
		Completar: fill,
	}, nil
}

// ── Checkout ──────────────────────────────────────────────────────────────────
// active shift → price → allocate → re-check shift → append.
// Nothing is written until every local check has passed.

func (s *checkoutService) Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	shift, err := s.shifts.ActiveShift(ctx)
	if err != nil {
		return nil, err
	}

	if len(req.Items) == 0 {
		return nil, apierror.Validation("El carrito está vacío")
	}
	items := dto.LineItems(req.Items)
	breakdown, err := pricing.Price(items, s.settings)
	if err != nil {
		return nil, err
	}

	alloc, err := tender.Allocate(breakdown.Total, dto.EnteredAmounts(req.Pagos))
	if err != nil {
		return nil, err
	}

	if _, err := s.shifts.RequireOpen(ctx, shift.ID); err != nil {
		return nil, err
	}

	tx := &model.Transaction{
		CreatedAt: time.Now(),
		Subtotal:  breakdown.Subtotal,
		Tax:       breakdown.Tax,
		Discount:  breakdown.Discount,
		Total:     breakdown.Total,
		ShiftID:   shift.ID,
		Items:     items,
		Payments:  alloc.Payments,
	}

	var stored *model.Transaction
	if req.OnlineOrderID != nil && *req.OnlineOrderID != "" {
		stored, err = s.orders.SettleCart(ctx, *req.OnlineOrderID, tx)
		if err != nil {
			return nil, err
		}
	} else {
		stored, err = s.store.AppendTransaction(context.WithoutCancel(ctx), tx)
		if err != nil {
			return nil, apierror.Persistence("append transaction", err)
		}
	}

	log.Info().
		Str("transaction_id", stored.ID.String()).
		Str("shift_id", shift.ID.String()).
		Str("total", stored.Total.StringFixed(2)).
		Int("payments", len(stored.Payments)).
		Msg("sale committed")
	return &dto.CheckoutResponse{Transaction: *stored, Vuelto: alloc.Change}, nil
}
