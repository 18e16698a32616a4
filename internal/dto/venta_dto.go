package dto

import (
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/pricing"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/tender"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemRequest struct {
	ProductoID string          `json:"producto_id" validate:"required,max=64"`
	Nombre     string          `json:"nombre"      validate:"required,max=120"`
	Precio     decimal.Decimal `json:"precio"      validate:"min=0"`
	Cantidad   int             `json:"cantidad"    validate:"required,min=1"`
	Descuento  decimal.Decimal `json:"descuento"   validate:"min=0"`
	VarianteID *string         `json:"variante_id" validate:"omitempty,max=64"`
	Variante   *string         `json:"variante"    validate:"omitempty,max=120"`
}

// PagoRequest is one tender entry typed by the operator.
type PagoRequest struct {
	Metodo model.Tender    `json:"metodo" validate:"required,oneof=cash card yape plin transfer"`
	Monto  decimal.Decimal `json:"monto"  validate:"min=0"`
}

type CotizarRequest struct {
	Items []ItemRequest `json:"items" validate:"dive"`
	Pagos []PagoRequest `json:"pagos" validate:"dive"`
}

type CheckoutRequest struct {
	Items []ItemRequest `json:"items" validate:"required,min=1,dive"`
	Pagos []PagoRequest `json:"pagos" validate:"dive"`
	// OnlineOrderID is set when a web order was imported into the cart.
	OnlineOrderID *string `json:"online_order_id" validate:"omitempty,max=64"`
}

// LineItems converts the request lines into cart lines, keeping their order.
func LineItems(items []ItemRequest) []model.LineItem {
	out := make([]model.LineItem, 0, len(items))
	for i, it := range items {
		out = append(out, model.LineItem{
			ProductID:   it.ProductoID,
			Name:        it.Nombre,
			UnitPrice:   it.Precio,
			Quantity:    it.Cantidad,
			Discount:    it.Descuento,
			VariantID:   it.VarianteID,
			VariantName: it.Variante,
			Position:    i,
		})
	}
	return out
}

// EnteredAmounts folds the tender entries; repeated tenders add up.
func EnteredAmounts(pagos []PagoRequest) tender.Entered {
	entered := make(tender.Entered, len(pagos))
	for _, p := range pagos {
		entered[p.Metodo] = entered[p.Metodo].Add(p.Monto)
	}
	return entered
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CotizarResponse struct {
	Precio  pricing.Breakdown `json:"precio"`
	Resumen tender.Summary    `json:"resumen"`
	// Completar holds, per tender, the amount that would settle the rest.
	Completar map[model.Tender]decimal.Decimal `json:"completar"`
}

type CheckoutResponse struct {
	Transaction model.Transaction `json:"transaction"`
	Vuelto      decimal.Decimal   `json:"vuelto"`
}
