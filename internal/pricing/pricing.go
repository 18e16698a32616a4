// Package pricing derives the financial breakdown of a cart.
package pricing

import (
	"fmt"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/apierror"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/shopspring/decimal"
)

// Settings is the flat tax configuration of the store.
type Settings struct {
	TaxRate          decimal.Decimal
	PricesIncludeTax bool
}

// Breakdown is the result of pricing a cart. Subtotal, Tax and Discount are
// rounded to cents; Total is the exact sum of the lines.
type Breakdown struct {
	GrossSubtotal decimal.Decimal `json:"gross_subtotal"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}

// Price computes subtotal, discount, tax and total for items.
//
// The total is never changed by the tax mode: with inclusive prices the total
// is split into subtotal + tax, with exclusive prices tax is reported on top of
// an unchanged total. Product sign-off is pending on the exclusive case.
func Price(items []model.LineItem, s Settings) (Breakdown, error) {
	if s.TaxRate.IsNegative() {
		return Breakdown{}, apierror.Validation("La tasa de impuesto no puede ser negativa")
	}

	gross := decimal.Zero
	discount := decimal.Zero
	for i, it := range items {
		if it.UnitPrice.IsNegative() {
			return Breakdown{}, apierror.Validation(fmt.Sprintf("item %d: precio negativo", i+1))
		}
		if it.Quantity < 0 {
			return Breakdown{}, apierror.Validation(fmt.Sprintf("item %d: cantidad negativa", i+1))
		}
		if it.Discount.IsNegative() {
			return Breakdown{}, apierror.Validation(fmt.Sprintf("item %d: descuento negativo", i+1))
		}
		qty := decimal.NewFromInt(int64(it.Quantity))
		gross = gross.Add(it.UnitPrice.Mul(qty))
		discount = discount.Add(it.Discount.Mul(qty))
	}

	total := decimal.Max(decimal.Zero, gross.Sub(discount))

	var tax, subtotal decimal.Decimal
	if s.PricesIncludeTax {
		net := total.Div(decimal.NewFromInt(1).Add(s.TaxRate))
		tax = total.Sub(net).Round(2)
		subtotal = total.Sub(tax)
	} else {
		tax = total.Mul(s.TaxRate).Round(2)
		subtotal = total
	}

	return Breakdown{
		GrossSubtotal: gross,
		Subtotal:      subtotal,
		Discount:      discount,
		Tax:           tax,
		Total:         total,
	}, nil
}
