// Package tender validates split-tender payments and reduces the entered
// amounts into the committed payment breakdown of a sale.
//
// The allocator is stateless: the caller owns the entered amounts across
// edits and hands them in on every attempt.
package tender

import (
	"fmt"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/apierror"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/shopspring/decimal"
)

// Epsilon absorbs rounding on entered amounts: a payment short by at most
// one cent still commits.
var Epsilon = decimal.New(1, -2)

// Entered maps each tender to the amount typed by the operator.
type Entered map[model.Tender]decimal.Decimal

// Sum returns the total entered across tenders.
func (e Entered) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range e {
		sum = sum.Add(v)
	}
	return sum
}

// Summary is the live state of a checkout attempt.
type Summary struct {
	Total     decimal.Decimal `json:"total"`
	Entered   decimal.Decimal `json:"entered"`
	Remaining decimal.Decimal `json:"remaining"`
	Change    decimal.Decimal `json:"change"`
	// CanCommit is true when Remaining <= Epsilon.
	CanCommit bool `json:"can_commit"`
}

// Allocation is the committed payment breakdown.
type Allocation struct {
	Payments []model.Payment `json:"payments"`
	Entered  decimal.Decimal `json:"entered"`
	Change   decimal.Decimal `json:"change"`
}

// Sum returns the amount credited across committed payments.
func (a Allocation) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range a.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// Summarize computes remaining and change without validating.
func Summarize(total decimal.Decimal, entered Entered) Summary {
	sum := entered.Sum()
	remaining := decimal.Max(decimal.Zero, total.Sub(sum))
	return Summary{
		Total:     total,
		Entered:   sum,
		Remaining: remaining,
		Change:    decimal.Max(decimal.Zero, sum.Sub(total)),
		CanCommit: remaining.LessThanOrEqual(Epsilon),
	}
}

// Allocate validates entered against total and returns the committed
// breakdown. Change is taken out of the cash entry only, since change is
// physically returned from the drawer; other tenders are credited at face
// value. Entries that end at zero or below are dropped; a sale left with no
// entry, such as a fully discounted cart, is recorded as a zero cash payment.
func Allocate(total decimal.Decimal, entered Entered) (Allocation, error) {
	if total.IsNegative() {
		return Allocation{}, apierror.Validation("El total de la venta no puede ser negativo")
	}
	if err := validate(entered); err != nil {
		return Allocation{}, err
	}

	sum := Summarize(total, entered)
	if !sum.CanCommit {
		return Allocation{}, apierror.InsufficientFunds(
			fmt.Sprintf("El monto pagado es insuficiente: faltan %s", sum.Remaining.StringFixed(2)))
	}

	payments := make([]model.Payment, 0, len(entered))
	for _, t := range model.Tenders {
		amount, ok := entered[t]
		if !ok {
			continue
		}
		if t.AffectsCashDrawer() {
			amount = amount.Sub(sum.Change)
		}
		if !amount.IsPositive() {
			continue
		}
		payments = append(payments, model.Payment{Tender: t, Amount: amount})
	}
	if len(payments) == 0 {
		payments = append(payments, model.Payment{Tender: model.TenderCash, Amount: decimal.Zero})
	}

	return Allocation{Payments: payments, Entered: sum.Entered, Change: sum.Change}, nil
}

// FillRemaining suggests the amount for t that settles the sale given the
// other entries. It is advisory only; Allocate still validates on commit.
func FillRemaining(total decimal.Decimal, entered Entered, t model.Tender) decimal.Decimal {
	others := decimal.Zero
	for k, v := range entered {
		if k != t {
			others = others.Add(v)
		}
	}
	return decimal.Max(decimal.Zero, total.Sub(others))
}

// Single builds the allocation for a sale paid in full with one tender.
func Single(t model.Tender, amount decimal.Decimal) Allocation {
	return Allocation{
		Payments: []model.Payment{{Tender: t, Amount: amount}},
		Entered:  amount,
		Change:   decimal.Zero,
	}
}

func validate(entered Entered) error {
	for t, v := range entered {
		if !t.Valid() {
			return apierror.Validation(fmt.Sprintf("metodo de pago desconocido: %q", t))
		}
		if v.IsNegative() {
			return apierror.Validation(fmt.Sprintf("monto negativo para %s", t))
		}
	}
	return nil
}
