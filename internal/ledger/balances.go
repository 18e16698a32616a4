// Package ledger folds a shift's transactions and manual movements into the
// drawer balances. Everything here is pure and safe for concurrent use.
package ledger

import (
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balances is the computed state of a shift's drawer.
type Balances struct {
	Start   decimal.Decimal `json:"start"`
	Cash    decimal.Decimal `json:"cash"`
	Digital decimal.Decimal `json:"digital"`
}

// Total is the expected takings across every tender.
func (b Balances) Total() decimal.Decimal { return b.Cash.Add(b.Digital) }

// ComputeBalances recomputes the balances of shift from the full collections.
// Both slices may contain records of other shifts and may arrive in any order;
// only records whose shift id matches are folded. OPEN and CLOSE movements
// are informational, the start comes from the shift record.
func ComputeBalances(shift model.CashShift, movements []model.CashMovement, transactions []model.Transaction) Balances {
	cash := shift.StartAmount
	digital := decimal.Zero

	for i := range transactions {
		tx := &transactions[i]
		if tx.ShiftID != shift.ID {
			continue
		}
		for _, p := range tx.Payments {
			if p.Tender.AffectsCashDrawer() {
				cash = cash.Add(p.Amount)
			} else {
				digital = digital.Add(p.Amount)
			}
		}
	}

	for _, m := range movements {
		if m.ShiftID != shift.ID {
			continue
		}
		switch m.Kind {
		case model.MovementIn:
			cash = cash.Add(m.Amount)
		case model.MovementOut:
			cash = cash.Sub(m.Amount)
		}
	}

	return Balances{Start: shift.StartAmount, Cash: cash, Digital: digital}
}

// ForShift filters the collections down to one shift, preserving order.
func ForShift(shiftID uuid.UUID, movements []model.CashMovement, transactions []model.Transaction) ([]model.CashMovement, []model.Transaction) {
	movs := make([]model.CashMovement, 0)
	for _, m := range movements {
		if m.ShiftID == shiftID {
			movs = append(movs, m)
		}
	}
	txs := make([]model.Transaction, 0)
	for _, t := range transactions {
		if t.ShiftID == shiftID {
			txs = append(txs, t)
		}
	}
	return movs, txs
}
