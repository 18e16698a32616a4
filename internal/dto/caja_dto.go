package dto

import (
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/ledger"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type CerrarCajaRequest struct {
	// MontoDeclarado is the cash counted in the drawer at close.
	MontoDeclarado decimal.Decimal `json:"monto_declarado" validate:"min=0"`
}

type MovimientoRequest struct {
	Tipo   model.MovementKind `json:"tipo"   validate:"required,oneof=IN OUT"`
	Monto  decimal.Decimal    `json:"monto"  validate:"required,gt=0"`
	Motivo string             `json:"motivo" validate:"max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ShiftReport is the closing report of a shift: everything a receipt
// renderer needs without querying again.
type ShiftReport struct {
	Shift        model.CashShift      `json:"shift"`
	Movements    []model.CashMovement `json:"movements"`
	Transactions []model.Transaction  `json:"transactions"`
	Balances     ledger.Balances      `json:"balances"`
	// Discrepancy is present once the shift has a declared ending amount.
	Discrepancy *ledger.Discrepancy `json:"discrepancy,omitempty"`
}

// ShiftSnapshot is the live drawer state of the active shift.
type ShiftSnapshot struct {
	Shift         model.CashShift `json:"shift"`
	Start         decimal.Decimal `json:"start"`
	Cash          decimal.Decimal `json:"cash"`
	Digital       decimal.Decimal `json:"digital"`
	ExpectedTotal decimal.Decimal `json:"expected_total"`
	Movements     int             `json:"movements"`
	Transactions  int             `json:"transactions"`
}
