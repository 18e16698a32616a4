package ledger

import "github.com/shopspring/decimal"

// Discrepancy classes: "normal" | "advertencia" | "critico"
const (
	DiscrepancyNormal      = "normal"
	DiscrepancyAdvertencia = "advertencia"
	DiscrepancyCritico     = "critico"
)

// Discrepancy compares the cash declared at close with the computed drawer.
// It is exposed on the closing report and never auto-reconciled.
type Discrepancy struct {
	Amount         decimal.Decimal `json:"amount"`
	Percent        decimal.Decimal `json:"percent"`
	Classification string          `json:"classification"`
}

// CompareDeclared returns declared - computed and its classification.
// normal: |pct| <= 1%, advertencia: <= 5%, critico: > 5%.
// A zero computed drawer classifies any non-zero difference as critico.
func CompareDeclared(declared, computed decimal.Decimal) Discrepancy {
	diff := declared.Sub(computed)
	var pct decimal.Decimal
	switch {
	case !computed.IsZero():
		pct = diff.Div(computed).Mul(decimal.NewFromInt(100)).Round(2)
	case !diff.IsZero():
		return Discrepancy{Amount: diff, Percent: decimal.NewFromInt(100), Classification: DiscrepancyCritico}
	}

	abs := pct.Abs()
	class := DiscrepancyCritico
	switch {
	case abs.LessThanOrEqual(decimal.NewFromInt(1)):
		class = DiscrepancyNormal
	case abs.LessThanOrEqual(decimal.NewFromInt(5)):
		class = DiscrepancyAdvertencia
	}
	return Discrepancy{Amount: diff, Percent: pct, Classification: class}
}
