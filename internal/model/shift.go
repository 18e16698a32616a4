package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShiftStatus: "OPEN" | "CLOSED"
type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "OPEN"
	ShiftClosed ShiftStatus = "CLOSED"
)

// CashShift represents the lifecycle of a cash drawer session.
// At most one shift is OPEN at any time (guarded by a partial unique index).
type CashShift struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StartTime   time.Time       `gorm:"not null" json:"start_time"`
	EndTime     *time.Time      `json:"end_time,omitempty"`
	StartAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"start_amount"`
	// EndAmount is declared by the cashier at close; it is never reconciled
	// against the computed balance, only exposed next to it.
	EndAmount *decimal.Decimal `gorm:"type:decimal(12,2)" json:"end_amount,omitempty"`
	Status    ShiftStatus      `gorm:"type:varchar(10);not null;default:'OPEN'" json:"status"`
}

func (CashShift) TableName() string { return "cash_shifts" }

func (s *CashShift) IsOpen() bool { return s != nil && s.Status == ShiftOpen }

// MovementKind: "OPEN" | "CLOSE" | "IN" | "OUT"
type MovementKind string

const (
	MovementOpen  MovementKind = "OPEN"
	MovementClose MovementKind = "CLOSE"
	MovementIn    MovementKind = "IN"
	MovementOut   MovementKind = "OUT"
)

// Manual reports whether the kind can be recorded by the operator.
func (k MovementKind) Manual() bool { return k == MovementIn || k == MovementOut }

// CashMovement is an immutable event in the drawer ledger.
// OPEN and CLOSE are emitted by shift transitions; IN/OUT are manual.
// Amount is always >= 0, the kind carries the sign.
type CashMovement struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ShiftID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"shift_id"`
	Kind      MovementKind    `gorm:"type:varchar(10);not null" json:"kind"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Reason    string          `gorm:"not null" json:"reason"`
	Timestamp time.Time       `gorm:"not null" json:"timestamp"`
}

func (CashMovement) TableName() string { return "cash_movements" }
