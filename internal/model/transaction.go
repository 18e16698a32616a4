package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Modality: "pickup" | "delivery"
type Modality string

const (
	ModalityPickup   Modality = "pickup"
	ModalityDelivery Modality = "delivery"
)

// LineItem is a priced cart line. UnitPrice is a snapshot taken at sale time
// and never follows later catalog changes.
type LineItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	TransactionID uuid.UUID       `gorm:"type:uuid;index;not null" json:"-"`
	ProductID     string          `gorm:"type:varchar(64);not null" json:"product_id"`
	Name          string          `gorm:"not null" json:"name"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	// Discount is per unit.
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	VariantID   *string         `gorm:"type:varchar(64)" json:"variant_id,omitempty"`
	VariantName *string         `json:"variant_name,omitempty"`
	Position    int             `gorm:"not null;default:0" json:"-"`
}

func (LineItem) TableName() string { return "transaction_items" }

// Payment is one committed entry of a transaction's payment allocation.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	TransactionID uuid.UUID       `gorm:"type:uuid;index;not null" json:"-"`
	Tender        Tender          `gorm:"type:varchar(20);not null" json:"tender"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}

func (Payment) TableName() string { return "transaction_payments" }

// Transaction is a committed sale. It is created once and never mutated;
// the shift ledger only reads it to fold balances.
type Transaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Tax       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	Discount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	ShiftID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"shift_id"`
	// OnlineOrderID links the sale to the external order it settled (unique).
	OnlineOrderID *string   `gorm:"type:varchar(64);uniqueIndex" json:"online_order_id,omitempty"`
	Modality      *Modality `gorm:"type:varchar(20)" json:"modality,omitempty"`

	Items    []LineItem `gorm:"foreignKey:TransactionID" json:"items"`
	Payments []Payment  `gorm:"foreignKey:TransactionID" json:"payments"`
}

func (Transaction) TableName() string { return "transactions" }
