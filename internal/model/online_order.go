package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus: "pending" | "settled" | "archived"
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderSettled  OrderStatus = "settled"
	OrderArchived OrderStatus = "archived"
)

// ExternalOrder is an order placed on the web storefront. The external channel
// owns it; this service only reads it and writes the status transition.
type ExternalOrder struct {
	ID            string          `gorm:"type:varchar(64);primaryKey" json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone *string         `json:"customer_phone,omitempty"`
	Address       *string         `json:"address,omitempty"`
	Modality      Modality        `gorm:"type:varchar(20);not null;default:'pickup'" json:"modality"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	// Written on settlement.
	PaymentMethod *string    `gorm:"type:varchar(30)" json:"payment_method,omitempty"`
	ShiftID       *uuid.UUID `gorm:"type:uuid" json:"shift_id,omitempty"`

	Items []ExternalOrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

func (ExternalOrder) TableName() string { return "online_orders" }

// ExternalOrderItem is a cart-equivalent line of a web order.
type ExternalOrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	OrderID     string          `gorm:"type:varchar(64);index;not null" json:"-"`
	ProductID   string          `gorm:"type:varchar(64);not null" json:"product_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	VariantID   *string         `gorm:"type:varchar(64)" json:"variant_id,omitempty"`
	VariantName *string         `json:"variant_name,omitempty"`
}

func (ExternalOrderItem) TableName() string { return "online_order_items" }

// LineItems converts the order lines into cart lines.
func (o *ExternalOrder) LineItems() []LineItem {
	items := make([]LineItem, 0, len(o.Items))
	for i, it := range o.Items {
		items = append(items, LineItem{
			ProductID:   it.ProductID,
			Name:        it.Name,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Discount:    it.Discount,
			VariantID:   it.VariantID,
			VariantName: it.VariantName,
			Position:    i,
		})
	}
	return items
}
