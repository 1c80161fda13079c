package models

import (
	"time"

	"gorm.io/gorm"
)

type OrderItem struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	OrderID    uint           `json:"order_id" gorm:"not null;index"`
	MenuItemID string         `json:"menu_item_id" gorm:"not null"`
	ItemName   string         `json:"item_name" gorm:"not null"`
	Quantity   int            `json:"quantity" gorm:"not null"`
	UnitPrice  int64          `json:"unit_price" gorm:"not null"` // cents
	Status     string         `json:"status" gorm:"not null;default:'PENDING'"`
	Course     string         `json:"course,omitempty"`
	Seat       *int           `json:"seat,omitempty"`
	SentAt     *time.Time     `json:"sent_at"`
	ReadyAt    *time.Time     `json:"ready_at"`
	ServedAt   *time.Time     `json:"served_at"`
	VoidedAt   *time.Time     `json:"voided_at"`
	VoidReason string         `json:"void_reason,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// OrderItemStatus represents the status of a single line item.
type OrderItemStatus string

const (
	ItemPending   OrderItemStatus = "PENDING"
	ItemSent      OrderItemStatus = "SENT"
	ItemPreparing OrderItemStatus = "PREPARING"
	ItemReady     OrderItemStatus = "READY"
	ItemServed    OrderItemStatus = "SERVED"
	ItemVoided    OrderItemStatus = "VOIDED"
)

// LineTotal is quantity times unit price, in cents.
func (i *OrderItem) LineTotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

// WasSent reports whether the item has reached the kitchen. Voiding a sent
// item requires a reason; voiding a pending one does not.
func (i *OrderItem) WasSent() bool {
	return i.SentAt != nil || (i.Status != string(ItemPending) && i.Status != string(ItemVoided))
}
