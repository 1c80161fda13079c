package models

import (
	"time"

	"gorm.io/gorm"
)

type Order struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	OrderNumber string         `json:"order_number" gorm:"unique;not null"`
	BranchID    uint           `json:"branch_id" gorm:"not null;index"`
	Status      string         `json:"status" gorm:"not null;default:'NEW';index"`
	ServiceType string         `json:"service_type" gorm:"not null;default:'DINE_IN'"`
	TableID     *uint          `json:"table_id"`
	Items       []OrderItem    `json:"items" gorm:"foreignKey:OrderID"`
	Payments    []Payment      `json:"payments" gorm:"foreignKey:OrderID"`
	Subtotal    int64          `json:"subtotal"` // cents
	Tax         int64          `json:"tax"`      // cents
	Total       int64          `json:"total"`    // cents; always subtotal + tax
	CreatedBy   uint           `json:"created_by" gorm:"not null"`
	ClosedAt    *time.Time     `json:"closed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type OrderStatus string

const (
	OrderNew       OrderStatus = "NEW"
	OrderSent      OrderStatus = "SENT"
	OrderInKitchen OrderStatus = "IN_KITCHEN"
	OrderReady     OrderStatus = "READY"
	OrderServed    OrderStatus = "SERVED"
	OrderClosed    OrderStatus = "CLOSED"
	OrderVoided    OrderStatus = "VOIDED"
)

type ServiceType string

const (
	ServiceDineIn   ServiceType = "DINE_IN"
	ServiceTakeaway ServiceType = "TAKEAWAY"
	ServiceDelivery ServiceType = "DELIVERY"
)

// PaymentsTotal sums the settled payments attached to the order, in cents.
func (o *Order) PaymentsTotal() int64 {
	var sum int64
	for _, p := range o.Payments {
		sum += p.Amount
	}
	return sum
}

// IsTerminal reports whether the order reached CLOSED or VOIDED. Terminal
// orders are immutable except for the CLOSED -> VOIDED reversal.
func (o *Order) IsTerminal() bool {
	return o.Status == string(OrderClosed) || o.Status == string(OrderVoided)
}
