package models

import (
	"time"
)

type Payment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;index"`
	Amount     int64     `json:"amount" gorm:"not null"` // cents
	Method     string    `json:"method" gorm:"not null;default:'CASH'"`
	RecordedBy uint      `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentVoucher  PaymentMethod = "VOUCHER"
	PaymentTransfer PaymentMethod = "TRANSFER"
)
