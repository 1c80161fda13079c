package models

import (
	"time"
)

// IdempotencyRecord caches the outcome of one logical mutating request, keyed
// by the client-supplied Idempotency-Key header. Records are immutable after
// creation and are removed by the expiry sweep, never updated in place.
type IdempotencyRecord struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Key          string    `json:"key" gorm:"uniqueIndex;not null;size:128"`
	Endpoint     string    `json:"endpoint" gorm:"not null;size:256"`
	Fingerprint  string    `json:"fingerprint" gorm:"not null;size:64"`
	ResponseBody []byte    `json:"response_body" gorm:"type:bytes"`
	StatusCode   int       `json:"status_code" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"index;not null"`
}

func (IdempotencyRecord) TableName() string { return "idempotency_records" }
